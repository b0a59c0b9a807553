package generator

import (
	"context"
	"log/slog"
	"time"
)

// SendCurrent builds the payload for the rotation's current entry and sends
// it. The payload is returned even when sending fails.
func SendCurrent(ctx context.Context, s Sender, c Catalog, r *Rotation, now time.Time) (map[string]any, int, error) {
	index := r.Current()
	payload := BuildPayload(c[index], index, now)
	status, err := s.Send(ctx, payload)
	if err != nil {
		slog.Error("failed to send error to webhook",
			"error", err, "error_name", c[index].Name, "status", status)
		return payload, status, err
	}
	slog.Info("sent error to webhook", "error_name", c[index].Name, "status", status)
	return payload, status, nil
}

// Run sends the current entry immediately, then advances and sends on every
// tick until ctx is done. Failed sends are logged and not retried.
func Run(ctx context.Context, s Sender, c Catalog, r *Rotation, interval time.Duration) error {
	slog.Info("error rotation started",
		"total_error_types", len(c),
		"interval", interval.String(),
		"initial_error", c[r.Current()].Name,
	)

	SendCurrent(ctx, s, c, r, time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("error rotation stopped")
			return nil
		case <-ticker.C:
			next := r.Advance()
			slog.Info("rotated error", "error_name", c[next].Name, "index", next)
			SendCurrent(ctx, s, c, r, time.Now())
		}
	}
}
