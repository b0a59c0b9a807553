package telemetry

import (
	"context"
	"log/slog"

	"github.com/renatobalun/langchain-error/internal/ingest"
)

const (
	outcomeCommitted = "committed"
	outcomeFailed    = "failed"
)

// Observer turns ingestion events into structured logs and metrics.
type Observer struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewObserver returns an Observer. A nil logger means slog.Default(); nil
// metrics disables metric updates.
func NewObserver(logger *slog.Logger, metrics *Metrics) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger, metrics: metrics}
}

func (o *Observer) OnEvent(ctx context.Context, ev ingest.Event) {
	attrs := []any{
		"stage", string(ev.Stage),
		"error_name", ev.ErrorName,
		"severity", ev.Severity,
		"elapsed_ms", ev.Elapsed.Milliseconds(),
	}
	if ev.ErrorID > 0 {
		attrs = append(attrs, "error_id", ev.ErrorID)
	}

	if ev.Err != nil {
		o.logger.ErrorContext(ctx, "ingestion failed", append(attrs, "error", ev.Err.Error())...)
		if o.metrics != nil {
			o.metrics.StageFailuresTotal.WithLabelValues(string(ev.Stage)).Inc()
			o.metrics.RunsTotal.WithLabelValues(outcomeFailed).Inc()
			o.metrics.RunDuration.WithLabelValues(outcomeFailed).Observe(ev.Elapsed.Seconds())
		}
		return
	}

	o.logger.InfoContext(ctx, "ingestion stage reached", attrs...)
	if o.metrics == nil {
		return
	}
	o.metrics.StageTransitionsTotal.WithLabelValues(string(ev.Stage)).Inc()
	if ev.Stage == ingest.StageCommitted {
		o.metrics.RunsTotal.WithLabelValues(outcomeCommitted).Inc()
		o.metrics.RunDuration.WithLabelValues(outcomeCommitted).Observe(ev.Elapsed.Seconds())
	}
}

var _ ingest.Observer = (*Observer)(nil)
