package ingest

import (
	"context"
	"time"
)

// Event describes one stage transition of an ingestion run. Err is set,
// as a *StageError, when the stage was not reached.
type Event struct {
	Stage     Stage
	ErrorID   int64
	ErrorName string
	Severity  string
	Elapsed   time.Duration
	Err       error
}

// Observer receives every Event of every run, in order, on the goroutine
// running the ingestion.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// Observers fans an event out to several observers.
func Observers(obs ...Observer) Observer {
	return ObserverFunc(func(ctx context.Context, ev Event) {
		for _, o := range obs {
			if o != nil {
				o.OnEvent(ctx, ev)
			}
		}
	})
}

var nopObserver = ObserverFunc(func(context.Context, Event) {})
