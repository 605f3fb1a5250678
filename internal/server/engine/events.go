package engine

import (
	"context"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/logging"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// EventSink receives the engine's observability events. Events are emitted
// on successful mutations only and are never consumed internally.
type EventSink interface {
	Publish(ctx context.Context, ev models.Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, ev models.Event)

func (f EventSinkFunc) Publish(ctx context.Context, ev models.Event) { f(ctx, ev) }

// NewLogSink returns a sink that writes every event through the logger.
func NewLogSink(logger logging.Logger) EventSink {
	l := logger.With("module", "events")
	return EventSinkFunc(func(ctx context.Context, ev models.Event) {
		args := make([]any, 0, 2+2*len(ev.Fields))
		args = append(args, "type", ev.Type)
		for k, v := range ev.Fields {
			args = append(args, k, v)
		}
		l.Info(ctx, "event", args...)
	})
}
