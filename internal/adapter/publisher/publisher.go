// Package publisher delivers committed market events to their sinks.
package publisher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/port"
)

// LogPublisher mirrors every event into the structured log.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With("component", "events")}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.log.InfoContext(ctx, "event", "name", event.EventName(), "payload", event)
	return nil
}

// Fanout publishes each event to every sink, in order. All sinks are tried;
// their errors are joined.
type Fanout []port.EventPublisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
