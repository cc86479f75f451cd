package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/port"
)

const publishTimeout = 5 * time.Second

// outbox is the market side of event delivery.
type outbox interface {
	PendingEvents(ctx context.Context, limit int) ([]domain.EventRecord, error)
	AckEvent(ctx context.Context, seq uint64) error
	EventsReady() <-chan struct{}
}

type RelayOptions struct {
	BatchSize    int
	PollInterval time.Duration
	RetryDelay   time.Duration
}

// Relay moves committed events from the market outbox to a publisher, one at
// a time in commit order. An event leaves the outbox only after Publish
// succeeded, so delivery is at least once.
type Relay struct {
	outbox outbox
	pub    port.EventPublisher
	log    *slog.Logger
	opts   RelayOptions
	done   chan struct{}
}

func NewRelay(ob outbox, pub port.EventPublisher, log *slog.Logger, opts RelayOptions) *Relay {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Relay{
		outbox: ob,
		pub:    pub,
		log:    log.With("component", "event_relay"),
		opts:   opts,
		done:   make(chan struct{}),
	}
}

// Start runs the relay until ctx ends or the outbox stops signalling. On the
// latter it makes one last delivery pass first.
func (r *Relay) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		r.run(ctx)
	}()
}

// Wait blocks until the relay has stopped.
func (r *Relay) Wait() {
	<-r.done
}

func (r *Relay) run(ctx context.Context) {
	ready := r.outbox.EventsReady()

	for {
		err := r.drain(ctx)

		var ok bool
		switch {
		case ready == nil:
			if err != nil {
				r.log.Warn("relay stopped with undelivered events", "error", err)
			}
			return
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			r.log.Warn("event delivery failed", "error", err, "retry_in", r.opts.RetryDelay)
			ready, ok = r.wait(ctx, ready, r.opts.RetryDelay, false)
		default:
			ready, ok = r.wait(ctx, ready, r.opts.PollInterval, true)
		}
		if !ok {
			return
		}
	}
}

// wait sleeps for d. With wake set a ready signal ends the sleep early. The
// returned channel is nil once ready was closed; ok is false when ctx ended.
func (r *Relay) wait(ctx context.Context, ready <-chan struct{}, d time.Duration, wake bool) (<-chan struct{}, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ready, false
		case <-timer.C:
			return ready, true
		case _, open := <-ready:
			if !open {
				return nil, true
			}
			if wake {
				return ready, true
			}
		}
	}
}

// drain publishes pending events until the outbox is empty or a step fails.
func (r *Relay) drain(ctx context.Context) error {
	for {
		records, err := r.outbox.PendingEvents(ctx, r.opts.BatchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		for _, rec := range records {
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := r.pub.Publish(pubCtx, rec.Event)
			cancel()
			if err != nil {
				return fmt.Errorf("publish %s #%d: %w", rec.Event.EventName(), rec.Seq, err)
			}

			if err := r.outbox.AckEvent(ctx, rec.Seq); err != nil {
				return err
			}
			r.log.Debug("published event", "seq", rec.Seq, "event", rec.Event.EventName())
		}
	}
}
