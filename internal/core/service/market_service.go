package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
	"github.com/rl1809/mintmarket/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

// Deps are the collaborators the market drives. RequestGuard is optional;
// without it purchases are not de-duplicated by request id.
type Deps struct {
	Ledger       port.Ledger
	Registry     port.OwnershipRegistry
	Factory      port.TokenFactory
	Guard        port.ReentrancyGuard
	Access       port.AccessControl
	RequestGuard port.RequestGuard
}

type Options struct {
	SharedIDs       bool
	ResolveCacheTTL time.Duration
}

// MarketService runs every marketplace operation as one ledger transaction.
// Events are written to the ledger outbox in that same transaction.
type MarketService struct {
	ledger    port.Ledger
	registry  port.OwnershipRegistry
	factory   port.TokenFactory
	guard     port.ReentrancyGuard
	access    port.AccessControl
	requests  port.RequestGuard
	sharedIDs bool

	locations   *cache.Cache
	locationGen atomic.Uint64
	log         *slog.Logger

	mu     sync.Mutex
	closed bool
	ready  chan struct{}
}

func NewMarketService(deps Deps, opts Options, log *slog.Logger) *MarketService {
	if opts.ResolveCacheTTL <= 0 {
		opts.ResolveCacheTTL = 10 * time.Minute
	}

	return &MarketService{
		ledger:    deps.Ledger,
		registry:  deps.Registry,
		factory:   deps.Factory,
		guard:     deps.Guard,
		access:    deps.Access,
		requests:  deps.RequestGuard,
		sharedIDs: opts.SharedIDs,
		locations: cache.New(opts.ResolveCacheTTL, 2*opts.ResolveCacheTTL),
		log:       log.With("service", "market"),
		ready:     make(chan struct{}, 1),
	}
}

// EventsReady signals that new events were committed to the outbox. It is
// closed by Close.
func (s *MarketService) EventsReady() <-chan struct{} {
	return s.ready
}

// PendingEvents returns up to limit undelivered events in commit order.
func (s *MarketService) PendingEvents(ctx context.Context, limit int) ([]domain.EventRecord, error) {
	var records []domain.EventRecord
	err := s.view(ctx, func(st *ledger.State) error {
		var err error
		records, err = st.Outbox(limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("pending events: %w", err)
	}
	return records, nil
}

// AckEvent removes delivered events up to and including seq from the outbox.
func (s *MarketService) AckEvent(ctx context.Context, seq uint64) error {
	if err := s.update(ctx, func(st *ledger.State) error { return st.Ack(seq) }); err != nil {
		return fmt.Errorf("ack event %d: %w", seq, err)
	}
	return nil
}

// Close closes EventsReady. Operations after Close still commit and their
// events stay in the outbox.
func (s *MarketService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ready)
	}
}

func (s *MarketService) update(ctx context.Context, fn func(st *ledger.State) error) error {
	return s.ledger.Update(ctx, func(tx port.Tx) error {
		return fn(ledger.New(tx, s.sharedIDs))
	})
}

func (s *MarketService) view(ctx context.Context, fn func(st *ledger.State) error) error {
	return s.ledger.View(ctx, func(tx port.Tx) error {
		return fn(ledger.New(tx, s.sharedIDs))
	})
}

// notify wakes the event relay without blocking.
func (s *MarketService) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *MarketService) enter(ctx context.Context, op string) (context.Context, error) {
	guarded, err := s.guard.Enter(ctx)
	if err != nil {
		s.log.Warn("reentrant call rejected", "op", op)
		return ctx, fmt.Errorf("%s: %w", op, err)
	}
	return guarded, nil
}
