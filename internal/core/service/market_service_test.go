package service

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/mintmarket/internal/adapter/storage"
	"github.com/rl1809/mintmarket/internal/capability"
	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
	"github.com/rl1809/mintmarket/internal/ownership"
	"github.com/rl1809/mintmarket/internal/port"
)

var (
	marketAddr = domain.BytesToAddress([]byte{0x4d, 0x4b})
	admin      = domain.BytesToAddress([]byte{0xad})
	sellerA    = domain.BytesToAddress([]byte{0x0a})
	buyerB     = domain.BytesToAddress([]byte{0x0b})
	creatorC   = domain.BytesToAddress([]byte{0x0c})
)

type fixture struct {
	svc    *MarketService
	ledger port.Ledger
}

// newFixture wires the service over an in-memory ledger and the in-process
// registry, factory and capabilities. mutate may swap any of them out.
func newFixture(t *testing.T, mutate func(*Deps, *Options)) *fixture {
	t.Helper()

	deps := Deps{
		Ledger:   storage.NewMemoryLedger(),
		Registry: ownership.NewRegistry(marketAddr),
		Factory:  ownership.NewFactory(marketAddr),
		Guard:    capability.NewGuard(),
		Access:   capability.NewRoles(admin),
	}
	opts := Options{ResolveCacheTTL: time.Minute}
	if mutate != nil {
		mutate(&deps, &opts)
	}

	svc := NewMarketService(deps, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(svc.Close)

	return &fixture{svc: svc, ledger: deps.Ledger}
}

// nextEvent takes the oldest pending event off the outbox.
func (f *fixture) nextEvent(t *testing.T) domain.Event {
	t.Helper()
	records, err := f.svc.PendingEvents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1, "expected an event")
	require.NoError(t, f.svc.AckEvent(context.Background(), records[0].Seq))
	return records[0].Event
}

func (f *fixture) noEvent(t *testing.T) {
	t.Helper()
	records, err := f.svc.PendingEvents(context.Background(), 1)
	require.NoError(t, err)
	if len(records) > 0 {
		t.Fatalf("unexpected event %s", records[0].Event.EventName())
	}
}

func (f *fixture) currentID(t *testing.T, c ledger.Counter) uint64 {
	t.Helper()
	var id uint64
	require.NoError(t, f.ledger.View(context.Background(), func(tx port.Tx) error {
		var err error
		id, err = ledger.New(tx, false).CurrentID(c)
		return err
	}))
	return id
}

func (f *fixture) mustItem(t *testing.T, id uint64) *domain.ListedItem {
	t.Helper()
	item, err := f.svc.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (f *fixture) mustProceeds(t *testing.T, id uint64) int64 {
	t.Helper()
	total, err := f.svc.Proceeds(context.Background(), id)
	require.NoError(t, err)
	return total.Int64()
}

func amount(v int64) *big.Int {
	return big.NewInt(v)
}
