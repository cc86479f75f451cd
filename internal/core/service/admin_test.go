package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

func buyOne(t *testing.T, f *fixture) *domain.Copy {
	t.Helper()
	ctx := context.Background()

	itemID, err := f.svc.CreateItem(ctx, sellerA, amount(10), 5, 0)
	require.NoError(t, err)
	cp, err := f.svc.BuyItemCopy(ctx, buyerB, itemID, "https://x/meta", amount(10))
	require.NoError(t, err)
	return cp
}

func TestResolve_NeverMinted(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.svc.Resolve(context.Background(), 42)

	var idErr *domain.InvalidItemIDError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, uint64(42), idErr.ItemID)
}

func TestResolve_Cached(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	cp := buyOne(t, f)

	for i := 0; i < 2; i++ {
		loc, err := f.svc.Resolve(context.Background(), cp.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://x/meta/1", loc)
	}

	_, cached := f.svc.locations.Get("1")
	assert.True(t, cached)
}

func TestDestroyCopy_Unauthorized(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	cp := buyOne(t, f)

	err := f.svc.DestroyCopy(context.Background(), buyerB, cp.ID)

	var authErr *domain.UnauthorizedError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, buyerB, authErr.Caller)

	_, err = f.svc.GetCopy(context.Background(), cp.ID)
	assert.NoError(t, err)
}

func TestDestroyCopy(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	cp := buyOne(t, f)

	// warm the resolve cache
	_, err := f.svc.Resolve(ctx, cp.ID)
	require.NoError(t, err)

	f.nextEvent(t)
	f.nextEvent(t)

	require.NoError(t, f.svc.DestroyCopy(ctx, admin, cp.ID))

	ev, ok := f.nextEvent(t).(domain.CopyDestroyed)
	require.True(t, ok)
	assert.Equal(t, domain.CopyDestroyed{CopyID: cp.ID, Caller: admin}, ev)

	_, err = f.svc.Resolve(ctx, cp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidItemID)

	_, err = f.svc.GetCopy(ctx, cp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidItemID)

	// sales history is kept
	assert.Equal(t, uint32(1), f.mustItem(t, cp.ItemID).NumSold)
	assert.Equal(t, int64(10), f.mustProceeds(t, cp.ItemID))

	err = f.svc.DestroyCopy(ctx, admin, cp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidItemID)
}

func TestClose_KeepsLaterEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.svc.Close()
	f.svc.Close()

	_, open := <-f.svc.EventsReady()
	assert.False(t, open)

	_, err := f.svc.CreateItem(context.Background(), sellerA, amount(1), 1, 0)
	require.NoError(t, err)

	_, ok := f.nextEvent(t).(domain.ItemCreated)
	assert.True(t, ok)
}

func TestResolve_CacheSkipsLocationReadBeforeDestroy(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	cp := buyOne(t, f)
	gen := f.svc.locationGen.Load()

	// a Resolve read the location, then the destroy committed and evicted
	// before the read was cached
	require.NoError(t, f.svc.DestroyCopy(ctx, admin, cp.ID))
	f.svc.cacheLocation("1", cp.Location, gen)

	_, cached := f.svc.locations.Get("1")
	assert.False(t, cached)

	_, err := f.svc.Resolve(ctx, cp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidItemID)
}
