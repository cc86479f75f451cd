package ownership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mintmarket/internal/adapter/storage"
	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/port"
)

func TestFactory_DeployDistinctAddresses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := storage.NewMemoryLedger()
	f := NewFactory(market)

	var first, second domain.Address
	require.NoError(t, l.Update(ctx, func(tx port.Tx) error {
		var err error
		first, err = f.Deploy(ctx, tx, alice, "Alpha", "ALP", "ipfs://alpha/")
		if err != nil {
			return err
		}
		second, err = f.Deploy(ctx, tx, alice, "Alpha", "ALP", "ipfs://alpha/")
		return err
	}))

	assert.False(t, first.IsZero())
	assert.NotEqual(t, first, second)

	require.NoError(t, l.View(ctx, func(tx port.Tx) error {
		e, ok, err := f.Entity(ctx, tx, first)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Entity{
			Address: first,
			Owner:   alice,
			Name:    "Alpha",
			Symbol:  "ALP",
			BaseURI: "ipfs://alpha/",
		}, e)

		_, ok, err = f.Entity(ctx, tx, bob)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestFactory_DeterministicPerFactory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deploy := func(factory domain.Address) domain.Address {
		var addr domain.Address
		l := storage.NewMemoryLedger()
		require.NoError(t, l.Update(ctx, func(tx port.Tx) error {
			var err error
			addr, err = NewFactory(factory).Deploy(ctx, tx, alice, "A", "A", "")
			return err
		}))
		return addr
	}

	assert.Equal(t, deploy(market), deploy(market))
	assert.NotEqual(t, deploy(market), deploy(bob))
}

func TestFactory_DeployRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := storage.NewMemoryLedger()
	f := NewFactory(market)

	err := l.Update(ctx, func(tx port.Tx) error {
		_, err := f.Deploy(ctx, tx, domain.Address{}, "A", "A", "")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	// a failed deploy leaves the nonce untouched
	var afterFailure domain.Address
	require.NoError(t, l.Update(ctx, func(tx port.Tx) error {
		afterFailure, err = f.Deploy(ctx, tx, alice, "A", "A", "")
		return err
	}))

	fresh := storage.NewMemoryLedger()
	var expected domain.Address
	require.NoError(t, fresh.Update(ctx, func(tx port.Tx) error {
		expected, err = f.Deploy(ctx, tx, alice, "A", "A", "")
		return err
	}))
	assert.Equal(t, expected, afterFailure)
}

func TestFactory_EntityRegistry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := storage.NewMemoryLedger()
	f := NewFactory(market)

	require.NoError(t, l.Update(ctx, func(tx port.Tx) error {
		addr, err := f.Deploy(ctx, tx, alice, "A", "A", "")
		if err != nil {
			return err
		}
		reg := f.Registry(addr)
		assert.Equal(t, addr, reg.Address())
		return reg.Mint(ctx, tx, bob, 1)
	}))
}
