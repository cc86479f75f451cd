package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

func TestGuard_RejectsNestedEntry(t *testing.T) {
	t.Parallel()

	g := NewGuard()

	ctx, err := g.Enter(context.Background())
	require.NoError(t, err)

	_, err = g.Enter(ctx)
	assert.ErrorIs(t, err, domain.ErrReentrantCall)

	// independent calls are not affected
	_, err = g.Enter(context.Background())
	assert.NoError(t, err)
}

func TestRoles_RequirePrivileged(t *testing.T) {
	t.Parallel()

	admin := domain.BytesToAddress([]byte{1})
	other := domain.BytesToAddress([]byte{2})
	r := NewRoles(admin)

	assert.NoError(t, r.RequirePrivileged(admin))

	err := r.RequirePrivileged(other)
	var unauth *domain.UnauthorizedError
	require.ErrorAs(t, err, &unauth)
	assert.Equal(t, other, unauth.Caller)

	r.Grant(other)
	assert.NoError(t, r.RequirePrivileged(other))

	r.Revoke(admin)
	assert.ErrorIs(t, r.RequirePrivileged(admin), domain.ErrUnauthorized)

	assert.ErrorIs(t, NewRoles(domain.Address{}).RequirePrivileged(domain.Address{}), domain.ErrUnauthorized)
}
