package port

import (
	"context"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// ReentrancyGuard detects re-entry through the context only. Collaborators
// invoked during an operation (registry, factory) must pass the context they
// were given to any call back into the market. A callback that starts from a
// fresh context is not recognised; it then waits on the ledger lock held by
// the outer operation and fails once the ledger's lock wait runs out.
type ReentrancyGuard interface {
	// Enter fails with domain.ErrReentrantCall when ctx is already inside a
	// guarded operation. The returned context marks the operation as entered.
	Enter(ctx context.Context) (context.Context, error)
}

type AccessControl interface {
	RequirePrivileged(caller domain.Address) error
}
