package capability

import (
	"sync"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// Roles holds the set of privileged addresses allowed to run admin operations.
type Roles struct {
	mu         sync.RWMutex
	privileged map[domain.Address]struct{}
}

func NewRoles(admins ...domain.Address) *Roles {
	r := &Roles{privileged: make(map[domain.Address]struct{}, len(admins))}
	for _, a := range admins {
		r.privileged[a] = struct{}{}
	}
	return r
}

func (r *Roles) Grant(a domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.privileged[a] = struct{}{}
}

func (r *Roles) Revoke(a domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.privileged, a)
}

func (r *Roles) RequirePrivileged(caller domain.Address) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.privileged[caller]; !ok || caller.IsZero() {
		return &domain.UnauthorizedError{Caller: caller}
	}
	return nil
}
