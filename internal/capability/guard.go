package capability

import (
	"context"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

type guardKey struct{}

// Guard rejects nested entry by any call that carries the context of an
// operation already in progress.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

func (g *Guard) Enter(ctx context.Context) (context.Context, error) {
	if entered, _ := ctx.Value(guardKey{}).(bool); entered {
		return ctx, domain.ErrReentrantCall
	}
	return context.WithValue(ctx, guardKey{}, true), nil
}
