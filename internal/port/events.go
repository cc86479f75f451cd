package port

//go:generate mockgen -source=events.go -destination=mocks/events_mock.go -package=mocks

import (
	"context"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

type RequestGuard interface {
	// Reserve claims key for one request, returns false if it was already claimed
	Reserve(ctx context.Context, key string) (token string, ok bool, err error)

	// Release frees a key claimed by Reserve so a failed request can be resubmitted
	Release(ctx context.Context, key, token string) error
}
