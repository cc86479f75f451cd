package handler

import (
	"context"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

type callerKey struct{}

func withCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// callerFrom returns the authenticated caller, or errUnauthenticated.
func callerFrom(ctx context.Context) (domain.Address, error) {
	caller, ok := ctx.Value(callerKey{}).(domain.Address)
	if !ok || caller.IsZero() {
		return domain.Address{}, errUnauthenticated
	}
	return caller, nil
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
