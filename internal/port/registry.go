package port

//go:generate mockgen -source=registry.go -destination=mocks/registry_mock.go -package=mocks

import (
	"context"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// OwnershipRegistry is the component of record for who owns which copy id.
// Every call participates in the caller's ledger transaction.
type OwnershipRegistry interface {
	Mint(ctx context.Context, tx Tx, to domain.Address, id uint64) error
	SetLocation(ctx context.Context, tx Tx, id uint64, location string) error

	// Location returns "", false when no location is stored for id.
	Location(ctx context.Context, tx Tx, id uint64) (string, bool, error)

	// OwnerOf returns the zero address, false for unminted or burned ids.
	OwnerOf(ctx context.Context, tx Tx, id uint64) (domain.Address, bool, error)
	Burn(ctx context.Context, tx Tx, id uint64) error
}

// TokenFactory spawns an independent token-issuing entity and returns its address.
type TokenFactory interface {
	Deploy(ctx context.Context, tx Tx, owner domain.Address, name, symbol, baseURI string) (domain.Address, error)
}
