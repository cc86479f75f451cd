package handler

import (
	"context"
	"math/big"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// marketService is the part of the market the transports expose.
type marketService interface {
	CreateItem(ctx context.Context, payoutRecipient domain.Address, price *big.Int, quantity uint32, royaltyBps uint32) (uint64, error)
	GetItem(ctx context.Context, id uint64) (*domain.ListedItem, error)
	Purchase(ctx context.Context, requestID string, buyer domain.Address, itemID uint64, metadataBaseURI string, payment *big.Int) (*domain.Copy, error)
	GetCopy(ctx context.Context, copyID uint64) (*domain.Copy, error)
	Resolve(ctx context.Context, copyID uint64) (string, error)
	DestroyCopy(ctx context.Context, caller domain.Address, copyID uint64) error
	CreateToken(ctx context.Context, caller, owner domain.Address, name, symbol, baseURI string) (*domain.UserToken, error)
	UserTokens(ctx context.Context, account domain.Address) ([]domain.UserToken, error)
	Proceeds(ctx context.Context, itemID uint64) (*big.Int, error)
	SellerProceeds(ctx context.Context, seller domain.Address) (*big.Int, error)
}

type tokenValidator interface {
	Validate(token string) (domain.Address, error)
}
