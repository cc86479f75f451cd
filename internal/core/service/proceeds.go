package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
)

// Proceeds returns the gross amount paid for copies of itemID.
func (s *MarketService) Proceeds(ctx context.Context, itemID uint64) (*big.Int, error) {
	ctx, err := s.enter(ctx, "proceeds")
	if err != nil {
		return nil, err
	}

	var total *big.Int
	err = s.view(ctx, func(st *ledger.State) error {
		total, err = st.Proceeds(itemID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("proceeds of item %d: %w", itemID, err)
	}
	return total, nil
}

func (s *MarketService) SellerProceeds(ctx context.Context, seller domain.Address) (*big.Int, error) {
	ctx, err := s.enter(ctx, "seller proceeds")
	if err != nil {
		return nil, err
	}

	var total *big.Int
	err = s.view(ctx, func(st *ledger.State) error {
		total, err = st.SellerProceeds(seller)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("proceeds of seller %s: %w", seller, err)
	}
	return total, nil
}

// GetCopy returns a live copy with its current owner.
func (s *MarketService) GetCopy(ctx context.Context, copyID uint64) (*domain.Copy, error) {
	ctx, err := s.enter(ctx, "get copy")
	if err != nil {
		return nil, err
	}

	var (
		cp    domain.Copy
		found bool
	)
	err = s.view(ctx, func(st *ledger.State) error {
		owner, minted, err := s.registry.OwnerOf(ctx, st.Tx(), copyID)
		if err != nil || !minted {
			return err
		}
		itemID, _, err := st.ItemOfCopy(copyID)
		if err != nil {
			return err
		}
		location, _, err := s.registry.Location(ctx, st.Tx(), copyID)
		if err != nil {
			return err
		}

		cp = domain.Copy{ID: copyID, ItemID: itemID, Owner: owner, Location: location}
		found = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get copy %d: %w", copyID, err)
	}
	if !found {
		return nil, &domain.InvalidItemIDError{ItemID: copyID}
	}
	return &cp, nil
}
