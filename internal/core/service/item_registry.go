package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
)

// CreateItem lists a new item for sale and returns its id. Listing is free.
func (s *MarketService) CreateItem(ctx context.Context, payoutRecipient domain.Address, price *big.Int, quantity uint32, royaltyBps uint32) (uint64, error) {
	ctx, err := s.enter(ctx, "create item")
	if err != nil {
		return 0, err
	}

	if payoutRecipient.IsZero() {
		return 0, domain.ErrInvalidAddress
	}
	if quantity == 0 {
		return 0, &domain.QuantityRequiredError{Quantity: quantity, MinRequired: 1}
	}
	if !domain.ValidAmount(price) {
		return 0, domain.ErrInvalidAmount
	}

	item := domain.ListedItem{
		PayoutRecipient: payoutRecipient,
		Price:           new(big.Int).Set(price),
		Quantity:        quantity,
		RoyaltyBps:      royaltyBps,
	}

	err = s.update(ctx, func(st *ledger.State) error {
		id, err := st.NextID(ledger.CounterItems)
		if err != nil {
			return err
		}
		item.ID = id
		if err := st.PutItem(item); err != nil {
			return err
		}

		_, err = st.Enqueue(domain.ItemCreated{
			ItemID:          item.ID,
			PayoutRecipient: item.PayoutRecipient,
			Price:           new(big.Int).Set(item.Price),
			Quantity:        item.Quantity,
			RoyaltyBps:      item.RoyaltyBps,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create item: %w", err)
	}

	s.log.Info("item created",
		"item_id", item.ID,
		"payout_recipient", item.PayoutRecipient,
		"price", item.Price,
		"quantity", item.Quantity,
	)
	s.notify()

	return item.ID, nil
}

// GetItem returns a listed item. Unlisted ids fail with InvalidItemIDError.
func (s *MarketService) GetItem(ctx context.Context, id uint64) (*domain.ListedItem, error) {
	ctx, err := s.enter(ctx, "get item")
	if err != nil {
		return nil, err
	}

	var item domain.ListedItem
	err = s.view(ctx, func(st *ledger.State) error {
		item, err = st.Item(id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	if !item.Listed() {
		return nil, &domain.InvalidItemIDError{ItemID: id}
	}
	return &item, nil
}
