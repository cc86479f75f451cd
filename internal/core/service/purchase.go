package service

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
	"github.com/rl1809/mintmarket/internal/port"
)

// BuyItemCopy sells one copy of itemID to buyer for payment and mints it with
// location metadataBaseURI + "/" + copy id. The full payment is kept as
// proceeds; there is no change for overpayment.
func (s *MarketService) BuyItemCopy(ctx context.Context, buyer domain.Address, itemID uint64, metadataBaseURI string, payment *big.Int) (*domain.Copy, error) {
	ctx, err := s.enter(ctx, "buy item copy")
	if err != nil {
		return nil, err
	}

	if !domain.ValidAmount(payment) {
		return nil, domain.ErrInvalidAmount
	}
	if buyer.IsZero() {
		return nil, domain.ErrInvalidAddress
	}

	var (
		sold domain.ListedItem
		cp   domain.Copy
	)
	err = s.update(ctx, func(st *ledger.State) error {
		item, err := st.Item(itemID)
		if err != nil {
			return err
		}
		if err := checkPurchase(item, itemID, payment); err != nil {
			return err
		}

		// bookkeeping lands in the write set before the registry is called
		if err := st.AddProceeds(itemID, payment); err != nil {
			return err
		}
		item.NumSold++
		if err := st.PutItem(item); err != nil {
			return err
		}

		copyID, err := st.NextID(ledger.CounterCopies)
		if err != nil {
			return err
		}
		if err := st.LinkCopy(copyID, itemID); err != nil {
			return err
		}

		cp = domain.Copy{
			ID:       copyID,
			ItemID:   itemID,
			Owner:    buyer,
			Location: metadataBaseURI + "/" + strconv.FormatUint(copyID, 10),
		}
		if err := s.mintCopy(ctx, st.Tx(), cp); err != nil {
			return err
		}

		sold = item
		_, err = st.Enqueue(domain.ItemCopySold{
			CopyID:   cp.ID,
			ItemID:   itemID,
			NumSold:  item.NumSold,
			Buyer:    buyer,
			Location: cp.Location,
		})
		return err
	})
	if err != nil {
		s.log.Debug("purchase rejected", "item_id", itemID, "buyer", buyer, "error", err)
		return nil, fmt.Errorf("buy item %d: %w", itemID, err)
	}

	s.log.Info("item copy sold",
		"item_id", itemID,
		"copy_id", cp.ID,
		"num_sold", sold.NumSold,
		"buyer", buyer,
		"payment", payment,
	)
	s.notify()

	return &cp, nil
}

// Purchase is BuyItemCopy de-duplicated by requestID. A reservation is kept
// after success and released after failure so the request can be resubmitted.
func (s *MarketService) Purchase(ctx context.Context, requestID string, buyer domain.Address, itemID uint64, metadataBaseURI string, payment *big.Int) (*domain.Copy, error) {
	if s.requests == nil || requestID == "" {
		return s.BuyItemCopy(ctx, buyer, itemID, metadataBaseURI, payment)
	}

	key := fmt.Sprintf("purchase:%s:%s", buyer, requestID)
	token, ok, err := s.requests.Reserve(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	cp, err := s.BuyItemCopy(ctx, buyer, itemID, metadataBaseURI, payment)
	if err != nil {
		if relErr := s.requests.Release(ctx, key, token); relErr != nil {
			s.log.Error("release request reservation", "key", key, "error", relErr)
		}
		return nil, err
	}
	return cp, nil
}

// checkPurchase applies the purchase checks in order; the first failure wins.
func checkPurchase(item domain.ListedItem, itemID uint64, payment *big.Int) error {
	if !item.Listed() {
		return &domain.QuantityDoesNotExistError{AvailableQuantity: item.Quantity}
	}
	if itemID == 0 {
		return &domain.InvalidItemIDError{ItemID: itemID}
	}
	if item.SoldOut() {
		return &domain.ItemSoldOutError{Quantity: item.Quantity, NumSold: item.NumSold}
	}
	if payment.Cmp(item.Price) < 0 {
		return &domain.InsufficientFundError{
			Price:       new(big.Int).Set(item.Price),
			AllowedFund: new(big.Int).Set(payment),
		}
	}
	return nil
}

// mintCopy assigns the new copy to its buyer and attaches its location as
// one unit. Either call failing aborts the surrounding purchase.
func (s *MarketService) mintCopy(ctx context.Context, tx port.Tx, cp domain.Copy) error {
	if err := s.registry.Mint(ctx, tx, cp.Owner, cp.ID); err != nil {
		return fmt.Errorf("mint copy %d: %w", cp.ID, err)
	}
	if err := s.registry.SetLocation(ctx, tx, cp.ID, cp.Location); err != nil {
		return fmt.Errorf("set location of copy %d: %w", cp.ID, err)
	}
	return nil
}
