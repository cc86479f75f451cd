package ledger

import (
	"fmt"
	"math/big"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// AddProceeds adds amount to the gross total received for an item.
func (s *State) AddProceeds(itemID uint64, amount *big.Int) error {
	return s.addAmount(Key(prefixProceeds, Uint64Bytes(itemID)), amount)
}

func (s *State) Proceeds(itemID uint64) (*big.Int, error) {
	return s.readAmount(Key(prefixProceeds, Uint64Bytes(itemID)))
}

// SellerProceeds reads the per-seller payout table. No market operation
// credits it; it is reserved for the payout flow.
func (s *State) SellerProceeds(seller domain.Address) (*big.Int, error) {
	return s.readAmount(Key(prefixSellerProceeds, seller.Bytes()))
}

func (s *State) addAmount(key []byte, amount *big.Int) error {
	if !domain.ValidAmount(amount) {
		return domain.ErrInvalidAmount
	}

	current, err := s.readAmount(key)
	if err != nil {
		return err
	}

	total := current.Add(current, amount)
	if err := s.tx.Put(key, []byte(total.String())); err != nil {
		return fmt.Errorf("write amount: %w", err)
	}
	return nil
}

func (s *State) readAmount(key []byte) (*big.Int, error) {
	raw, err := s.tx.Get(key)
	if err != nil {
		return nil, fmt.Errorf("read amount: %w", err)
	}
	if raw == nil {
		return new(big.Int), nil
	}

	v, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("decode amount %q: %w", raw, domain.ErrInvalidAmount)
	}
	return v, nil
}
