package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/port"
)

type Counter byte

const (
	CounterItems  Counter = 'i'
	CounterCopies Counter = 'c'
	CounterTokens Counter = 't'

	counterShared Counter = 's'
)

// State is the typed view of the market tables inside one ledger transaction.
type State struct {
	tx        port.Tx
	sharedIDs bool
}

// New wraps tx. With sharedIDs set, every counter draws from one sequence.
func New(tx port.Tx, sharedIDs bool) *State {
	return &State{tx: tx, sharedIDs: sharedIDs}
}

func (s *State) Tx() port.Tx {
	return s.tx
}

// NextID issues the next identifier of c, starting at 1.
func (s *State) NextID(c Counter) (uint64, error) {
	key := s.counterKey(c)

	raw, err := s.tx.Get(key)
	if err != nil {
		return 0, fmt.Errorf("read counter %c: %w", c, err)
	}

	next := BytesUint64(raw) + 1
	if err := s.tx.Put(key, Uint64Bytes(next)); err != nil {
		return 0, fmt.Errorf("write counter %c: %w", c, err)
	}
	return next, nil
}

// CurrentID returns the last identifier issued by c, 0 if none.
func (s *State) CurrentID(c Counter) (uint64, error) {
	raw, err := s.tx.Get(s.counterKey(c))
	if err != nil {
		return 0, fmt.Errorf("read counter %c: %w", c, err)
	}
	return BytesUint64(raw), nil
}

func (s *State) counterKey(c Counter) []byte {
	if s.sharedIDs {
		c = counterShared
	}
	return Key(prefixCounter, []byte{byte(c)})
}

// Item returns the stored item, or a zero item (cap 0) for unlisted ids.
func (s *State) Item(id uint64) (domain.ListedItem, error) {
	raw, err := s.tx.Get(Key(prefixItem, Uint64Bytes(id)))
	if err != nil {
		return domain.ListedItem{}, fmt.Errorf("read item %d: %w", id, err)
	}
	if raw == nil {
		return domain.ListedItem{ID: id, Price: new(big.Int)}, nil
	}

	var item domain.ListedItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.ListedItem{}, fmt.Errorf("decode item %d: %w", id, err)
	}
	if item.Price == nil {
		item.Price = new(big.Int)
	}
	return item, nil
}

func (s *State) PutItem(item domain.ListedItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", item.ID, err)
	}
	if err := s.tx.Put(Key(prefixItem, Uint64Bytes(item.ID)), raw); err != nil {
		return fmt.Errorf("write item %d: %w", item.ID, err)
	}
	return nil
}

// LinkCopy records which item a minted copy was drawn from.
func (s *State) LinkCopy(copyID, itemID uint64) error {
	if err := s.tx.Put(Key(prefixCopyItem, Uint64Bytes(copyID)), Uint64Bytes(itemID)); err != nil {
		return fmt.Errorf("link copy %d: %w", copyID, err)
	}
	return nil
}

func (s *State) ItemOfCopy(copyID uint64) (uint64, bool, error) {
	raw, err := s.tx.Get(Key(prefixCopyItem, Uint64Bytes(copyID)))
	if err != nil {
		return 0, false, fmt.Errorf("read copy %d: %w", copyID, err)
	}
	if raw == nil {
		return 0, false, nil
	}
	return BytesUint64(raw), true, nil
}

// AppendUserToken adds tok to the end of account's ordered list.
func (s *State) AppendUserToken(account domain.Address, tok domain.UserToken) error {
	countKey := Key(prefixUserTokenCount, account.Bytes())

	raw, err := s.tx.Get(countKey)
	if err != nil {
		return fmt.Errorf("read token count %s: %w", account, err)
	}
	index := BytesUint64(raw)

	encoded, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode user token %d: %w", tok.ID, err)
	}
	if err := s.tx.Put(Key(prefixUserToken, account.Bytes(), Uint64Bytes(index)), encoded); err != nil {
		return fmt.Errorf("write user token %d: %w", tok.ID, err)
	}
	if err := s.tx.Put(countKey, Uint64Bytes(index+1)); err != nil {
		return fmt.Errorf("write token count %s: %w", account, err)
	}
	return nil
}

func (s *State) UserTokens(account domain.Address) ([]domain.UserToken, error) {
	raw, err := s.tx.Get(Key(prefixUserTokenCount, account.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("read token count %s: %w", account, err)
	}

	count := BytesUint64(raw)
	tokens := make([]domain.UserToken, 0, count)
	for i := uint64(0); i < count; i++ {
		encoded, err := s.tx.Get(Key(prefixUserToken, account.Bytes(), Uint64Bytes(i)))
		if err != nil {
			return nil, fmt.Errorf("read user token %s/%d: %w", account, i, err)
		}

		var tok domain.UserToken
		if err := json.Unmarshal(encoded, &tok); err != nil {
			return nil, fmt.Errorf("decode user token %s/%d: %w", account, i, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
