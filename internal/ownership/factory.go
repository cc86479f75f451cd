package ownership

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
	"github.com/rl1809/mintmarket/internal/port"
)

// Entity is the stored constructor state of a spawned token-issuing entity.
type Entity struct {
	Address domain.Address `json:"address"`
	Owner   domain.Address `json:"owner"`
	Name    string         `json:"name"`
	Symbol  string         `json:"symbol"`
	BaseURI string         `json:"base_uri"`
}

// Factory spawns entities at addresses derived from its own address and a
// deploy nonce, so every deployment gets a fresh, deterministic address.
type Factory struct {
	address domain.Address
}

func NewFactory(address domain.Address) *Factory {
	return &Factory{address: address}
}

func (f *Factory) Deploy(_ context.Context, tx port.Tx, owner domain.Address, name, symbol, baseURI string) (domain.Address, error) {
	if owner.IsZero() {
		return domain.Address{}, fmt.Errorf("deploy entity: %w", domain.ErrInvalidAddress)
	}

	nonceKey := ledger.Key(prefixNonce, f.address.Bytes())
	raw, err := tx.Get(nonceKey)
	if err != nil {
		return domain.Address{}, fmt.Errorf("read deploy nonce: %w", err)
	}
	nonce := ledger.BytesUint64(raw) + 1
	if err := tx.Put(nonceKey, ledger.Uint64Bytes(nonce)); err != nil {
		return domain.Address{}, fmt.Errorf("write deploy nonce: %w", err)
	}

	entity := Entity{
		Address: f.deriveAddress(nonce),
		Owner:   owner,
		Name:    name,
		Symbol:  symbol,
		BaseURI: baseURI,
	}

	encoded, err := json.Marshal(entity)
	if err != nil {
		return domain.Address{}, fmt.Errorf("encode entity: %w", err)
	}
	if err := tx.Put(ledger.Key(prefixEntity, entity.Address.Bytes()), encoded); err != nil {
		return domain.Address{}, fmt.Errorf("write entity %s: %w", entity.Address, err)
	}

	return entity.Address, nil
}

// Entity loads the constructor state of a spawned entity.
func (f *Factory) Entity(_ context.Context, tx port.Tx, address domain.Address) (Entity, bool, error) {
	raw, err := tx.Get(ledger.Key(prefixEntity, address.Bytes()))
	if err != nil {
		return Entity{}, false, fmt.Errorf("read entity %s: %w", address, err)
	}
	if raw == nil {
		return Entity{}, false, nil
	}

	var e Entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entity{}, false, fmt.Errorf("decode entity %s: %w", address, err)
	}
	return e, true, nil
}

// Registry returns the ownership registry scoped to a spawned entity.
func (f *Factory) Registry(address domain.Address) *Registry {
	return NewRegistry(address)
}

func (f *Factory) deriveAddress(nonce uint64) domain.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(f.address.Bytes())
	h.Write(ledger.Uint64Bytes(nonce))
	return domain.BytesToAddress(h.Sum(nil))
}
