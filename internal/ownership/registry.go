// Package ownership keeps the owner of record and the metadata location of
// numbered tokens, and spawns independent token-issuing entities. All state
// lives in the caller's ledger transaction, scoped by a namespace address.
package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
	"github.com/rl1809/mintmarket/internal/port"
)

const (
	prefixOwner    = 'O'
	prefixLocation = 'L'
	prefixBalance  = 'B'
	prefixEntity   = 'E'
	prefixNonce    = 'N'
)

var (
	ErrAlreadyMinted = errors.New("ownership: token already minted")
	ErrNotMinted     = errors.New("ownership: token not minted")
)

type Registry struct {
	namespace domain.Address
}

func NewRegistry(namespace domain.Address) *Registry {
	return &Registry{namespace: namespace}
}

func (r *Registry) Address() domain.Address {
	return r.namespace
}

func (r *Registry) Mint(ctx context.Context, tx port.Tx, to domain.Address, id uint64) error {
	if to.IsZero() {
		return fmt.Errorf("mint %d: %w", id, domain.ErrInvalidAddress)
	}

	_, minted, err := r.OwnerOf(ctx, tx, id)
	if err != nil {
		return err
	}
	if minted {
		return fmt.Errorf("mint %d: %w", id, ErrAlreadyMinted)
	}

	if err := tx.Put(r.key(prefixOwner, ledger.Uint64Bytes(id)), to.Bytes()); err != nil {
		return fmt.Errorf("write owner %d: %w", id, err)
	}
	return r.adjustBalance(tx, to, 1)
}

func (r *Registry) SetLocation(ctx context.Context, tx port.Tx, id uint64, location string) error {
	_, minted, err := r.OwnerOf(ctx, tx, id)
	if err != nil {
		return err
	}
	if !minted {
		return fmt.Errorf("set location %d: %w", id, ErrNotMinted)
	}

	if err := tx.Put(r.key(prefixLocation, ledger.Uint64Bytes(id)), []byte(location)); err != nil {
		return fmt.Errorf("write location %d: %w", id, err)
	}
	return nil
}

func (r *Registry) Location(_ context.Context, tx port.Tx, id uint64) (string, bool, error) {
	raw, err := tx.Get(r.key(prefixLocation, ledger.Uint64Bytes(id)))
	if err != nil {
		return "", false, fmt.Errorf("read location %d: %w", id, err)
	}
	if raw == nil {
		return "", false, nil
	}
	return string(raw), true, nil
}

func (r *Registry) OwnerOf(_ context.Context, tx port.Tx, id uint64) (domain.Address, bool, error) {
	raw, err := tx.Get(r.key(prefixOwner, ledger.Uint64Bytes(id)))
	if err != nil {
		return domain.Address{}, false, fmt.Errorf("read owner %d: %w", id, err)
	}
	if raw == nil {
		return domain.Address{}, false, nil
	}
	return domain.BytesToAddress(raw), true, nil
}

func (r *Registry) BalanceOf(_ context.Context, tx port.Tx, owner domain.Address) (uint64, error) {
	raw, err := tx.Get(r.key(prefixBalance, owner.Bytes()))
	if err != nil {
		return 0, fmt.Errorf("read balance %s: %w", owner, err)
	}
	return ledger.BytesUint64(raw), nil
}

// Burn removes the owner of record and the stored location.
func (r *Registry) Burn(ctx context.Context, tx port.Tx, id uint64) error {
	owner, minted, err := r.OwnerOf(ctx, tx, id)
	if err != nil {
		return err
	}
	if !minted {
		return fmt.Errorf("burn %d: %w", id, ErrNotMinted)
	}

	if err := tx.Delete(r.key(prefixOwner, ledger.Uint64Bytes(id))); err != nil {
		return fmt.Errorf("delete owner %d: %w", id, err)
	}
	if err := tx.Delete(r.key(prefixLocation, ledger.Uint64Bytes(id))); err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	return r.adjustBalance(tx, owner, -1)
}

func (r *Registry) adjustBalance(tx port.Tx, owner domain.Address, delta int) error {
	key := r.key(prefixBalance, owner.Bytes())

	raw, err := tx.Get(key)
	if err != nil {
		return fmt.Errorf("read balance %s: %w", owner, err)
	}

	balance := ledger.BytesUint64(raw)
	if delta < 0 {
		balance--
	} else {
		balance++
	}

	if balance == 0 {
		err = tx.Delete(key)
	} else {
		err = tx.Put(key, ledger.Uint64Bytes(balance))
	}
	if err != nil {
		return fmt.Errorf("write balance %s: %w", owner, err)
	}
	return nil
}

func (r *Registry) key(prefix byte, parts ...[]byte) []byte {
	return ledger.Key(prefix, append([][]byte{r.namespace.Bytes()}, parts...)...)
}
