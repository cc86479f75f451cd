package storage

import (
	"context"
	"errors"

	"github.com/rl1809/mintmarket/internal/port"
)

var ErrReadOnly = errors.New("ledger: read-only transaction")

// MemoryLedger keeps the whole state in process memory. Transactions are
// serialized by one lock and stage their writes until commit.
type MemoryLedger struct {
	lock *txLock
	data map[string][]byte
}

func NewMemoryLedger(opts ...Option) *MemoryLedger {
	return &MemoryLedger{lock: newTxLock(buildOptions(opts)), data: make(map[string][]byte)}
}

func (l *MemoryLedger) Update(ctx context.Context, fn func(tx port.Tx) error) error {
	unlock, err := l.lock.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx := &memoryTx{data: l.data, writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}

	for k, v := range tx.writes {
		if v == nil {
			delete(l.data, k)
		} else {
			l.data[k] = v
		}
	}
	return nil
}

func (l *MemoryLedger) View(ctx context.Context, fn func(tx port.Tx) error) error {
	unlock, err := l.lock.rlock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return fn(&memoryTx{data: l.data, readOnly: true})
}

func (l *MemoryLedger) Close() error {
	return nil
}

type memoryTx struct {
	data     map[string][]byte
	writes   map[string][]byte // nil value marks a delete
	readOnly bool
}

func (t *memoryTx) Get(key []byte) ([]byte, error) {
	if v, ok := t.writes[string(key)]; ok {
		return clone(v), nil
	}
	return clone(t.data[string(key)]), nil
}

func (t *memoryTx) Put(key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	t.writes[string(key)] = clone(value)
	return nil
}

func (t *memoryTx) Delete(key []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.writes[string(key)] = nil
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
