package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/rl1809/mintmarket/internal/port"
)

// LevelDBLedger stores the state in a LevelDB directory. Writes of one
// transaction go into a single batch written atomically on commit.
type LevelDBLedger struct {
	lock *txLock
	db   *leveldb.DB
}

func OpenLevelDBLedger(path string, opts ...Option) (*LevelDBLedger, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDBLedger{lock: newTxLock(buildOptions(opts)), db: db}, nil
}

func (l *LevelDBLedger) Update(ctx context.Context, fn func(tx port.Tx) error) error {
	unlock, err := l.lock.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx := &levelDBTx{
		db:     l.db,
		batch:  new(leveldb.Batch),
		staged: make(map[string][]byte),
	}
	if err := fn(tx); err != nil {
		return err
	}

	if tx.batch.Len() == 0 {
		return nil
	}
	if err := l.db.Write(tx.batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (l *LevelDBLedger) View(ctx context.Context, fn func(tx port.Tx) error) error {
	unlock, err := l.lock.rlock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := l.db.GetSnapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer snap.Release()

	return fn(&levelDBTx{snap: snap})
}

func (l *LevelDBLedger) Close() error {
	return l.db.Close()
}

type levelDBTx struct {
	db     *leveldb.DB
	snap   *leveldb.Snapshot
	batch  *leveldb.Batch
	staged map[string][]byte // nil value marks a delete
}

func (t *levelDBTx) Get(key []byte) ([]byte, error) {
	if v, ok := t.staged[string(key)]; ok {
		return clone(v), nil
	}

	var (
		v   []byte
		err error
	)
	if t.snap != nil {
		v, err = t.snap.Get(key, nil)
	} else {
		v, err = t.db.Get(key, nil)
	}
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return v, nil
}

func (t *levelDBTx) Put(key, value []byte) error {
	if t.batch == nil {
		return ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	t.staged[string(key)] = clone(value)
	t.batch.Put(key, value)
	return nil
}

func (t *levelDBTx) Delete(key []byte) error {
	if t.batch == nil {
		return ErrReadOnly
	}
	t.staged[string(key)] = nil
	t.batch.Delete(key)
	return nil
}
