package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rl1809/mintmarket/internal/port"
)

func lockedLedgers(t *testing.T, wait time.Duration) map[string]port.Ledger {
	t.Helper()

	ldb, err := OpenLevelDBLedger(filepath.Join(t.TempDir(), "ldb"), WithLockWait(wait))
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	t.Cleanup(func() { ldb.Close() })

	return map[string]port.Ledger{
		"memory":  NewMemoryLedger(WithLockWait(wait)),
		"leveldb": ldb,
	}
}

func TestLedger_NestedUpdateTimesOut(t *testing.T) {
	for name, l := range lockedLedgers(t, 50*time.Millisecond) {
		t.Run(name, func(t *testing.T) {
			var nested error
			err := l.Update(context.Background(), func(tx port.Tx) error {
				if err := tx.Put([]byte("outer"), []byte("1")); err != nil {
					return err
				}
				nested = l.Update(context.Background(), func(port.Tx) error { return nil })
				return nested
			})

			if !errors.Is(nested, ErrLockTimeout) {
				t.Errorf("expected nested ErrLockTimeout, got %v", nested)
			}
			if !errors.Is(err, ErrLockTimeout) {
				t.Errorf("expected outer ErrLockTimeout, got %v", err)
			}

			// the outer write set was discarded and the lock released
			err = l.View(context.Background(), func(tx port.Tx) error {
				v, err := tx.Get([]byte("outer"))
				if err != nil {
					return err
				}
				if v != nil {
					t.Errorf("expected rolled back write, got %q", v)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("view failed: %v", err)
			}
		})
	}
}

func TestLedger_LockWaitHonorsContext(t *testing.T) {
	for name, l := range lockedLedgers(t, 0) {
		t.Run(name, func(t *testing.T) {
			var nested error
			err := l.Update(context.Background(), func(port.Tx) error {
				ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
				defer cancel()
				nested = l.View(ctx, func(port.Tx) error { return nil })
				return nil
			})
			if err != nil {
				t.Fatalf("update failed: %v", err)
			}
			if !errors.Is(nested, context.DeadlineExceeded) {
				t.Errorf("expected DeadlineExceeded, got %v", nested)
			}
		})
	}
}

func TestLedger_ReadersShare(t *testing.T) {
	for name, l := range lockedLedgers(t, 50*time.Millisecond) {
		t.Run(name, func(t *testing.T) {
			err := l.View(context.Background(), func(port.Tx) error {
				return l.View(context.Background(), func(port.Tx) error { return nil })
			})
			if err != nil {
				t.Errorf("nested view failed: %v", err)
			}
		})
	}
}
