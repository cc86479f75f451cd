package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rl1809/mintmarket/internal/port"
)

var errAbort = errors.New("abort")

// runLedgerSuite checks the transaction contract every ledger backend must honour.
func runLedgerSuite(t *testing.T, l port.Ledger) {
	ctx := context.Background()

	t.Run("CommitAndRead", func(t *testing.T) {
		err := l.Update(ctx, func(tx port.Tx) error {
			if err := tx.Put([]byte("a"), []byte("1")); err != nil {
				return err
			}
			// read your own writes
			v, err := tx.Get([]byte("a"))
			if err != nil {
				return err
			}
			if string(v) != "1" {
				return fmt.Errorf("expected staged value 1, got %q", v)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}

		err = l.View(ctx, func(tx port.Tx) error {
			v, err := tx.Get([]byte("a"))
			if err != nil {
				return err
			}
			if string(v) != "1" {
				t.Errorf("expected committed value 1, got %q", v)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		err := l.Update(ctx, func(tx port.Tx) error {
			if err := tx.Put([]byte("a"), []byte("2")); err != nil {
				return err
			}
			if err := tx.Put([]byte("b"), []byte("x")); err != nil {
				return err
			}
			return errAbort
		})
		if !errors.Is(err, errAbort) {
			t.Fatalf("expected errAbort, got %v", err)
		}

		l.View(ctx, func(tx port.Tx) error {
			a, _ := tx.Get([]byte("a"))
			b, _ := tx.Get([]byte("b"))
			if string(a) != "1" {
				t.Errorf("expected a to stay 1, got %q", a)
			}
			if b != nil {
				t.Errorf("expected b to be absent, got %q", b)
			}
			return nil
		})
	})

	t.Run("Delete", func(t *testing.T) {
		err := l.Update(ctx, func(tx port.Tx) error {
			if err := tx.Delete([]byte("a")); err != nil {
				return err
			}
			v, _ := tx.Get([]byte("a"))
			if v != nil {
				return fmt.Errorf("expected staged delete, got %q", v)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}

		l.View(ctx, func(tx port.Tx) error {
			if v, _ := tx.Get([]byte("a")); v != nil {
				t.Errorf("expected a deleted, got %q", v)
			}
			return nil
		})
	})

	t.Run("ViewIsReadOnly", func(t *testing.T) {
		err := l.View(ctx, func(tx port.Tx) error {
			return tx.Put([]byte("c"), []byte("1"))
		})
		if !errors.Is(err, ErrReadOnly) {
			t.Errorf("expected ErrReadOnly, got %v", err)
		}
	})

	t.Run("SerializedIncrements", func(t *testing.T) {
		const workers = 20
		var wg sync.WaitGroup

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := l.Update(ctx, func(tx port.Tx) error {
					v, err := tx.Get([]byte("n"))
					if err != nil {
						return err
					}
					return tx.Put([]byte("n"), append(v, 'x'))
				})
				if err != nil {
					t.Errorf("update failed: %v", err)
				}
			}()
		}
		wg.Wait()

		l.View(ctx, func(tx port.Tx) error {
			v, _ := tx.Get([]byte("n"))
			if len(v) != workers {
				t.Errorf("expected %d increments, got %d", workers, len(v))
			}
			return nil
		})
	})
}
