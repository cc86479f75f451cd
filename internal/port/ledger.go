package port

import "context"

// Ledger runs serialized, all-or-nothing transactions over the shared market state.
type Ledger interface {
	// Update runs fn in a write transaction. The write set is committed only
	// if fn returns nil; any error discards every write made by fn. Waiting
	// for the ledger lock ends with ctx or after a bounded wait.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn against a consistent read-only view.
	View(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

// Tx is the key/value surface of one ledger transaction.
type Tx interface {
	// Get returns nil, nil when the key is absent.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
}
