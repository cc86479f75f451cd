package app

import (
	"context"
	"fmt"

	"github.com/rl1809/mintmarket/internal/adapter/storage"
	"github.com/rl1809/mintmarket/internal/config"
	"github.com/rl1809/mintmarket/internal/port"
)

// OpenLedger opens the configured ledger backend. SQL backends are migrated
// before they are returned.
func OpenLedger(ctx context.Context, cfg config.LedgerConfig) (port.Ledger, error) {
	lockWait := storage.WithLockWait(cfg.LockWait)

	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemoryLedger(lockWait), nil
	case config.BackendLevelDB:
		l, err := storage.OpenLevelDBLedger(cfg.Path, lockWait)
		if err != nil {
			return nil, err
		}
		return l, nil
	case config.BackendMySQL, config.BackendSQLite:
		l, err := storage.OpenSQLLedger(ctx, storage.Dialect(cfg.Backend), cfg.DSN, lockWait)
		if err != nil {
			return nil, err
		}
		if err := l.Migrate(ctx); err != nil {
			l.Close()
			return nil, fmt.Errorf("migrate %s ledger: %w", cfg.Backend, err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
