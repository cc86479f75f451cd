package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/rl1809/mintmarket/internal/port"
)

const stateTable = "ledger_state"

//go:embed migrations
var migrations embed.FS

type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// SQLLedger stores the state as a key/value table in MySQL or SQLite. One
// ledger transaction maps to one SQL transaction.
type SQLLedger struct {
	lock    *txLock
	db      *sql.DB
	dialect Dialect
}

func OpenSQLLedger(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*SQLLedger, error) {
	if dialect != DialectMySQL && dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return NewSQLLedger(db, dialect, opts...), nil
}

func NewSQLLedger(db *sql.DB, dialect Dialect, opts ...Option) *SQLLedger {
	return &SQLLedger{lock: newTxLock(buildOptions(opts)), db: db, dialect: dialect}
}

// Migrate applies the embedded schema migrations for the ledger's dialect.
func (l *SQLLedger) Migrate(ctx context.Context) error {
	dir, err := fs.Sub(migrations, "migrations/"+string(l.dialect))
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}

	gooseDialect := goose.DialectMySQL
	if l.dialect == DialectSQLite {
		gooseDialect = goose.DialectSQLite3
	}

	provider, err := goose.NewProvider(gooseDialect, l.db, dir)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (l *SQLLedger) Update(ctx context.Context, fn func(tx port.Tx) error) error {
	unlock, err := l.lock.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{ctx: ctx, tx: tx, dialect: l.dialect, forUpdate: l.dialect == DialectMySQL}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (l *SQLLedger) View(ctx context.Context, fn func(tx port.Tx) error) error {
	unlock, err := l.lock.rlock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	return fn(&sqlTx{ctx: ctx, tx: tx, dialect: l.dialect, readOnly: true})
}

func (l *SQLLedger) Close() error {
	return l.db.Close()
}

type sqlTx struct {
	ctx       context.Context
	tx        *sql.Tx
	dialect   Dialect
	readOnly  bool
	forUpdate bool
}

func (t *sqlTx) Get(key []byte) ([]byte, error) {
	q := sq.Select("v").From(stateTable).Where("k = ?", key)
	if t.forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var v []byte
	err = t.tx.QueryRowContext(t.ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (t *sqlTx) Put(key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}

	upsert := "ON DUPLICATE KEY UPDATE v = VALUES(v)"
	if t.dialect == DialectSQLite {
		upsert = "ON CONFLICT(k) DO UPDATE SET v = excluded.v"
	}

	query, args, err := sq.Insert(stateTable).Columns("k", "v").Values(key, value).Suffix(upsert).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := t.tx.ExecContext(t.ctx, query, args...); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

func (t *sqlTx) Delete(key []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}

	query, args, err := sq.Delete(stateTable).Where("k = ?", key).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := t.tx.ExecContext(t.ctx, query, args...); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}
