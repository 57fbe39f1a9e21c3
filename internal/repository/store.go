package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Supported store drivers.
const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods take a Querier so one call site can compose several
// repositories inside a single transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps the database handle with driver-specific query plumbing.
type Store struct {
	db     *sql.DB
	driver string
}

// DB exposes the underlying handle for non-transactional reads.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the active driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx runs fn inside a transaction, committing on nil error and rolling back
// otherwise. Every multi-step mutation in the service layer goes through
// this: partial application is never observable.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// q rewrites `?` placeholders to `$n` for postgres. Queries throughout the
// package are written once in `?` form.
func (s *Store) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// forUpdate returns the row-locking clause for the active driver. SQLite has
// no FOR UPDATE; its single-writer connection serializes writers instead.
func (s *Store) forUpdate() string {
	if s.driver == DriverSQLite {
		return ""
	}
	return " FOR UPDATE"
}

// Repositories bundles the per-entity repositories over one Store.
type Repositories struct {
	Store         *Store
	Products      *ProductRepository
	Carts         *CartRepository
	Orders        *OrderRepository
	Ledger        *LedgerRepository
	Users         *UserRepository
	Rooms         *RoomRepository
	Usage         *RoomUsageRepository
	Subscriptions *SubscriptionRepository
}

// NewRepositories wires every repository over the given store.
func NewRepositories(s *Store) *Repositories {
	return &Repositories{
		Store:         s,
		Products:      &ProductRepository{s: s},
		Carts:         &CartRepository{s: s},
		Orders:        &OrderRepository{s: s},
		Ledger:        &LedgerRepository{s: s},
		Users:         &UserRepository{s: s},
		Rooms:         &RoomRepository{s: s},
		Usage:         &RoomUsageRepository{s: s},
		Subscriptions: &SubscriptionRepository{s: s},
	}
}
