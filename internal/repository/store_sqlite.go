package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// NewSQLiteStore opens a SQLite-backed store and bootstraps the schema.
// dbPath is the database file path; ":memory:" gives an in-memory database
// (used by the test suites).
func NewSQLiteStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db, driver: DriverSQLite}, nil
}

// createTables bootstraps the commerce schema.
func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		coins INTEGER NOT NULL DEFAULT 0 CHECK (coins >= 0),
		subscription_level TEXT NOT NULL DEFAULT 'bronze',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		level TEXT NOT NULL,
		starts_at DATETIME NOT NULL,
		ends_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id, ends_at);

	CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		visibility TEXT NOT NULL DEFAULT 'public',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_rooms_owner ON rooms(owner_id);

	CREATE TABLE IF NOT EXISTS user_room_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		usage_year INTEGER NOT NULL,
		usage_month INTEGER NOT NULL,
		monthly_rooms_created INTEGER NOT NULL DEFAULT 0,
		UNIQUE (user_id, usage_year, usage_month)
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id INTEGER NOT NULL,
		owner_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		price INTEGER NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		status TEXT NOT NULL DEFAULT 'active',
		visibility TEXT NOT NULL DEFAULT 'public',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_products_room ON products(room_id);

	CREATE TABLE IF NOT EXISTS cart_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		reserved_stock INTEGER NOT NULL DEFAULT 0 CHECK (reserved_stock >= 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		buyer_id INTEGER NOT NULL,
		seller_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price INTEGER NOT NULL,
		total_price INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		batch_id TEXT,
		parent_order_id INTEGER,
		placed_from TEXT NOT NULL DEFAULT 'direct',
		ship_name TEXT NOT NULL DEFAULT '',
		ship_address TEXT NOT NULL DEFAULT '',
		ship_phone TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id);
	CREATE INDEX IF NOT EXISTS idx_orders_parent ON orders(parent_order_id);
	CREATE INDEX IF NOT EXISTS idx_orders_batch ON orders(batch_id);

	CREATE TABLE IF NOT EXISTS coin_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		direction TEXT NOT NULL CHECK (direction IN ('in','out')),
		amount INTEGER NOT NULL CHECK (amount > 0),
		source_type TEXT NOT NULL,
		action TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_coin_tx_user ON coin_transactions(user_id, created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_reward_claim_day
		ON coin_transactions(user_id, action, date(created_at))
		WHERE direction = 'in' AND source_type = 'reward';
	`
	_, err := db.Exec(query)
	return err
}
