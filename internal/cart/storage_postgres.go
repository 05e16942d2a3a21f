package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStorage keeps carts in the cart_storage table as jsonb.
type PostgresStorage struct {
	db *sql.DB
}

const (
	CreateStorageTable = `CREATE TABLE IF NOT EXISTS cart_storage (
        key TEXT PRIMARY KEY,
        value jsonb NOT NULL,
        "updatedAt" TEXT
    )`

	getEntryQuery    = `SELECT value FROM cart_storage WHERE key = $1`
	upsertEntryQuery = `INSERT INTO cart_storage (key, value, "updatedAt") VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, "updatedAt" = EXCLUDED."updatedAt"`
	deleteEntryQuery = `DELETE FROM cart_storage WHERE key = $1`
)

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	if err := s.db.QueryRowContext(ctx, getEntryQuery, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (s *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, upsertEntryQuery, key, string(value), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deleteEntryQuery, key)
	return err
}
