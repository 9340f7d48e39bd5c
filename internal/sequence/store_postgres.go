package sequence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresStore persists counters in the document_sequences table.
type PostgresStore struct {
	db dbtx
}

// NewPostgresStore constructs a store backed by a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// WithTx returns a store bound to the given transaction, so that the counter
// increment commits or rolls back together with the caller's save.
func (s *PostgresStore) WithTx(tx pgx.Tx) *PostgresStore {
	return &PostgresStore{db: tx}
}

// IncrementAndGet bumps the counter for a key, creating it on first use.
// The upsert-increment runs as a single statement so concurrent allocations
// for the same key can never observe the same value.
func (s *PostgresStore) IncrementAndGet(ctx context.Context, key Key) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO document_sequences (station_code, doc_type, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (station_code, doc_type)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, key.StationCode, key.DocType).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Current reads the counter without mutating it. Missing keys read as 0.
func (s *PostgresStore) Current(ctx context.Context, key Key) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT last_number FROM document_sequences
		WHERE station_code = $1 AND doc_type = $2
	`, key.StationCode, key.DocType).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
