package shared

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceGenerator issues per-company, per-document sequential numbers.
// Each Next call takes a transaction-scoped advisory lock keyed on
// (company, kind) so concurrent issuers never observe the same counter
// value. Used for invoice document numbers and provisional ISBN codes.
type SequenceGenerator struct {
	pool *pgxpool.Pool
}

// NewSequenceGenerator constructs the generator.
func NewSequenceGenerator(pool *pgxpool.Pool) *SequenceGenerator {
	return &SequenceGenerator{pool: pool}
}

// Next returns the next value of the named counter and a formatted code.
func (g *SequenceGenerator) Next(ctx context.Context, companyID int64, kind, prefix string) (string, error) {
	if g == nil || g.pool == nil {
		return "", errors.New("sequence generator not initialised")
	}
	if kind == "" {
		return "", errors.New("sequence kind required")
	}
	var value int64
	err := pgx.BeginTxFunc(ctx, g.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey(companyID, kind)); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `INSERT INTO doc_sequences (company_id, kind, value)
VALUES ($1, $2, 1)
ON CONFLICT (company_id, kind) DO UPDATE SET value = doc_sequences.value + 1
RETURNING value`, companyID, kind).Scan(&value)
	})
	if err != nil {
		return "", fmt.Errorf("sequence %s: %w", kind, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, value), nil
}

func lockKey(companyID int64, kind string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(kind))
	return companyID<<32 | int64(h.Sum32())
}
