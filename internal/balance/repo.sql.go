package balance

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/invoices"
)

// Repository runs the batched aggregates over the journal and invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SumByDebit and SumByCredit filter on the account-level debit_id and
// credit_id columns the journal denormalizes, so postings under any
// sub-account of Cash or Bank count toward the replay.
func (r *Repository) SumByDebit(ctx context.Context, companyID int64, txnType string, relatedIDs, debitAccountIDs []int64) (map[int64]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT related_id, SUM(amount) FROM transactions
WHERE company_id=$1 AND type=$2 AND related_id = ANY($3) AND debit_id = ANY($4)
GROUP BY related_id`, companyID, txnType, relatedIDs, debitAccountIDs)
	if err != nil {
		return nil, err
	}
	return scanSums(rows)
}

func (r *Repository) SumByCredit(ctx context.Context, companyID int64, txnType string, relatedIDs, creditAccountIDs []int64) (map[int64]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT related_id, SUM(amount) FROM transactions
WHERE company_id=$1 AND type=$2 AND related_id = ANY($3) AND credit_id = ANY($4)
GROUP BY related_id`, companyID, txnType, relatedIDs, creditAccountIDs)
	if err != nil {
		return nil, err
	}
	return scanSums(rows)
}

func (r *Repository) ReturnTotals(ctx context.Context, companyID int64, kind invoices.InvoiceKind, parentIDs []int64) (map[int64]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT parent_invoice_id, SUM(total_amount) FROM invoices
WHERE company_id=$1 AND kind=$2 AND status='active' AND parent_invoice_id = ANY($3)
GROUP BY parent_invoice_id`, companyID, string(kind), parentIDs)
	if err != nil {
		return nil, err
	}
	return scanSums(rows)
}

func scanSums(rows pgx.Rows) (map[int64]decimal.Decimal, error) {
	defer rows.Close()
	sums := map[int64]decimal.Decimal{}
	for rows.Next() {
		var id int64
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		sums[id] = sum
	}
	return sums, rows.Err()
}
