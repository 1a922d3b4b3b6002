package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates journal rows per sub-account.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SubAccountTotals sums debits and credits per active sub-account over
// the date range. Sub-accounts with no activity come back with zero sums
// so reports can still list them.
func (r *Repository) SubAccountTotals(ctx context.Context, companyID int64, from, to time.Time) ([]SubAccountTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT sa.id, sa.name, ac.id, ac.name, ac.type,
  COALESCE(SUM(t.amount) FILTER (WHERE t.sub_debit_id = sa.id), 0) AS debit,
  COALESCE(SUM(t.amount) FILTER (WHERE t.sub_credit_id = sa.id), 0) AS credit
FROM sub_accounts sa
JOIN accounts ac ON ac.id = sa.account_id
LEFT JOIN transactions t
  ON t.company_id = sa.company_id
 AND (t.sub_debit_id = sa.id OR t.sub_credit_id = sa.id)
 AND t.date >= $2 AND t.date <= $3
WHERE sa.company_id = $1 AND sa.status = 'active'
GROUP BY sa.id, sa.name, ac.id, ac.name, ac.type
ORDER BY ac.id, sa.id`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := []SubAccountTotal{}
	for rows.Next() {
		var t SubAccountTotal
		if err := rows.Scan(&t.SubAccountID, &t.SubAccountName, &t.AccountID, &t.AccountName, &t.AccountType, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
