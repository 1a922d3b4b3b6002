package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// Repository reads stock rows. Mutations only happen through the
// transaction-scoped helpers below, as part of an invoice operation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the stock row for a company/product pair.
func (r *Repository) Get(ctx context.Context, companyID, productID int64) (Stock, error) {
	var s Stock
	err := r.pool.QueryRow(ctx, `SELECT product_id, company_id, quantity, updated_at
FROM stocks WHERE company_id=$1 AND product_id=$2`, companyID, productID).
		Scan(&s.ProductID, &s.CompanyID, &s.Quantity, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stock{ProductID: productID, CompanyID: companyID}, nil
	}
	return s, err
}

// List returns every stock row for a company.
func (r *Repository) List(ctx context.Context, companyID int64) ([]Stock, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, company_id, quantity, updated_at
FROM stocks WHERE company_id=$1 ORDER BY product_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stocks := []Stock{}
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.ProductID, &s.CompanyID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// IncrementTx adds qty to the company's stock row, creating it on first
// receipt. Runs as a single statement so concurrent invoices never lose
// an update.
func IncrementTx(ctx context.Context, tx pgx.Tx, companyID, productID int64, qty float64) error {
	if qty <= 0 {
		return shared.Validationf("stock increment must be positive, got %v", qty)
	}
	_, err := tx.Exec(ctx, `INSERT INTO stocks (company_id, product_id, quantity, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (company_id, product_id) DO UPDATE SET quantity = stocks.quantity + EXCLUDED.quantity, updated_at=NOW()`,
		companyID, productID, qty)
	return err
}

// DecrementTx subtracts qty with a floor-at-zero guard in the same
// statement. A miss means the row does not exist or on-hand quantity is
// short; both surface as ErrInsufficientStock.
func DecrementTx(ctx context.Context, tx pgx.Tx, companyID, productID int64, qty float64) error {
	if qty <= 0 {
		return shared.Validationf("stock decrement must be positive, got %v", qty)
	}
	tag, err := tx.Exec(ctx, `UPDATE stocks SET quantity = quantity - $3, updated_at=NOW()
WHERE company_id=$1 AND product_id=$2 AND quantity >= $3`, companyID, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d needs %v", shared.ErrInsufficientStock, productID, qty)
	}
	return nil
}
