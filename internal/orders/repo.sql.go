package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, order Order) (Order, error) {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO orders (company_id, kind, party_id, number, status, date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW()) RETURNING id, created_at, updated_at`,
			order.CompanyID, string(order.Kind), order.PartyID, order.Number, string(order.Status), order.Date).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID
			if err := tx.QueryRow(ctx, `INSERT INTO order_lines (order_id, product_id, ordered_qty, fulfilled_qty, unit_price)
VALUES ($1,$2,$3,0,$4) RETURNING id`, order.ID, line.ProductID, line.OrderedQty, line.UnitPrice).Scan(&line.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	var order Order
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, kind, party_id, number, status, date, created_at, updated_at
FROM orders WHERE id=$1`, id).
		Scan(&order.ID, &order.CompanyID, &order.Kind, &order.PartyID, &order.Number, &order.Status, &order.Date, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.NotFoundf("order %d", id)
	}
	if err != nil {
		return Order{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, ordered_qty, fulfilled_qty, unit_price
FROM order_lines WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.OrderedQty, &line.FulfilledQty, &line.UnitPrice); err != nil {
			return Order{}, err
		}
		order.Lines = append(order.Lines, line)
	}
	return order, rows.Err()
}

func (r *Repository) List(ctx context.Context, companyID int64, kind OrderKind) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, kind, party_id, number, status, date, created_at, updated_at
FROM orders WHERE company_id=$1 AND ($2='' OR kind=$2) ORDER BY id DESC`, companyID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Order{}
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.CompanyID, &order.Kind, &order.PartyID, &order.Number, &order.Status, &order.Date, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, string(status))
	return err
}

// GetForUpdateTx locks an order and its lines inside a foreign
// transaction so fulfillment updates serialize with the invoice write.
func GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (Order, error) {
	var order Order
	err := tx.QueryRow(ctx, `SELECT id, company_id, kind, party_id, number, status, date, created_at, updated_at
FROM orders WHERE id=$1 FOR UPDATE`, id).
		Scan(&order.ID, &order.CompanyID, &order.Kind, &order.PartyID, &order.Number, &order.Status, &order.Date, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.NotFoundf("order %d", id)
	}
	if err != nil {
		return Order{}, err
	}
	rows, err := tx.Query(ctx, `SELECT id, order_id, product_id, ordered_qty, fulfilled_qty, unit_price
FROM order_lines WHERE order_id=$1 ORDER BY id FOR UPDATE`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.OrderedQty, &line.FulfilledQty, &line.UnitPrice); err != nil {
			return Order{}, err
		}
		order.Lines = append(order.Lines, line)
	}
	return order, rows.Err()
}

// SaveFulfillmentTx writes updated line quantities and the recomputed
// status inside a foreign transaction.
func SaveFulfillmentTx(ctx context.Context, tx pgx.Tx, order Order) error {
	for _, line := range order.Lines {
		if _, err := tx.Exec(ctx, `UPDATE order_lines SET fulfilled_qty=$2 WHERE id=$1`, line.ID, line.FulfilledQty); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, order.ID, string(order.Status))
	return err
}
