package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// Repository persists masterdata in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO products (company_id, title, author, isbn, sale_price, purchase_price, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		p.CompanyID, p.Title, p.Author, p.ISBN, p.SalePrice, p.PurchasePrice, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return p, mapPgError(err)
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, title, author, isbn, sale_price, purchase_price, is_active, created_at, updated_at
FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.CompanyID, &p.Title, &p.Author, &p.ISBN, &p.SalePrice, &p.PurchasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NotFoundf("product %d", id)
	}
	return p, err
}

func (r *Repository) ListProducts(ctx context.Context, companyID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, title, author, isbn, sale_price, purchase_price, is_active, created_at, updated_at
FROM products WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Title, &p.Author, &p.ISBN, &p.SalePrice, &p.PurchasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (company_id, name, phone, address, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		c.CompanyID, c.Name, c.Phone, c.Address).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return c, mapPgError(err)
}

func (r *Repository) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, name, phone, address, created_at, updated_at FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.NotFoundf("customer %d", id)
	}
	return c, err
}

func (r *Repository) ListCustomers(ctx context.Context, companyID int64) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, phone, address, created_at, updated_at
FROM customers WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (company_id, name, phone, address, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		s.CompanyID, s.Name, s.Phone, s.Address).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return s, mapPgError(err)
}

func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, name, phone, address, created_at, updated_at FROM suppliers WHERE id=$1`, id).
		Scan(&s.ID, &s.CompanyID, &s.Name, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, shared.NotFoundf("supplier %d", id)
	}
	return s, err
}

func (r *Repository) ListSuppliers(ctx context.Context, companyID int64) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, phone, address, created_at, updated_at
FROM suppliers WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suppliers := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// GetProductForUpdateTx locks a product row inside a foreign transaction
// so the weighted-average cost update is race free.
func GetProductForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (Product, error) {
	var p Product
	err := tx.QueryRow(ctx, `SELECT id, company_id, title, author, isbn, sale_price, purchase_price, is_active, created_at, updated_at
FROM products WHERE id=$1 FOR UPDATE`, id).
		Scan(&p.ID, &p.CompanyID, &p.Title, &p.Author, &p.ISBN, &p.SalePrice, &p.PurchasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NotFoundf("product %d", id)
	}
	return p, err
}

// UpdatePurchasePriceTx writes the recomputed weighted-average cost.
func UpdatePurchasePriceTx(ctx context.Context, tx pgx.Tx, id int64, price decimal.Decimal) error {
	_, err := tx.Exec(ctx, `UPDATE products SET purchase_price=$2, updated_at=NOW() WHERE id=$1`, id, price)
	return err
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
