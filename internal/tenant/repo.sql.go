package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// Repository persists companies and API keys in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateCompany(ctx context.Context, c Company) (Company, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (name, address, phone, is_active, created_at, updated_at)
VALUES ($1,$2,$3,TRUE,NOW(),NOW()) RETURNING id, is_active, created_at, updated_at`,
		c.Name, c.Address, c.Phone).
		Scan(&c.ID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) GetCompany(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT id, name, address, phone, is_active, created_at, updated_at
FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.NotFoundf("company %d", id)
	}
	return c, err
}

func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address, phone, is_active, created_at, updated_at
FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	companies := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *Repository) ListCompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM companies WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) InsertAPIKey(ctx context.Context, key APIKey) (APIKey, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO api_keys (company_id, prefix, key_hash, label, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING id, created_at`,
		key.CompanyID, key.Prefix, key.KeyHash, key.Label).
		Scan(&key.ID, &key.CreatedAt)
	return key, err
}

// GetAPIKeyByPrefix looks a key up by its public prefix. The caller
// verifies the secret against the stored bcrypt hash.
func (r *Repository) GetAPIKeyByPrefix(ctx context.Context, prefix string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `SELECT k.id, k.company_id, k.prefix, k.key_hash, k.label, k.created_at
FROM api_keys k JOIN companies c ON c.id = k.company_id
WHERE k.prefix=$1 AND c.is_active`, prefix).
		Scan(&key.ID, &key.CompanyID, &key.Prefix, &key.KeyHash, &key.Label, &key.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, shared.ErrTenant
	}
	return key, err
}
