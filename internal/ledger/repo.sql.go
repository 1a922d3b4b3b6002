package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// Repository persists the chart of accounts and journal in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by the service.
type TxRepository interface {
	JournalTx
	GetAccount(ctx context.Context, id int64) (Account, error)
	InsertAccount(ctx context.Context, account Account) (int64, error)
	InsertSubAccount(ctx context.Context, sub SubAccount) (int64, error)
	BindRole(ctx context.Context, companyID int64, role AccountRole, subAccountID int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) ListAccounts(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, type, created_at, updated_at
FROM accounts WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &a.Type, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) ListSubAccounts(ctx context.Context, companyID int64) ([]SubAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, account_id, company_id, name, status, created_at, updated_at
FROM sub_accounts WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subs := []SubAccount{}
	for rows.Next() {
		var s SubAccount
		if err := rows.Scan(&s.ID, &s.AccountID, &s.CompanyID, &s.Name, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.pool.Query(ctx, `SELECT id, date, debit_id, credit_id, sub_debit_id, sub_credit_id, amount, particulars, type, related_id, payment_method, reference_number, company_id, created_at
FROM transactions
WHERE company_id=$1
  AND ($2 = '' OR type = $2)
  AND ($3 = 0 OR related_id = $3)
  AND date BETWEEN COALESCE(NULLIF($4::timestamptz, '0001-01-01'::timestamptz), '-infinity') AND COALESCE(NULLIF($5::timestamptz, '0001-01-01'::timestamptz), 'infinity')
ORDER BY date ASC, id ASC
LIMIT $6`, filter.CompanyID, filter.Type, filter.RelatedID, filter.From, filter.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) GetRoleMap(ctx context.Context, companyID int64) (RoleMap, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, sub_account_id FROM account_roles WHERE company_id=$1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := RoleMap{}
	for rows.Next() {
		var role string
		var subID int64
		if err := rows.Scan(&role, &subID); err != nil {
			return nil, err
		}
		roles[AccountRole(role)] = subID
	}
	return roles, rows.Err()
}

func (r *txRepository) GetAccount(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := r.tx.QueryRow(ctx, `SELECT id, company_id, name, type, created_at, updated_at FROM accounts WHERE id=$1`, id).
		Scan(&a.ID, &a.CompanyID, &a.Name, &a.Type, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.NotFoundf("account %d", id)
	}
	return a, err
}

func (r *txRepository) GetSubAccount(ctx context.Context, id int64) (SubAccount, error) {
	return getSubAccountTx(ctx, r.tx, id)
}

func (r *txRepository) InsertAccount(ctx context.Context, account Account) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO accounts (company_id, name, type, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING id`, account.CompanyID, account.Name, string(account.Type)).Scan(&id)
	return id, mapPgError(err)
}

func (r *txRepository) InsertSubAccount(ctx context.Context, sub SubAccount) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sub_accounts (account_id, company_id, name, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id`, sub.AccountID, sub.CompanyID, sub.Name, string(sub.Status)).Scan(&id)
	return id, mapPgError(err)
}

func (r *txRepository) BindRole(ctx context.Context, companyID int64, role AccountRole, subAccountID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO account_roles (company_id, role, sub_account_id)
VALUES ($1,$2,$3)
ON CONFLICT (company_id, role) DO UPDATE SET sub_account_id=EXCLUDED.sub_account_id`, companyID, string(role), subAccountID)
	return err
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn Transaction) (int64, error) {
	return insertTransactionTx(ctx, r.tx, txn)
}

// getSubAccountTx and insertTransactionTx are shared with the invoice
// module's transaction wrapper so both post through identical SQL.
func getSubAccountTx(ctx context.Context, tx pgx.Tx, id int64) (SubAccount, error) {
	var s SubAccount
	err := tx.QueryRow(ctx, `SELECT id, account_id, company_id, name, status, created_at, updated_at FROM sub_accounts WHERE id=$1`, id).
		Scan(&s.ID, &s.AccountID, &s.CompanyID, &s.Name, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubAccount{}, shared.NotFoundf("sub-account %d", id)
	}
	return s, err
}

func insertTransactionTx(ctx context.Context, tx pgx.Tx, txn Transaction) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO transactions (date, debit_id, credit_id, sub_debit_id, sub_credit_id, amount, particulars, type, related_id, payment_method, reference_number, company_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW()) RETURNING id`,
		txn.Date, txn.DebitID, txn.CreditID, txn.SubDebitID, txn.SubCreditID, txn.Amount,
		txn.Particulars, txn.Type, nullInt(txn.RelatedID), txn.PaymentMethod, txn.ReferenceNumber, txn.CompanyID).Scan(&id)
	return id, err
}

// GetSubAccountTx resolves a sub-account inside a foreign transaction.
func GetSubAccountTx(ctx context.Context, tx pgx.Tx, id int64) (SubAccount, error) {
	return getSubAccountTx(ctx, tx, id)
}

// InsertTransactionTx appends a journal row inside a foreign transaction.
func InsertTransactionTx(ctx context.Context, tx pgx.Tx, txn Transaction) (int64, error) {
	return insertTransactionTx(ctx, tx, txn)
}

// GetRoleMapTx resolves role bindings inside a foreign transaction.
func GetRoleMapTx(ctx context.Context, tx pgx.Tx, companyID int64) (RoleMap, error) {
	rows, err := tx.Query(ctx, `SELECT role, sub_account_id FROM account_roles WHERE company_id=$1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := RoleMap{}
	for rows.Next() {
		var role string
		var subID int64
		if err := rows.Scan(&role, &subID); err != nil {
			return nil, err
		}
		roles[AccountRole(role)] = subID
	}
	return roles, rows.Err()
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	txns := []Transaction{}
	for rows.Next() {
		var t Transaction
		var related *int64
		if err := rows.Scan(&t.ID, &t.Date, &t.DebitID, &t.CreditID, &t.SubDebitID, &t.SubCreditID, &t.Amount,
			&t.Particulars, &t.Type, &related, &t.PaymentMethod, &t.ReferenceNumber, &t.CompanyID, &t.CreatedAt); err != nil {
			return nil, err
		}
		if related != nil {
			t.RelatedID = *related
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func nullInt(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
