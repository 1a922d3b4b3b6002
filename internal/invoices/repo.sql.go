package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/masterdata"
	"github.com/folio-erp/folio-erp/internal/orders"
	"github.com/folio-erp/folio-erp/internal/shared"
	"github.com/folio-erp/folio-erp/internal/stock"
)

// Repository persists invoices in PostgreSQL. Its transaction wrapper
// composes the ledger, stock, orders, and masterdata helpers so one
// invoice workflow commits as one database transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
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

const invoiceColumns = `id, company_id, kind, number, party_id, order_id, parent_invoice_id, date, total_amount, discount, round_off, paid_amount, due_amount, profit, payment_method, reference_number, status, created_at, updated_at`

func (r *Repository) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.NotFoundf("invoice %d", id)
	}
	if err != nil {
		return Invoice{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, invoice_id, product_id, quantity, unit_price, discount_pct, currency_conversion, line_total, line_net, unit_cost
FROM invoice_lines WHERE invoice_id=$1 ORDER BY id`, id)
	if err != nil {
		return Invoice{}, err
	}
	defer rows.Close()
	inv.Lines, err = scanLines(rows)
	return inv, err
}

func (r *Repository) List(ctx context.Context, companyID int64, kind InvoiceKind) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE company_id=$1 AND ($2='' OR kind=$2) ORDER BY id DESC`, companyID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

// ListByParty fetches a party's active invoices of one kind, used by the
// due reconstruction over a customer or supplier ledger.
func (r *Repository) ListByParty(ctx context.Context, companyID, partyID int64, kind InvoiceKind) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE company_id=$1 AND party_id=$2 AND kind=$3 AND status='active' ORDER BY id`, companyID, partyID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

// ListReturns fetches the active returns linked to a parent invoice,
// lines included. The return workflows replay these lines to cap each
// product's cumulative returned quantity at the invoiced quantity.
func (r *Repository) ListReturns(ctx context.Context, parentInvoiceID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE parent_invoice_id=$1 AND kind IN ('sale_return','purchase_return') AND status='active' ORDER BY id`, parentInvoiceID)
	if err != nil {
		return nil, err
	}
	invs, err := func() ([]Invoice, error) {
		defer rows.Close()
		return scanInvoices(rows)
	}()
	if err != nil || len(invs) == 0 {
		return invs, err
	}
	ids := make([]int64, len(invs))
	byID := make(map[int64]*Invoice, len(invs))
	for i := range invs {
		ids[i] = invs[i].ID
		byID[invs[i].ID] = &invs[i]
	}
	lineRows, err := r.pool.Query(ctx, `SELECT id, invoice_id, product_id, quantity, unit_price, discount_pct, currency_conversion, line_total, line_net, unit_cost
FROM invoice_lines WHERE invoice_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	lines, err := scanLines(lineRows)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if inv, ok := byID[line.InvoiceID]; ok {
			inv.Lines = append(inv.Lines, line)
		}
	}
	return invs, nil
}

func (r *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO invoices (company_id, kind, number, party_id, order_id, parent_invoice_id, date, total_amount, discount, round_off, paid_amount, due_amount, profit, payment_method, reference_number, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		inv.CompanyID, string(inv.Kind), inv.Number, inv.PartyID, nullInt(inv.OrderID), nullInt(inv.ParentInvoiceID),
		inv.Date, inv.TotalAmount, inv.Discount, inv.RoundOff, inv.PaidAmount, inv.DueAmount, inv.Profit,
		inv.PaymentMethod, inv.ReferenceNumber, string(inv.Status)).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	for i := range inv.Lines {
		line := &inv.Lines[i]
		line.InvoiceID = inv.ID
		if err := r.tx.QueryRow(ctx, `INSERT INTO invoice_lines (invoice_id, product_id, quantity, unit_price, discount_pct, currency_conversion, line_total, line_net, unit_cost)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
			inv.ID, line.ProductID, line.Quantity, line.UnitPrice, line.DiscountPct, line.CurrencyConversion,
			line.LineTotal, line.LineNet, line.UnitCost).Scan(&line.ID); err != nil {
			return Invoice{}, err
		}
	}
	return inv, nil
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.NotFoundf("invoice %d", id)
	}
	return inv, err
}

func (r *txRepository) UpdateInvoiceProfit(ctx context.Context, id int64, profit decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE invoices SET profit=$2, updated_at=NOW() WHERE id=$1`, id, profit)
	return err
}

func (r *txRepository) UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	_, err := r.tx.Exec(ctx, `UPDATE invoices SET status=$2, updated_at=NOW() WHERE id=$1`, id, string(status))
	return err
}

func (r *txRepository) GetSubAccount(ctx context.Context, id int64) (ledger.SubAccount, error) {
	return ledger.GetSubAccountTx(ctx, r.tx, id)
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn ledger.Transaction) (int64, error) {
	return ledger.InsertTransactionTx(ctx, r.tx, txn)
}

func (r *txRepository) RoleMap(ctx context.Context, companyID int64) (ledger.RoleMap, error) {
	return ledger.GetRoleMapTx(ctx, r.tx, companyID)
}

func (r *txRepository) IncrementStock(ctx context.Context, companyID, productID int64, qty float64) error {
	return stock.IncrementTx(ctx, r.tx, companyID, productID, qty)
}

func (r *txRepository) DecrementStock(ctx context.Context, companyID, productID int64, qty float64) error {
	return stock.DecrementTx(ctx, r.tx, companyID, productID, qty)
}

func (r *txRepository) StockQty(ctx context.Context, companyID, productID int64) (float64, error) {
	var qty float64
	err := r.tx.QueryRow(ctx, `SELECT quantity FROM stocks WHERE company_id=$1 AND product_id=$2 FOR UPDATE`,
		companyID, productID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, id int64) (masterdata.Product, error) {
	return masterdata.GetProductForUpdateTx(ctx, r.tx, id)
}

func (r *txRepository) UpdateProductPurchasePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	return masterdata.UpdatePurchasePriceTx(ctx, r.tx, id, price)
}

func (r *txRepository) GetOrderForUpdate(ctx context.Context, id int64) (orders.Order, error) {
	return orders.GetForUpdateTx(ctx, r.tx, id)
}

func (r *txRepository) SaveOrderFulfillment(ctx context.Context, order orders.Order) error {
	return orders.SaveFulfillmentTx(ctx, r.tx, order)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (Invoice, error) {
	var inv Invoice
	var orderID, parentID *int64
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.Kind, &inv.Number, &inv.PartyID, &orderID, &parentID,
		&inv.Date, &inv.TotalAmount, &inv.Discount, &inv.RoundOff, &inv.PaidAmount, &inv.DueAmount, &inv.Profit,
		&inv.PaymentMethod, &inv.ReferenceNumber, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	if orderID != nil {
		inv.OrderID = *orderID
	}
	if parentID != nil {
		inv.ParentInvoiceID = *parentID
	}
	return inv, nil
}

func scanInvoices(rows pgx.Rows) ([]Invoice, error) {
	invoices := []Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanLines(rows pgx.Rows) ([]Line, error) {
	lines := []Line{}
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ProductID, &line.Quantity, &line.UnitPrice,
			&line.DiscountPct, &line.CurrencyConversion, &line.LineTotal, &line.LineNet, &line.UnitCost); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func nullInt(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
