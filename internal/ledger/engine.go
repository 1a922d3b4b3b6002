package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// JournalTx is the slice of a database transaction the engine needs.
// Invoice workflows implement it on their own transaction wrapper so a
// posting commits or rolls back together with stock and order writes.
type JournalTx interface {
	GetSubAccount(ctx context.Context, id int64) (SubAccount, error)
	InsertTransaction(ctx context.Context, txn Transaction) (int64, error)
}

// Engine appends balanced journal rows. It is stateless; all persistence
// happens through the JournalTx it is handed.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs the journal engine.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// WithNow overrides the clock for testing.
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Post resolves both sub-accounts to their owning accounts and appends
// exactly one journal row. The row carries account-level and sub-account
// level ids so reports never need a join to aggregate either way.
func (e *Engine) Post(ctx context.Context, tx JournalTx, in PostingInput) (Transaction, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, shared.Validationf("posting amount must be positive, got %s", in.Amount)
	}
	if in.CompanyID == 0 {
		return Transaction{}, shared.ErrTenant
	}
	if in.SubDebitID == 0 || in.SubCreditID == 0 {
		return Transaction{}, shared.Validationf("debit and credit sub-accounts required")
	}

	subDebit, err := tx.GetSubAccount(ctx, in.SubDebitID)
	if err != nil {
		return Transaction{}, fmt.Errorf("resolve debit sub-account %d: %w", in.SubDebitID, err)
	}
	subCredit, err := tx.GetSubAccount(ctx, in.SubCreditID)
	if err != nil {
		return Transaction{}, fmt.Errorf("resolve credit sub-account %d: %w", in.SubCreditID, err)
	}
	if subDebit.CompanyID != in.CompanyID || subCredit.CompanyID != in.CompanyID {
		return Transaction{}, shared.Forbiddenf("sub-account outside company %d", in.CompanyID)
	}
	if subDebit.AccountID == subCredit.AccountID {
		return Transaction{}, fmt.Errorf("%w: account %d", ErrSameAccount, subDebit.AccountID)
	}

	date := in.Date
	if date.IsZero() {
		date = e.now()
	}
	txn := Transaction{
		Date:            NormalizeDate(date),
		DebitID:         subDebit.AccountID,
		CreditID:        subCredit.AccountID,
		SubDebitID:      subDebit.ID,
		SubCreditID:     subCredit.ID,
		Amount:          in.Amount.Round(2),
		Particulars:     in.Particulars,
		Type:            in.Type,
		RelatedID:       in.RelatedID,
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: in.ReferenceNumber,
		CompanyID:       in.CompanyID,
	}
	id, err := tx.InsertTransaction(ctx, txn)
	if err != nil {
		return Transaction{}, fmt.Errorf("append journal row: %w", err)
	}
	txn.ID = id
	return txn, nil
}
