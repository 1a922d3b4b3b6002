package balance

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/folio-erp/folio-erp/internal/invoices"
	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort aggregates journal rows and linked returns in batches so
// a party with many invoices never triggers per-invoice queries. The sum
// queries filter on account-level ids, not sub-accounts: a payment posted
// to any sub-account under Cash is still a payment.
type RepositoryPort interface {
	SumByDebit(ctx context.Context, companyID int64, txnType string, relatedIDs, debitAccountIDs []int64) (map[int64]decimal.Decimal, error)
	SumByCredit(ctx context.Context, companyID int64, txnType string, relatedIDs, creditAccountIDs []int64) (map[int64]decimal.Decimal, error)
	ReturnTotals(ctx context.Context, companyID int64, kind invoices.InvoiceKind, parentIDs []int64) (map[int64]decimal.Decimal, error)
}

// InvoicePort reads invoice headers.
type InvoicePort interface {
	Get(ctx context.Context, id int64) (invoices.Invoice, error)
	ListByParty(ctx context.Context, companyID, partyID int64, kind invoices.InvoiceKind) ([]invoices.Invoice, error)
}

// RolePort resolves the company's account role bindings and the
// sub-account tree needed to lift role subs to their owning accounts.
type RolePort interface {
	GetRoleMap(ctx context.Context, companyID int64) (ledger.RoleMap, error)
	ListSubAccounts(ctx context.Context, companyID int64) ([]ledger.SubAccount, error)
}

// Service reconstructs due amounts by replaying the journal. It is
// read-only and idempotent: running it twice changes nothing.
type Service struct {
	repo  RepositoryPort
	inv   InvoicePort
	roles RolePort
}

// NewService builds Service.
func NewService(repo RepositoryPort, inv InvoicePort, roles RolePort) *Service {
	return &Service{repo: repo, inv: inv, roles: roles}
}

// ForInvoice reconstructs the outstanding due of one sale or purchase
// invoice.
func (s *Service) ForInvoice(ctx context.Context, companyID, invoiceID int64) (InvoiceDue, error) {
	if companyID == 0 {
		return InvoiceDue{}, shared.ErrTenant
	}
	inv, err := s.inv.Get(ctx, invoiceID)
	if err != nil {
		return InvoiceDue{}, err
	}
	if inv.CompanyID != companyID {
		return InvoiceDue{}, shared.Forbiddenf("invoice %d", invoiceID)
	}
	dues, err := s.compute(ctx, companyID, inv.Kind, []invoices.Invoice{inv})
	if err != nil {
		return InvoiceDue{}, err
	}
	return dues[0], nil
}

// ForParty reconstructs a customer's receivable (kind sale) or a
// supplier's payable (kind purchase) across all active invoices.
func (s *Service) ForParty(ctx context.Context, companyID, partyID int64, kind invoices.InvoiceKind) (PartyDue, error) {
	if companyID == 0 {
		return PartyDue{}, shared.ErrTenant
	}
	if partyID == 0 {
		return PartyDue{}, shared.Validationf("party required")
	}
	invs, err := s.inv.ListByParty(ctx, companyID, partyID, kind)
	if err != nil {
		return PartyDue{}, err
	}
	due := PartyDue{PartyID: partyID, Invoices: []InvoiceDue{}}
	if len(invs) == 0 {
		return due, nil
	}
	dues, err := s.compute(ctx, companyID, kind, invs)
	if err != nil {
		return PartyDue{}, err
	}
	due.Invoices = dues
	for _, d := range dues {
		due.TotalDue = due.TotalDue.Add(d.Due)
	}
	return due, nil
}

// compute batches the four journal aggregates for a homogeneous set of
// invoices. Sale and purchase replay mirrored sides of the journal: money
// in is a cash debit on sales and a cash credit on purchases.
func (s *Service) compute(ctx context.Context, companyID int64, kind invoices.InvoiceKind, invs []invoices.Invoice) ([]InvoiceDue, error) {
	if kind != invoices.KindSale && kind != invoices.KindPurchase {
		return nil, shared.Validationf("due reconstruction applies to sale or purchase invoices, got %q", kind)
	}
	roles, err := s.roles.GetRoleMap(ctx, companyID)
	if err != nil {
		return nil, err
	}
	subs, err := s.roles.ListSubAccounts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	accountOf := make(map[int64]int64, len(subs))
	for _, sub := range subs {
		accountOf[sub.ID] = sub.AccountID
	}
	cashAccount, err := roleAccount(roles, accountOf, ledger.RoleCash)
	if err != nil {
		return nil, err
	}
	bankAccount, err := roleAccount(roles, accountOf, ledger.RoleBank)
	if err != nil {
		return nil, err
	}
	moneyAccounts := []int64{cashAccount, bankAccount}

	ids := make([]int64, len(invs))
	for i, inv := range invs {
		ids[i] = inv.ID
	}

	var payments, discounts, returns, refunds map[int64]decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	switch kind {
	case invoices.KindSale:
		discountAccount, err := roleAccount(roles, accountOf, ledger.RoleDiscountGiven)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			var err error
			payments, err = s.repo.SumByDebit(gctx, companyID, string(invoices.KindSale), ids, moneyAccounts)
			return err
		})
		g.Go(func() error {
			var err error
			discounts, err = s.repo.SumByDebit(gctx, companyID, string(invoices.KindSale), ids, []int64{discountAccount})
			return err
		})
		g.Go(func() error {
			var err error
			returns, err = s.repo.ReturnTotals(gctx, companyID, invoices.KindSaleReturn, ids)
			return err
		})
		g.Go(func() error {
			var err error
			refunds, err = s.repo.SumByCredit(gctx, companyID, string(invoices.KindSaleReturn), ids, moneyAccounts)
			return err
		})
	case invoices.KindPurchase:
		discountAccount, err := roleAccount(roles, accountOf, ledger.RoleDiscountEarned)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			var err error
			payments, err = s.repo.SumByCredit(gctx, companyID, string(invoices.KindPurchase), ids, moneyAccounts)
			return err
		})
		g.Go(func() error {
			var err error
			discounts, err = s.repo.SumByCredit(gctx, companyID, string(invoices.KindPurchase), ids, []int64{discountAccount})
			return err
		})
		g.Go(func() error {
			var err error
			returns, err = s.repo.ReturnTotals(gctx, companyID, invoices.KindPurchaseReturn, ids)
			return err
		})
		g.Go(func() error {
			var err error
			refunds, err = s.repo.SumByDebit(gctx, companyID, string(invoices.KindPurchaseReturn), ids, moneyAccounts)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dues := make([]InvoiceDue, len(invs))
	for i, inv := range invs {
		d := InvoiceDue{
			InvoiceID: inv.ID,
			Number:    inv.Number,
			Total:     inv.TotalAmount,
			Payments:  payments[inv.ID],
			Discounts: discounts[inv.ID],
			Returns:   returns[inv.ID],
			Refunds:   refunds[inv.ID],
		}
		d.Due = d.Total.Sub(d.Payments).Sub(d.Discounts).Sub(d.Returns).Add(d.Refunds).Round(2)
		dues[i] = d
	}
	return dues, nil
}

// roleAccount resolves a role binding to the account that owns the bound
// sub-account. The journal is filtered at the account level so sibling
// sub-accounts under the same account are replayed together.
func roleAccount(roles ledger.RoleMap, accountOf map[int64]int64, role ledger.AccountRole) (int64, error) {
	subID, err := roles.Resolve(role)
	if err != nil {
		return 0, err
	}
	accountID, ok := accountOf[subID]
	if !ok {
		return 0, shared.Validationf("sub-account %d bound to role %s is missing from the account tree", subID, role)
	}
	return accountID, nil
}
