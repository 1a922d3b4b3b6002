package balance

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/folio-erp/folio-erp/internal/invoices"
	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/shared"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// aggregateFake answers the four journal aggregates. Payment and discount
// queries on the same side are told apart by the account filter: money
// movements filter on both the cash and bank accounts, discounts on one.
type aggregateFake struct {
	mu           sync.Mutex
	payments     map[int64]decimal.Decimal
	discounts    map[int64]decimal.Decimal
	returns      map[int64]decimal.Decimal
	refunds      map[int64]decimal.Decimal
	calls        int
	moneyFilters [][]int64
}

func (f *aggregateFake) pick(accountIDs []int64) map[int64]decimal.Decimal {
	f.mu.Lock()
	f.calls++
	if len(accountIDs) > 1 {
		f.moneyFilters = append(f.moneyFilters, accountIDs)
	}
	f.mu.Unlock()
	if len(accountIDs) == 1 {
		return f.discounts
	}
	return f.payments
}

func (f *aggregateFake) SumByDebit(_ context.Context, _ int64, txnType string, _, debitAccountIDs []int64) (map[int64]decimal.Decimal, error) {
	if txnType == string(invoices.KindSaleReturn) || txnType == string(invoices.KindPurchaseReturn) {
		f.mu.Lock()
		f.calls++
		f.mu.Unlock()
		return f.refunds, nil
	}
	return f.pick(debitAccountIDs), nil
}

func (f *aggregateFake) SumByCredit(_ context.Context, _ int64, txnType string, _, creditAccountIDs []int64) (map[int64]decimal.Decimal, error) {
	if txnType == string(invoices.KindSaleReturn) || txnType == string(invoices.KindPurchaseReturn) {
		f.mu.Lock()
		f.calls++
		f.mu.Unlock()
		return f.refunds, nil
	}
	return f.pick(creditAccountIDs), nil
}

func (f *aggregateFake) ReturnTotals(_ context.Context, _ int64, _ invoices.InvoiceKind, _ []int64) (map[int64]decimal.Decimal, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.returns, nil
}

type invoiceFake struct {
	invoices map[int64]invoices.Invoice
}

func (f *invoiceFake) Get(_ context.Context, id int64) (invoices.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return invoices.Invoice{}, shared.NotFoundf("invoice %d", id)
	}
	return inv, nil
}

func (f *invoiceFake) ListByParty(_ context.Context, companyID, partyID int64, kind invoices.InvoiceKind) ([]invoices.Invoice, error) {
	var out []invoices.Invoice
	for _, inv := range f.invoices {
		if inv.CompanyID == companyID && inv.PartyID == partyID && inv.Kind == kind {
			out = append(out, inv)
		}
	}
	return out, nil
}

type roleFake struct{}

func (roleFake) GetRoleMap(_ context.Context, _ int64) (ledger.RoleMap, error) {
	return ledger.RoleMap{
		ledger.RoleCash:           11,
		ledger.RoleBank:           12,
		ledger.RoleDiscountGiven:  20,
		ledger.RoleDiscountEarned: 21,
	}, nil
}

func (roleFake) ListSubAccounts(_ context.Context, _ int64) ([]ledger.SubAccount, error) {
	return []ledger.SubAccount{
		{ID: 11, AccountID: 1, CompanyID: 1, Name: "Cash in Hand", Status: ledger.SubAccountStatusActive},
		{ID: 12, AccountID: 2, CompanyID: 1, Name: "Current Account", Status: ledger.SubAccountStatusActive},
		{ID: 16, AccountID: 1, CompanyID: 1, Name: "Petty Cash", Status: ledger.SubAccountStatusActive},
		{ID: 20, AccountID: 10, CompanyID: 1, Name: "Discount Given", Status: ledger.SubAccountStatusActive},
		{ID: 21, AccountID: 11, CompanyID: 1, Name: "Discount Earned", Status: ledger.SubAccountStatusActive},
	}, nil
}

func saleFixture(repo *aggregateFake) (*Service, *invoiceFake) {
	inv := &invoiceFake{invoices: map[int64]invoices.Invoice{
		1: {ID: 1, CompanyID: 1, PartyID: 7, Kind: invoices.KindSale, Number: "SIN-000001",
			Status: invoices.StatusActive, TotalAmount: d("1000")},
	}}
	return NewService(repo, inv, roleFake{}), inv
}

func TestForInvoiceReplaysPayments(t *testing.T) {
	repo := &aggregateFake{payments: map[int64]decimal.Decimal{1: d("700")}}
	svc, _ := saleFixture(repo)

	due, err := svc.ForInvoice(context.Background(), 1, 1)
	require.NoError(t, err)
	require.True(t, d("1000").Equal(due.Total))
	require.True(t, d("700").Equal(due.Payments))
	require.True(t, d("300").Equal(due.Due), "due = %s", due.Due)
}

func TestForInvoiceReturnsAndRefunds(t *testing.T) {
	repo := &aggregateFake{
		payments: map[int64]decimal.Decimal{1: d("700")},
		returns:  map[int64]decimal.Decimal{1: d("90")},
		refunds:  map[int64]decimal.Decimal{1: d("50")},
	}
	svc, _ := saleFixture(repo)

	due, err := svc.ForInvoice(context.Background(), 1, 1)
	require.NoError(t, err)
	// 1000 - 700 payments - 90 returned value + 50 refunded in cash.
	require.True(t, d("260").Equal(due.Due), "due = %s", due.Due)
}

func TestForInvoiceIsIdempotent(t *testing.T) {
	repo := &aggregateFake{
		payments:  map[int64]decimal.Decimal{1: d("600")},
		discounts: map[int64]decimal.Decimal{1: d("40")},
	}
	svc, _ := saleFixture(repo)

	first, err := svc.ForInvoice(context.Background(), 1, 1)
	require.NoError(t, err)
	second, err := svc.ForInvoice(context.Background(), 1, 1)
	require.NoError(t, err)
	require.True(t, first.Due.Equal(second.Due), "replay must not drift")
	require.True(t, d("360").Equal(first.Due))
}

func TestForInvoiceEnforcesTenant(t *testing.T) {
	repo := &aggregateFake{}
	svc, _ := saleFixture(repo)

	_, err := svc.ForInvoice(context.Background(), 2, 1)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.ForInvoice(context.Background(), 0, 1)
	require.ErrorIs(t, err, shared.ErrTenant)
}

func TestForPartySumsAcrossInvoices(t *testing.T) {
	repo := &aggregateFake{payments: map[int64]decimal.Decimal{1: d("700"), 2: d("500")}}
	svc, inv := saleFixture(repo)
	inv.invoices[2] = invoices.Invoice{ID: 2, CompanyID: 1, PartyID: 7, Kind: invoices.KindSale,
		Number: "SIN-000002", Status: invoices.StatusActive, TotalAmount: d("500")}

	due, err := svc.ForParty(context.Background(), 1, 7, invoices.KindSale)
	require.NoError(t, err)
	require.Len(t, due.Invoices, 2)
	require.True(t, d("300").Equal(due.TotalDue), "300 open on the first, 0 on the second")
}

func TestForPartyNoInvoices(t *testing.T) {
	svc, _ := saleFixture(&aggregateFake{})

	due, err := svc.ForParty(context.Background(), 1, 99, invoices.KindSale)
	require.NoError(t, err)
	require.Empty(t, due.Invoices)
	require.True(t, due.TotalDue.IsZero())
}

func TestForInvoicePurchaseSide(t *testing.T) {
	repo := &aggregateFake{
		payments:  map[int64]decimal.Decimal{5: d("100")},
		discounts: map[int64]decimal.Decimal{5: d("10")},
	}
	inv := &invoiceFake{invoices: map[int64]invoices.Invoice{
		5: {ID: 5, CompanyID: 1, PartyID: 8, Kind: invoices.KindPurchase, Number: "PIN-000001",
			Status: invoices.StatusActive, TotalAmount: d("275")},
	}}
	svc := NewService(repo, inv, roleFake{})

	due, err := svc.ForInvoice(context.Background(), 1, 5)
	require.NoError(t, err)
	require.True(t, d("165").Equal(due.Due), "due = %s", due.Due)
}

func TestReplayFiltersMoneyByAccount(t *testing.T) {
	repo := &aggregateFake{payments: map[int64]decimal.Decimal{1: d("700")}}
	svc, _ := saleFixture(repo)

	_, err := svc.ForInvoice(context.Background(), 1, 1)
	require.NoError(t, err)

	// Money queries must filter on the Cash and Bank accounts, not the
	// role-bound sub-accounts, so a payment posted under a sibling like
	// Petty Cash still counts.
	require.NotEmpty(t, repo.moneyFilters)
	for _, filter := range repo.moneyFilters {
		require.ElementsMatch(t, []int64{1, 2}, filter)
	}
}
