package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/shared"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// A balanced day of trade: one 160 sale fully paid plus its 120 cost entry.
func balancedTotals() []SubAccountTotal {
	return []SubAccountTotal{
		{SubAccountID: 11, SubAccountName: "Cash Drawer", AccountName: "Cash", AccountID: 1,
			AccountType: ledger.AccountTypeAsset, Debit: d("160")},
		{SubAccountID: 13, SubAccountName: "Warehouse", AccountName: "Inventory", AccountID: 3,
			AccountType: ledger.AccountTypeAsset, Credit: d("120")},
		{SubAccountID: 18, SubAccountName: "Book Sales", AccountName: "Sales", AccountID: 8,
			AccountType: ledger.AccountTypeRevenue, Credit: d("160")},
		{SubAccountID: 19, SubAccountName: "Cost of Sales", AccountName: "Cost of Sales", AccountID: 9,
			AccountType: ledger.AccountTypeExpense, Debit: d("120")},
	}
}

func TestBuildTrialBalanceNetsAndBalances(t *testing.T) {
	tb, err := BuildTrialBalance(balancedTotals(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, tb.Rows, 4)
	require.True(t, tb.TotalDebit.Equal(tb.TotalCredit), "netted totals stay balanced")
	require.True(t, d("280").Equal(tb.TotalDebit))
}

func TestBuildTrialBalanceSkipsZeroRows(t *testing.T) {
	totals := append(balancedTotals(), SubAccountTotal{
		SubAccountID: 14, SubAccountName: "Receivables", AccountName: "Accounts Receivable",
		AccountID: 4, AccountType: ledger.AccountTypeAsset, Debit: d("60"), Credit: d("60"),
	})
	tb, err := BuildTrialBalance(totals, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, tb.Rows, 4, "a netted-to-zero sub-account produces no row")
}

func TestBuildTrialBalanceDetectsImbalance(t *testing.T) {
	totals := balancedTotals()
	totals[0].Debit = d("161")

	_, err := BuildTrialBalance(totals, time.Time{}, time.Time{})
	require.ErrorIs(t, err, shared.ErrLedgerImbalance)
}

func TestBuildBalanceSheetBalancesViaCurrentEarnings(t *testing.T) {
	asOf := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	bs, err := BuildBalanceSheet(balancedTotals(), asOf)
	require.NoError(t, err)

	// Cash 160 less inventory consumed 120 leaves 40 in assets, matched
	// entirely by retained profit.
	require.True(t, d("40").Equal(bs.TotalAssets), "assets = %s", bs.TotalAssets)
	require.True(t, bs.TotalLiabilities.IsZero())
	require.True(t, d("40").Equal(bs.CurrentEarnings))
	require.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
}

func TestBuildBalanceSheetSections(t *testing.T) {
	totals := append(balancedTotals(),
		SubAccountTotal{SubAccountID: 15, SubAccountName: "Trade Payables", AccountName: "Accounts Payable",
			AccountID: 5, AccountType: ledger.AccountTypeLiability, Credit: d("175")},
		SubAccountTotal{SubAccountID: 13, SubAccountName: "Warehouse", AccountName: "Inventory",
			AccountID: 3, AccountType: ledger.AccountTypeAsset, Debit: d("175")},
	)
	bs, err := BuildBalanceSheet(totals, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bs.Liabilities, 1)
	require.True(t, d("175").Equal(bs.TotalLiabilities))
	require.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
}

func TestBuildBalanceSheetRejectsUnknownAccountType(t *testing.T) {
	_, err := BuildBalanceSheet([]SubAccountTotal{
		{SubAccountID: 1, AccountID: 1, AccountType: "MYSTERY", Debit: d("10")},
	}, time.Now())
	require.Error(t, err)
}

func TestBuildIncomeStatement(t *testing.T) {
	is := BuildIncomeStatement(balancedTotals(), time.Time{}, time.Time{})
	require.Len(t, is.Revenue, 1)
	require.Len(t, is.Expenses, 1)
	require.True(t, d("160").Equal(is.TotalRevenue))
	require.True(t, d("120").Equal(is.TotalExpense))
	require.True(t, d("40").Equal(is.NetProfit))
}

func TestBuildIncomeStatementIgnoresBalanceAccounts(t *testing.T) {
	is := BuildIncomeStatement([]SubAccountTotal{
		{SubAccountID: 11, AccountType: ledger.AccountTypeAsset, Debit: d("500")},
	}, time.Time{}, time.Time{})
	require.Empty(t, is.Revenue)
	require.Empty(t, is.Expenses)
	require.True(t, is.NetProfit.IsZero())
}
