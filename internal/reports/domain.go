package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/ledger"
)

// SubAccountTotal carries the raw debit and credit sums for one
// sub-account over a date range, with its owning account attached.
type SubAccountTotal struct {
	SubAccountID   int64
	SubAccountName string
	AccountID      int64
	AccountName    string
	AccountType    ledger.AccountType
	Debit          decimal.Decimal
	Credit         decimal.Decimal
}

// TrialBalanceRow is one netted line of the trial balance.
type TrialBalanceRow struct {
	SubAccountID   int64              `json:"sub_account_id"`
	SubAccountName string             `json:"sub_account_name"`
	AccountName    string             `json:"account_name"`
	AccountType    ledger.AccountType `json:"account_type"`
	Debit          decimal.Decimal    `json:"debit"`
	Credit         decimal.Decimal    `json:"credit"`
}

// TrialBalance lists every active sub-account's netted position. The two
// totals are equal by construction of the journal; the builder verifies
// this rather than trusting it.
type TrialBalance struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
}

// BalanceSheetLine is one sub-account balance within a section.
type BalanceSheetLine struct {
	SubAccountID   int64           `json:"sub_account_id"`
	SubAccountName string          `json:"sub_account_name"`
	AccountName    string          `json:"account_name"`
	Amount         decimal.Decimal `json:"amount"`
}

// BalanceSheet reports assets against liabilities and equity as of a
// date. Current-period earnings roll into equity so both sides agree.
type BalanceSheet struct {
	AsOf             time.Time          `json:"as_of"`
	Assets           []BalanceSheetLine `json:"assets"`
	Liabilities      []BalanceSheetLine `json:"liabilities"`
	Equity           []BalanceSheetLine `json:"equity"`
	CurrentEarnings  decimal.Decimal    `json:"current_earnings"`
	TotalAssets      decimal.Decimal    `json:"total_assets"`
	TotalLiabilities decimal.Decimal    `json:"total_liabilities"`
	TotalEquity      decimal.Decimal    `json:"total_equity"`
}

// IncomeStatementLine is one revenue or expense sub-account.
type IncomeStatementLine struct {
	SubAccountID   int64           `json:"sub_account_id"`
	SubAccountName string          `json:"sub_account_name"`
	AccountName    string          `json:"account_name"`
	Amount         decimal.Decimal `json:"amount"`
}

// IncomeStatement reports revenue less expenses over a date range.
type IncomeStatement struct {
	From         time.Time             `json:"from"`
	To           time.Time             `json:"to"`
	Revenue      []IncomeStatementLine `json:"revenue"`
	Expenses     []IncomeStatementLine `json:"expenses"`
	TotalRevenue decimal.Decimal       `json:"total_revenue"`
	TotalExpense decimal.Decimal       `json:"total_expense"`
	NetProfit    decimal.Decimal       `json:"net_profit"`
}
