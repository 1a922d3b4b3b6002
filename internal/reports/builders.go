package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// BuildTrialBalance nets each sub-account's debits against credits and
// checks the double-entry invariant. A mismatch means the journal itself
// is corrupt, which is an internal failure, never a user error.
func BuildTrialBalance(totals []SubAccountTotal, from, to time.Time) (TrialBalance, error) {
	tb := TrialBalance{From: from, To: to, Rows: []TrialBalanceRow{}}
	var rawDebit, rawCredit decimal.Decimal
	for _, t := range totals {
		rawDebit = rawDebit.Add(t.Debit)
		rawCredit = rawCredit.Add(t.Credit)
		net := t.Debit.Sub(t.Credit)
		if net.IsZero() {
			continue
		}
		row := TrialBalanceRow{
			SubAccountID:   t.SubAccountID,
			SubAccountName: t.SubAccountName,
			AccountName:    t.AccountName,
			AccountType:    t.AccountType,
		}
		if net.IsPositive() {
			row.Debit = net
		} else {
			row.Credit = net.Neg()
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	if !rawDebit.Equal(rawCredit) {
		return TrialBalance{}, fmt.Errorf("%w: debits %s vs credits %s", shared.ErrLedgerImbalance, rawDebit, rawCredit)
	}
	return tb, nil
}

// BuildBalanceSheet folds the netted positions into the three sections.
// Asset balances read debit-positive; liability and equity balances read
// credit-positive. Revenue and expense collapse into current earnings.
func BuildBalanceSheet(totals []SubAccountTotal, asOf time.Time) (BalanceSheet, error) {
	bs := BalanceSheet{
		AsOf:        asOf,
		Assets:      []BalanceSheetLine{},
		Liabilities: []BalanceSheetLine{},
		Equity:      []BalanceSheetLine{},
	}
	for _, t := range totals {
		debitNet := t.Debit.Sub(t.Credit)
		creditNet := debitNet.Neg()
		line := BalanceSheetLine{
			SubAccountID:   t.SubAccountID,
			SubAccountName: t.SubAccountName,
			AccountName:    t.AccountName,
		}
		switch t.AccountType {
		case ledger.AccountTypeAsset:
			if debitNet.IsZero() {
				continue
			}
			line.Amount = debitNet
			bs.Assets = append(bs.Assets, line)
			bs.TotalAssets = bs.TotalAssets.Add(debitNet)
		case ledger.AccountTypeLiability:
			if creditNet.IsZero() {
				continue
			}
			line.Amount = creditNet
			bs.Liabilities = append(bs.Liabilities, line)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(creditNet)
		case ledger.AccountTypeEquity:
			if creditNet.IsZero() {
				continue
			}
			line.Amount = creditNet
			bs.Equity = append(bs.Equity, line)
			bs.TotalEquity = bs.TotalEquity.Add(creditNet)
		case ledger.AccountTypeRevenue:
			bs.CurrentEarnings = bs.CurrentEarnings.Add(creditNet)
		case ledger.AccountTypeExpense:
			bs.CurrentEarnings = bs.CurrentEarnings.Sub(debitNet)
		default:
			return BalanceSheet{}, fmt.Errorf("unknown account type %q for account %d", t.AccountType, t.AccountID)
		}
	}
	bs.TotalEquity = bs.TotalEquity.Add(bs.CurrentEarnings)
	return bs, nil
}

// BuildIncomeStatement lists revenue credit-net and expenses debit-net
// over the range.
func BuildIncomeStatement(totals []SubAccountTotal, from, to time.Time) IncomeStatement {
	is := IncomeStatement{
		From:     from,
		To:       to,
		Revenue:  []IncomeStatementLine{},
		Expenses: []IncomeStatementLine{},
	}
	for _, t := range totals {
		line := IncomeStatementLine{
			SubAccountID:   t.SubAccountID,
			SubAccountName: t.SubAccountName,
			AccountName:    t.AccountName,
		}
		switch t.AccountType {
		case ledger.AccountTypeRevenue:
			amount := t.Credit.Sub(t.Debit)
			if amount.IsZero() {
				continue
			}
			line.Amount = amount
			is.Revenue = append(is.Revenue, line)
			is.TotalRevenue = is.TotalRevenue.Add(amount)
		case ledger.AccountTypeExpense:
			amount := t.Debit.Sub(t.Credit)
			if amount.IsZero() {
				continue
			}
			line.Amount = amount
			is.Expenses = append(is.Expenses, line)
			is.TotalExpense = is.TotalExpense.Add(amount)
		}
	}
	is.NetProfit = is.TotalRevenue.Sub(is.TotalExpense)
	return is
}
