package reports

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

func formatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return amountPrinter.Sprintf("%.2f", f)
}

// WriteTrialBalanceCSV streams the trial balance as CSV.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sub_account", "account", "type", "debit", "credit"}); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		if err := cw.Write([]string{
			row.SubAccountName,
			row.AccountName,
			string(row.AccountType),
			formatAmount(row.Debit),
			formatAmount(row.Credit),
		}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"TOTAL", "", "", formatAmount(tb.TotalDebit), formatAmount(tb.TotalCredit)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteIncomeStatementCSV streams the income statement as CSV.
func WriteIncomeStatementCSV(w io.Writer, is IncomeStatement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "sub_account", "account", "amount"}); err != nil {
		return err
	}
	for _, line := range is.Revenue {
		if err := cw.Write([]string{"revenue", line.SubAccountName, line.AccountName, formatAmount(line.Amount)}); err != nil {
			return err
		}
	}
	for _, line := range is.Expenses {
		if err := cw.Write([]string{"expense", line.SubAccountName, line.AccountName, formatAmount(line.Amount)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"net_profit", "", is.From.Format(time.DateOnly) + ".." + is.To.Format(time.DateOnly), formatAmount(is.NetProfit)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
