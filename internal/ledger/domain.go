package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether the account type is a known category.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// SubAccountStatus enumerates sub-account states.
type SubAccountStatus string

const (
	SubAccountStatusActive   SubAccountStatus = "ACTIVE"
	SubAccountStatusInactive SubAccountStatus = "INACTIVE"
)

// Account models a top-level ledger bucket for one company.
type Account struct {
	ID        int64
	CompanyID int64
	Name      string
	Type      AccountType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubAccount is the posting target. Every financial movement posts at
// this granularity; the parent account is derived for aggregate reports.
type SubAccount struct {
	ID        int64
	AccountID int64
	CompanyID int64
	Name      string
	Status    SubAccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountRole names a ledger slot that invoice workflows post against.
// Roles are resolved to concrete sub-accounts per company at setup time,
// never hardcoded at call sites.
type AccountRole string

const (
	RoleCash               AccountRole = "CASH"
	RoleBank               AccountRole = "BANK"
	RoleInventory          AccountRole = "INVENTORY"
	RoleAccountsReceivable AccountRole = "ACCOUNTS_RECEIVABLE"
	RoleAccountsPayable    AccountRole = "ACCOUNTS_PAYABLE"
	RoleCapital            AccountRole = "CAPITAL"
	RoleSales              AccountRole = "SALES"
	RolePurchases          AccountRole = "PURCHASES"
	RoleCostOfSales        AccountRole = "COST_OF_SALES"
	RoleDiscountGiven      AccountRole = "DISCOUNT_GIVEN"
	RoleDiscountEarned     AccountRole = "DISCOUNT_EARNED"
)

// RoleMap resolves account roles to the company's sub-account ids.
type RoleMap map[AccountRole]int64

// Resolve returns the sub-account id bound to the role.
func (m RoleMap) Resolve(role AccountRole) (int64, error) {
	id, ok := m[role]
	if !ok || id == 0 {
		return 0, ErrRoleUnmapped
	}
	return id, nil
}

// EntryType values link a journal row back to its originating document.
const (
	EntryTypeSale           = "sale"
	EntryTypePurchase       = "purchase"
	EntryTypeSaleReturn     = "sale_return"
	EntryTypePurchaseReturn = "purchase_return"
	EntryTypeChallan        = "challan"
	EntryTypeManual         = "manual"
)

// Transaction is one immutable double-entry journal row. Rows are only
// ever appended; reversal happens via new rows of a reversal type.
type Transaction struct {
	ID              int64
	Date            time.Time
	DebitID         int64
	CreditID        int64
	SubDebitID      int64
	SubCreditID     int64
	Amount          decimal.Decimal
	Particulars     string
	Type            string
	RelatedID       int64
	PaymentMethod   string
	ReferenceNumber string
	CompanyID       int64
	CreatedAt       time.Time
}

// PostingInput groups fields required to append one journal row.
type PostingInput struct {
	Date            time.Time
	SubDebitID      int64
	SubCreditID     int64
	Amount          decimal.Decimal
	Particulars     string
	Type            string
	RelatedID       int64
	PaymentMethod   string
	ReferenceNumber string
	CompanyID       int64
}

var (
	// ErrRoleUnmapped indicates no sub-account is bound to a role.
	ErrRoleUnmapped = errors.New("ledger: account role not mapped for company")
	// ErrSameAccount indicates debit and credit resolve to one account.
	ErrSameAccount = errors.New("ledger: debit and credit account must differ")
)

// NormalizeDate truncates a timestamp to midnight UTC. Journal rows and
// invoices never carry a time of day.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
