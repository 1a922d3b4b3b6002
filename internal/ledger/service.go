package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListAccounts(ctx context.Context, companyID int64) ([]Account, error)
	ListSubAccounts(ctx context.Context, companyID int64) ([]SubAccount, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	GetRoleMap(ctx context.Context, companyID int64) (RoleMap, error)
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns the chart of accounts and direct journal posting.
type Service struct {
	repo   RepositoryPort
	engine *Engine
	audit  AuditPort
	now    func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, engine *Engine, audit AuditPort) *Service {
	return &Service{repo: repo, engine: engine, audit: audit, now: time.Now}
}

// TransactionFilter narrows journal listings.
type TransactionFilter struct {
	CompanyID int64
	Type      string
	RelatedID int64
	From      time.Time
	To        time.Time
	Limit     int
}

// CreateAccount adds a top-level ledger bucket for the company.
func (s *Service) CreateAccount(ctx context.Context, companyID int64, name string, accType AccountType) (Account, error) {
	if companyID == 0 {
		return Account{}, shared.ErrTenant
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, shared.Validationf("account name required")
	}
	if !accType.Valid() {
		return Account{}, shared.Validationf("unknown account type %q", accType)
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertAccount(ctx, Account{CompanyID: companyID, Name: name, Type: accType})
		if err != nil {
			return err
		}
		account = Account{ID: id, CompanyID: companyID, Name: name, Type: accType}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, companyID, "ledger.account.create", "account", account.ID, map[string]any{"name": name, "type": string(accType)})
	return account, nil
}

// CreateSubAccount adds a posting target under an existing account. The
// parent account must belong to the same company.
func (s *Service) CreateSubAccount(ctx context.Context, companyID, accountID int64, name string) (SubAccount, error) {
	if companyID == 0 {
		return SubAccount{}, shared.ErrTenant
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return SubAccount{}, shared.Validationf("sub-account name required")
	}
	var sub SubAccount
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("parent account %d: %w", accountID, err)
		}
		if account.CompanyID != companyID {
			return shared.Forbiddenf("account %d belongs to company %d", accountID, account.CompanyID)
		}
		id, err := tx.InsertSubAccount(ctx, SubAccount{
			AccountID: accountID,
			CompanyID: companyID,
			Name:      name,
			Status:    SubAccountStatusActive,
		})
		if err != nil {
			return err
		}
		sub = SubAccount{ID: id, AccountID: accountID, CompanyID: companyID, Name: name, Status: SubAccountStatusActive}
		return nil
	})
	if err != nil {
		return SubAccount{}, err
	}
	s.record(ctx, companyID, "ledger.subaccount.create", "sub_account", sub.ID, map[string]any{"name": name, "account_id": accountID})
	return sub, nil
}

// defaultChart lists the accounts seeded for every new company, each with
// one default sub-account bound to a role.
var defaultChart = []struct {
	Name string
	Type AccountType
	Role AccountRole
}{
	{"Cash", AccountTypeAsset, RoleCash},
	{"Bank", AccountTypeAsset, RoleBank},
	{"Inventory", AccountTypeAsset, RoleInventory},
	{"Accounts Receivable", AccountTypeAsset, RoleAccountsReceivable},
	{"Accounts Payable", AccountTypeLiability, RoleAccountsPayable},
	{"Capital", AccountTypeEquity, RoleCapital},
	{"Purchases", AccountTypeExpense, RolePurchases},
	{"Sales", AccountTypeRevenue, RoleSales},
	{"Cost of Sales", AccountTypeExpense, RoleCostOfSales},
	{"Discount Given", AccountTypeExpense, RoleDiscountGiven},
	{"Discount Earned", AccountTypeRevenue, RoleDiscountEarned},
}

// SeedCompany creates the default chart of accounts for a new company and
// binds every account role to its default sub-account. Invoice workflows
// resolve roles through this map instead of fixed numeric ids.
func (s *Service) SeedCompany(ctx context.Context, companyID int64) (RoleMap, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	roles := RoleMap{}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, seed := range defaultChart {
			accountID, err := tx.InsertAccount(ctx, Account{CompanyID: companyID, Name: seed.Name, Type: seed.Type})
			if err != nil {
				return fmt.Errorf("seed account %s: %w", seed.Name, err)
			}
			subID, err := tx.InsertSubAccount(ctx, SubAccount{
				AccountID: accountID,
				CompanyID: companyID,
				Name:      seed.Name + " - General",
				Status:    SubAccountStatusActive,
			})
			if err != nil {
				return fmt.Errorf("seed sub-account %s: %w", seed.Name, err)
			}
			if err := tx.BindRole(ctx, companyID, seed.Role, subID); err != nil {
				return fmt.Errorf("bind role %s: %w", seed.Role, err)
			}
			roles[seed.Role] = subID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, companyID, "ledger.seed", "company", companyID, map[string]any{"accounts": len(defaultChart)})
	return roles, nil
}

// PostManual appends a standalone journal entry outside any invoice
// workflow, e.g. a capital injection or an expense voucher.
func (s *Service) PostManual(ctx context.Context, in PostingInput) (Transaction, error) {
	if in.Type == "" {
		in.Type = EntryTypeManual
	}
	var txn Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		posted, err := s.engine.Post(ctx, tx, in)
		if err != nil {
			return err
		}
		txn = posted
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	s.record(ctx, in.CompanyID, "ledger.post", "transaction", txn.ID, map[string]any{
		"amount":      txn.Amount.String(),
		"particulars": txn.Particulars,
	})
	return txn, nil
}

// RoleMap resolves the company's role bindings.
func (s *Service) RoleMap(ctx context.Context, companyID int64) (RoleMap, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.GetRoleMap(ctx, companyID)
}

// ListAccounts returns the company's chart of accounts.
func (s *Service) ListAccounts(ctx context.Context, companyID int64) ([]Account, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.ListAccounts(ctx, companyID)
}

// ListSubAccounts returns the company's posting targets.
func (s *Service) ListSubAccounts(ctx context.Context, companyID int64) ([]SubAccount, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.ListSubAccounts(ctx, companyID)
}

// ListTransactions returns journal rows matching the filter.
func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	if filter.CompanyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) record(ctx context.Context, companyID int64, action, entity string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: companyID,
		Action:    action,
		Entity:    entity,
		EntityID:  fmt.Sprintf("%d", entityID),
		Meta:      meta,
		At:        s.now(),
	})
}
