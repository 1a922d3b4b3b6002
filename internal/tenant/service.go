package tenant

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort abstracts tenant persistence.
type RepositoryPort interface {
	CreateCompany(ctx context.Context, c Company) (Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	ListCompanyIDs(ctx context.Context) ([]int64, error)
	InsertAPIKey(ctx context.Context, key APIKey) (APIKey, error)
	GetAPIKeyByPrefix(ctx context.Context, prefix string) (APIKey, error)
}

// LedgerPort seeds the chart of accounts for a new company.
type LedgerPort interface {
	SeedCompany(ctx context.Context, companyID int64) (ledger.RoleMap, error)
}

// Service manages companies and their API credentials.
type Service struct {
	repo RepositoryPort
	led  LedgerPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, led LedgerPort) *Service {
	return &Service{repo: repo, led: led}
}

const keyPrefixLen = 8

// CreateCompany registers a tenant, seeds its default chart of accounts,
// and issues the first API key. The raw key is returned exactly once.
func (s *Service) CreateCompany(ctx context.Context, name, address, phone string) (Company, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, "", shared.Validationf("company name required")
	}
	company, err := s.repo.CreateCompany(ctx, Company{Name: name, Address: address, Phone: phone})
	if err != nil {
		return Company{}, "", err
	}
	if _, err := s.led.SeedCompany(ctx, company.ID); err != nil {
		return Company{}, "", err
	}
	rawKey, err := s.IssueAPIKey(ctx, company.ID, "default")
	if err != nil {
		return Company{}, "", err
	}
	return company, rawKey, nil
}

// IssueAPIKey mints a new credential for the company.
func (s *Service) IssueAPIKey(ctx context.Context, companyID int64, label string) (string, error) {
	if companyID == 0 {
		return "", shared.ErrTenant
	}
	raw := "fk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	secret := raw[len("fk_")+keyPrefixLen:]
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	_, err = s.repo.InsertAPIKey(ctx, APIKey{
		CompanyID: companyID,
		Prefix:    raw[len("fk_") : len("fk_")+keyPrefixLen],
		KeyHash:   hash,
		Label:     label,
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// ResolveKey maps a presented API key to its company id.
func (s *Service) ResolveKey(ctx context.Context, raw string) (int64, error) {
	if !strings.HasPrefix(raw, "fk_") || len(raw) < len("fk_")+keyPrefixLen+1 {
		return 0, shared.ErrTenant
	}
	prefix := raw[len("fk_") : len("fk_")+keyPrefixLen]
	secret := raw[len("fk_")+keyPrefixLen:]
	key, err := s.repo.GetAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if bcrypt.CompareHashAndPassword(key.KeyHash, []byte(secret)) != nil {
		return 0, shared.ErrTenant
	}
	return key.CompanyID, nil
}

// GetCompany fetches one company.
func (s *Service) GetCompany(ctx context.Context, id int64) (Company, error) {
	return s.repo.GetCompany(ctx, id)
}

// ListCompanies returns every registered company.
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

// ActiveCompanyIDs returns the ids of active companies, used by the
// background jobs to fan work out per tenant.
func (s *Service) ActiveCompanyIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListCompanyIDs(ctx)
}
