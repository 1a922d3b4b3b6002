package masterdata

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort abstracts masterdata persistence.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context, companyID int64) ([]Product, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	ListCustomers(ctx context.Context, companyID int64) ([]Customer, error)
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context, companyID int64) ([]Supplier, error)
}

// SequencePort issues provisional ISBN codes for titles arriving without one.
type SequencePort interface {
	Next(ctx context.Context, companyID int64, kind, prefix string) (string, error)
}

// Service manages the product catalog and party registries.
type Service struct {
	repo RepositoryPort
	seq  SequencePort
}

// NewService builds Service.
func NewService(repo RepositoryPort, seq SequencePort) *Service {
	return &Service{repo: repo, seq: seq}
}

// CreateProduct registers a title. A missing ISBN gets a provisional code
// from the company's TMP-ISBN sequence.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.CompanyID == 0 {
		return Product{}, shared.ErrTenant
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return Product{}, shared.Validationf("product title required")
	}
	if p.SalePrice.IsNegative() || p.PurchasePrice.IsNegative() {
		return Product{}, shared.Validationf("product prices must not be negative")
	}
	if strings.TrimSpace(p.ISBN) == "" {
		code, err := s.seq.Next(ctx, p.CompanyID, "tmp_isbn", "TMP")
		if err != nil {
			return Product{}, err
		}
		p.ISBN = code
	}
	p.IsActive = true
	return s.repo.CreateProduct(ctx, p)
}

// GetProduct fetches a product and enforces tenant ownership.
func (s *Service) GetProduct(ctx context.Context, companyID, id int64) (Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.CompanyID != companyID {
		return Product{}, shared.Forbiddenf("product %d", id)
	}
	return p, nil
}

// ListProducts returns the company catalog.
func (s *Service) ListProducts(ctx context.Context, companyID int64) ([]Product, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.ListProducts(ctx, companyID)
}

// CreateCustomer registers a customer.
func (s *Service) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	if c.CompanyID == 0 {
		return Customer{}, shared.ErrTenant
	}
	if strings.TrimSpace(c.Name) == "" {
		return Customer{}, shared.Validationf("customer name required")
	}
	return s.repo.CreateCustomer(ctx, c)
}

// CreateSupplier registers a supplier.
func (s *Service) CreateSupplier(ctx context.Context, sup Supplier) (Supplier, error) {
	if sup.CompanyID == 0 {
		return Supplier{}, shared.ErrTenant
	}
	if strings.TrimSpace(sup.Name) == "" {
		return Supplier{}, shared.Validationf("supplier name required")
	}
	return s.repo.CreateSupplier(ctx, sup)
}

// ListCustomers returns the company's customers.
func (s *Service) ListCustomers(ctx context.Context, companyID int64) ([]Customer, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.ListCustomers(ctx, companyID)
}

// ListSuppliers returns the company's suppliers.
func (s *Service) ListSuppliers(ctx context.Context, companyID int64) ([]Supplier, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.ListSuppliers(ctx, companyID)
}

var zeroPrice = decimal.Zero

// WeightedAverageCost blends an existing average cost with a new receipt.
// Used by purchase invoices after allocating the bill-level discount back
// to lines.
func WeightedAverageCost(onHandQty float64, currentAvg decimal.Decimal, receiptQty float64, receiptUnitCost decimal.Decimal) decimal.Decimal {
	totalQty := onHandQty + receiptQty
	if totalQty <= 0 {
		return zeroPrice
	}
	current := currentAvg.Mul(decimal.NewFromFloat(onHandQty))
	incoming := receiptUnitCost.Mul(decimal.NewFromFloat(receiptQty))
	return current.Add(incoming).Div(decimal.NewFromFloat(totalQty)).Round(4)
}
