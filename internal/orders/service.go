package orders

import (
	"context"
	"time"

	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort abstracts order persistence.
type RepositoryPort interface {
	Create(ctx context.Context, order Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context, companyID int64, kind OrderKind) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
}

// SequencePort issues order document numbers.
type SequencePort interface {
	Next(ctx context.Context, companyID int64, kind, prefix string) (string, error)
}

// Service manages sales and purchase orders. Fulfillment updates happen
// inside the invoice workflow's transaction, not here.
type Service struct {
	repo RepositoryPort
	seq  SequencePort
}

// NewService builds Service.
func NewService(repo RepositoryPort, seq SequencePort) *Service {
	return &Service{repo: repo, seq: seq}
}

// CreateInput describes a new order.
type CreateInput struct {
	CompanyID int64
	Kind      OrderKind
	PartyID   int64
	Date      time.Time
	Lines     []OrderLine
}

// Create validates and persists an order in pending state.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	if in.CompanyID == 0 {
		return Order{}, shared.ErrTenant
	}
	if in.Kind != OrderKindSale && in.Kind != OrderKindPurchase {
		return Order{}, shared.Validationf("unknown order kind %q", in.Kind)
	}
	if in.PartyID == 0 {
		return Order{}, shared.Validationf("order party required")
	}
	if len(in.Lines) == 0 {
		return Order{}, shared.Validationf("order requires at least one line")
	}
	for i, line := range in.Lines {
		if line.ProductID == 0 {
			return Order{}, shared.Validationf("line %d missing product", i)
		}
		if line.OrderedQty <= 0 {
			return Order{}, shared.Validationf("line %d ordered quantity must be positive", i)
		}
	}
	prefix := "SO"
	if in.Kind == OrderKindPurchase {
		prefix = "PO"
	}
	number, err := s.seq.Next(ctx, in.CompanyID, "order_"+string(in.Kind), prefix)
	if err != nil {
		return Order{}, err
	}
	order := Order{
		CompanyID: in.CompanyID,
		Kind:      in.Kind,
		PartyID:   in.PartyID,
		Number:    number,
		Status:    OrderStatusPending,
		Date:      in.Date,
		Lines:     in.Lines,
	}
	return s.repo.Create(ctx, order)
}

// Get fetches an order with tenant enforcement.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.CompanyID != companyID {
		return Order{}, shared.Forbiddenf("order %d", id)
	}
	return order, nil
}

// List returns the company's orders of a kind.
func (s *Service) List(ctx context.Context, companyID int64, kind OrderKind) ([]Order, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.List(ctx, companyID, kind)
}

// Cancel marks a pending or partial order cancelled.
func (s *Service) Cancel(ctx context.Context, companyID, id int64) (Order, error) {
	order, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Order{}, err
	}
	if order.Status == OrderStatusFulfilled || order.Status == OrderStatusReceived {
		return Order{}, shared.Validationf("order %s already completed", order.Number)
	}
	if err := s.repo.UpdateStatus(ctx, id, OrderStatusCancelled); err != nil {
		return Order{}, err
	}
	order.Status = OrderStatusCancelled
	return order, nil
}
