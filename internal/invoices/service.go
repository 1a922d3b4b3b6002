package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/masterdata"
	"github.com/folio-erp/folio-erp/internal/orders"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, companyID int64, kind InvoiceKind) ([]Invoice, error)
	ListReturns(ctx context.Context, parentInvoiceID int64) ([]Invoice, error)
}

// TxRepository exposes every write the invoice workflows perform. All of
// it runs inside one database transaction per operation: invoice, stock,
// journal, and order fulfillment commit or roll back together.
type TxRepository interface {
	ledger.JournalTx
	RoleMap(ctx context.Context, companyID int64) (ledger.RoleMap, error)
	InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error)
	UpdateInvoiceProfit(ctx context.Context, id int64, profit decimal.Decimal) error
	UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error
	IncrementStock(ctx context.Context, companyID, productID int64, qty float64) error
	DecrementStock(ctx context.Context, companyID, productID int64, qty float64) error
	StockQty(ctx context.Context, companyID, productID int64) (float64, error)
	GetProductForUpdate(ctx context.Context, id int64) (masterdata.Product, error)
	UpdateProductPurchasePrice(ctx context.Context, id int64, price decimal.Decimal) error
	GetOrderForUpdate(ctx context.Context, id int64) (orders.Order, error)
	SaveOrderFulfillment(ctx context.Context, order orders.Order) error
}

// MasterdataPort resolves parties and products for tenant validation.
type MasterdataPort interface {
	GetProduct(ctx context.Context, id int64) (masterdata.Product, error)
	GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error)
	GetSupplier(ctx context.Context, id int64) (masterdata.Supplier, error)
}

// SequencePort issues invoice document numbers.
type SequencePort interface {
	Next(ctx context.Context, companyID int64, kind, prefix string) (string, error)
}

// AuditPort records invoice events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs the per-kind invoice workflows.
type Service struct {
	repo   RepositoryPort
	master MasterdataPort
	engine *ledger.Engine
	seq    SequencePort
	audit  AuditPort
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, master MasterdataPort, engine *ledger.Engine, seq SequencePort, audit AuditPort) *Service {
	return &Service{repo: repo, master: master, engine: engine, seq: seq, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

var docPrefixes = map[InvoiceKind]string{
	KindSale:           "SIN",
	KindPurchase:       "PIN",
	KindSaleReturn:     "SRN",
	KindPurchaseReturn: "PRN",
	KindChallan:        "CHN",
}

// CreateSale posts a sale invoice: stock out, up to three journal rows
// (payment, due, cost of sales), optional order fulfillment.
func (s *Service) CreateSale(ctx context.Context, in CreateInput) (Invoice, error) {
	lines, totals, err := s.prepareLines(ctx, in, true)
	if err != nil {
		return Invoice{}, err
	}
	if _, err := s.customerOf(ctx, in.CompanyID, in.PartyID); err != nil {
		return Invoice{}, err
	}
	paid, due, err := splitPaid(in.PaidAmount, totals.FinalTotal)
	if err != nil {
		return Invoice{}, err
	}
	totalCost := sumCost(lines)
	inv := Invoice{
		CompanyID:       in.CompanyID,
		Kind:            KindSale,
		PartyID:         in.PartyID,
		OrderID:         in.OrderID,
		Date:            s.docDate(in.Date),
		TotalAmount:     totals.FinalTotal,
		Discount:        in.BillDiscount,
		RoundOff:        in.RoundOff,
		PaidAmount:      paid,
		DueAmount:       due,
		Profit:          totals.FinalTotal.Sub(totalCost),
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: uuid.NewString(),
		Status:          StatusActive,
		Lines:           lines,
	}
	number, err := s.seq.Next(ctx, in.CompanyID, "invoice_sale", docPrefixes[KindSale])
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = number

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv = created
		for _, line := range inv.Lines {
			if err := tx.DecrementStock(ctx, inv.CompanyID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		roles, err := tx.RoleMap(ctx, inv.CompanyID)
		if err != nil {
			return err
		}
		if err := s.postSaleEntries(ctx, tx, roles, inv, paid, due, totalCost); err != nil {
			return err
		}
		if inv.OrderID != 0 {
			if err := s.fulfillOrder(ctx, tx, inv, orders.OrderKindSale); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, inv, "invoice.sale.create")
	return inv, nil
}

func (s *Service) postSaleEntries(ctx context.Context, tx TxRepository, roles ledger.RoleMap, inv Invoice, paid, due, totalCost decimal.Decimal) error {
	salesSub, err := roles.Resolve(ledger.RoleSales)
	if err != nil {
		return err
	}
	if paid.IsPositive() {
		cashSub, err := roles.Resolve(cashRole(inv.PaymentMethod))
		if err != nil {
			return err
		}
		if err := s.post(ctx, tx, inv, cashSub, salesSub, paid,
			fmt.Sprintf("Payment received against sale invoice %s", inv.Number)); err != nil {
			return err
		}
	}
	if due.IsPositive() {
		arSub, err := roles.Resolve(ledger.RoleAccountsReceivable)
		if err != nil {
			return err
		}
		if err := s.post(ctx, tx, inv, arSub, salesSub, due,
			fmt.Sprintf("Credit due recorded against sale invoice %s", inv.Number)); err != nil {
			return err
		}
	}
	// Cost of sales posts on every sale, fully paid or not, so inventory
	// valuation stays correct.
	if totalCost.IsPositive() {
		cosSub, err := roles.Resolve(ledger.RoleCostOfSales)
		if err != nil {
			return err
		}
		invSub, err := roles.Resolve(ledger.RoleInventory)
		if err != nil {
			return err
		}
		if err := s.post(ctx, tx, inv, cosSub, invSub, totalCost,
			fmt.Sprintf("Cost of goods sold for sale invoice %s", inv.Number)); err != nil {
			return err
		}
	}
	return nil
}

// CreatePurchase posts a purchase invoice: stock in, inventory debited
// against cash and payable, weighted-average cost refresh per product.
func (s *Service) CreatePurchase(ctx context.Context, in CreateInput) (Invoice, error) {
	lines, totals, err := s.prepareLines(ctx, in, false)
	if err != nil {
		return Invoice{}, err
	}
	if err := s.supplierOf(ctx, in.CompanyID, in.PartyID); err != nil {
		return Invoice{}, err
	}
	paid, due, err := splitPaid(in.PaidAmount, totals.FinalTotal)
	if err != nil {
		return Invoice{}, err
	}
	inv := Invoice{
		CompanyID:       in.CompanyID,
		Kind:            KindPurchase,
		PartyID:         in.PartyID,
		OrderID:         in.OrderID,
		Date:            s.docDate(in.Date),
		TotalAmount:     totals.FinalTotal,
		Discount:        in.BillDiscount,
		RoundOff:        in.RoundOff,
		PaidAmount:      paid,
		DueAmount:       due,
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: uuid.NewString(),
		Status:          StatusActive,
		Lines:           lines,
	}
	number, err := s.seq.Next(ctx, in.CompanyID, "invoice_purchase", docPrefixes[KindPurchase])
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = number

	// Bill discount allocates back to lines by post-line-discount share
	// so each product's effective unit cost reflects it.
	lineNets := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		lineNets[i] = line.LineNet
	}
	discountShares := AllocateBillDiscount(lineNets, in.BillDiscount)

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv = created
		for i, line := range inv.Lines {
			product, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			onHand, err := tx.StockQty(ctx, inv.CompanyID, line.ProductID)
			if err != nil {
				return err
			}
			effectiveCost := line.LineNet.Sub(discountShares[i]).Div(decimal.NewFromFloat(line.Quantity))
			newAvg := masterdata.WeightedAverageCost(onHand, product.PurchasePrice, line.Quantity, effectiveCost)
			if err := tx.UpdateProductPurchasePrice(ctx, line.ProductID, newAvg); err != nil {
				return err
			}
			if err := tx.IncrementStock(ctx, inv.CompanyID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		roles, err := tx.RoleMap(ctx, inv.CompanyID)
		if err != nil {
			return err
		}
		invSub, err := roles.Resolve(ledger.RoleInventory)
		if err != nil {
			return err
		}
		if paid.IsPositive() {
			cashSub, err := roles.Resolve(cashRole(inv.PaymentMethod))
			if err != nil {
				return err
			}
			if err := s.post(ctx, tx, inv, invSub, cashSub, paid,
				fmt.Sprintf("Payment made against purchase invoice %s", inv.Number)); err != nil {
				return err
			}
		}
		if due.IsPositive() {
			apSub, err := roles.Resolve(ledger.RoleAccountsPayable)
			if err != nil {
				return err
			}
			if err := s.post(ctx, tx, inv, invSub, apSub, due,
				fmt.Sprintf("Payable recorded against purchase invoice %s", inv.Number)); err != nil {
				return err
			}
		}
		if inv.OrderID != 0 {
			if err := s.fulfillOrder(ctx, tx, inv, orders.OrderKindPurchase); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, inv, "invoice.purchase.create")
	return inv, nil
}

// CreateSaleReturn reverses part of a sale: stock back in, refund and
// receivable reductions posted, proportional cost of sales reversed, and
// the parent invoice's stored profit decremented by the return's share.
func (s *Service) CreateSaleReturn(ctx context.Context, in ReturnInput) (Invoice, error) {
	parent, err := s.parentOf(ctx, in.CompanyID, in.ParentInvoiceID, KindSale)
	if err != nil {
		return Invoice{}, err
	}
	prior, err := s.repo.ListReturns(ctx, parent.ID)
	if err != nil {
		return Invoice{}, err
	}
	lines, totals, err := returnLines(parent, prior, in.Lines)
	if err != nil {
		return Invoice{}, err
	}
	returnCost := sumCost(lines)
	profitShare := totals.FinalTotal.Sub(returnCost)
	refund, remainder, err := splitPaid(in.RefundAmount, totals.FinalTotal)
	if err != nil {
		return Invoice{}, err
	}
	inv := Invoice{
		CompanyID:       in.CompanyID,
		Kind:            KindSaleReturn,
		PartyID:         parent.PartyID,
		ParentInvoiceID: parent.ID,
		Date:            s.docDate(in.Date),
		TotalAmount:     totals.FinalTotal,
		PaidAmount:      refund,
		DueAmount:       remainder,
		Profit:          profitShare.Neg(),
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: uuid.NewString(),
		Status:          StatusActive,
		Lines:           lines,
	}
	number, err := s.seq.Next(ctx, in.CompanyID, "invoice_sale_return", docPrefixes[KindSaleReturn])
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = number

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv = created
		for _, line := range inv.Lines {
			if err := tx.IncrementStock(ctx, inv.CompanyID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		roles, err := tx.RoleMap(ctx, inv.CompanyID)
		if err != nil {
			return err
		}
		salesSub, err := roles.Resolve(ledger.RoleSales)
		if err != nil {
			return err
		}
		// Return postings reference the PARENT invoice so the balance
		// reconstructor can pick them up by (type, related_id).
		if refund.IsPositive() {
			cashSub, err := roles.Resolve(cashRole(inv.PaymentMethod))
			if err != nil {
				return err
			}
			if err := s.postRelated(ctx, tx, inv, parent.ID, salesSub, cashSub, refund,
				fmt.Sprintf("Refund paid against sale return %s", inv.Number)); err != nil {
				return err
			}
		}
		if remainder.IsPositive() {
			arSub, err := roles.Resolve(ledger.RoleAccountsReceivable)
			if err != nil {
				return err
			}
			if err := s.postRelated(ctx, tx, inv, parent.ID, salesSub, arSub, remainder,
				fmt.Sprintf("Receivable reduced by sale return %s", inv.Number)); err != nil {
				return err
			}
		}
		if returnCost.IsPositive() {
			invSub, err := roles.Resolve(ledger.RoleInventory)
			if err != nil {
				return err
			}
			cosSub, err := roles.Resolve(ledger.RoleCostOfSales)
			if err != nil {
				return err
			}
			if err := s.postRelated(ctx, tx, inv, parent.ID, invSub, cosSub, returnCost,
				fmt.Sprintf("Cost of goods reversed by sale return %s", inv.Number)); err != nil {
				return err
			}
		}
		locked, err := tx.GetInvoiceForUpdate(ctx, parent.ID)
		if err != nil {
			return err
		}
		return tx.UpdateInvoiceProfit(ctx, parent.ID, locked.Profit.Sub(profitShare))
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, inv, "invoice.sale_return.create")
	return inv, nil
}

// CreatePurchaseReturn reverses part of a purchase: stock back out with
// the floor-at-zero guard, refund and payable reductions posted against
// inventory.
func (s *Service) CreatePurchaseReturn(ctx context.Context, in ReturnInput) (Invoice, error) {
	parent, err := s.parentOf(ctx, in.CompanyID, in.ParentInvoiceID, KindPurchase)
	if err != nil {
		return Invoice{}, err
	}
	prior, err := s.repo.ListReturns(ctx, parent.ID)
	if err != nil {
		return Invoice{}, err
	}
	lines, totals, err := returnLines(parent, prior, in.Lines)
	if err != nil {
		return Invoice{}, err
	}
	refund, remainder, err := splitPaid(in.RefundAmount, totals.FinalTotal)
	if err != nil {
		return Invoice{}, err
	}
	inv := Invoice{
		CompanyID:       in.CompanyID,
		Kind:            KindPurchaseReturn,
		PartyID:         parent.PartyID,
		ParentInvoiceID: parent.ID,
		Date:            s.docDate(in.Date),
		TotalAmount:     totals.FinalTotal,
		PaidAmount:      refund,
		DueAmount:       remainder,
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: uuid.NewString(),
		Status:          StatusActive,
		Lines:           lines,
	}
	number, err := s.seq.Next(ctx, in.CompanyID, "invoice_purchase_return", docPrefixes[KindPurchaseReturn])
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = number

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv = created
		for _, line := range inv.Lines {
			if err := tx.DecrementStock(ctx, inv.CompanyID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		roles, err := tx.RoleMap(ctx, inv.CompanyID)
		if err != nil {
			return err
		}
		invSub, err := roles.Resolve(ledger.RoleInventory)
		if err != nil {
			return err
		}
		if refund.IsPositive() {
			cashSub, err := roles.Resolve(cashRole(inv.PaymentMethod))
			if err != nil {
				return err
			}
			if err := s.postRelated(ctx, tx, inv, parent.ID, cashSub, invSub, refund,
				fmt.Sprintf("Refund received against purchase return %s", inv.Number)); err != nil {
				return err
			}
		}
		if remainder.IsPositive() {
			apSub, err := roles.Resolve(ledger.RoleAccountsPayable)
			if err != nil {
				return err
			}
			if err := s.postRelated(ctx, tx, inv, parent.ID, apSub, invSub, remainder,
				fmt.Sprintf("Payable reduced by purchase return %s", inv.Number)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, inv, "invoice.purchase_return.create")
	return inv, nil
}

// CreateChallan posts a delivery challan: stock moves out, nothing posts
// to the journal until the challan converts into a sale.
func (s *Service) CreateChallan(ctx context.Context, in CreateInput) (Invoice, error) {
	lines, totals, err := s.prepareLines(ctx, in, true)
	if err != nil {
		return Invoice{}, err
	}
	if _, err := s.customerOf(ctx, in.CompanyID, in.PartyID); err != nil {
		return Invoice{}, err
	}
	inv := Invoice{
		CompanyID:       in.CompanyID,
		Kind:            KindChallan,
		PartyID:         in.PartyID,
		Date:            s.docDate(in.Date),
		TotalAmount:     totals.FinalTotal,
		Discount:        in.BillDiscount,
		RoundOff:        in.RoundOff,
		DueAmount:       totals.FinalTotal,
		ReferenceNumber: uuid.NewString(),
		Status:          StatusActive,
		Lines:           lines,
	}
	number, err := s.seq.Next(ctx, in.CompanyID, "invoice_challan", docPrefixes[KindChallan])
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = number

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv = created
		for _, line := range inv.Lines {
			if err := tx.DecrementStock(ctx, inv.CompanyID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, inv, "invoice.challan.create")
	return inv, nil
}

// ConvertChallan turns a delivered challan into a sale invoice. Stock
// already moved when the challan posted, so only the financial entries
// are emitted here.
func (s *Service) ConvertChallan(ctx context.Context, companyID, challanID int64, paidAmount decimal.Decimal, paymentMethod string) (Invoice, error) {
	challan, err := s.parentOf(ctx, companyID, challanID, KindChallan)
	if err != nil {
		return Invoice{}, err
	}
	paid, due, err := splitPaid(paidAmount, challan.TotalAmount)
	if err != nil {
		return Invoice{}, err
	}
	totalCost := sumCost(challan.Lines)
	inv := Invoice{
		CompanyID:       companyID,
		Kind:            KindSale,
		PartyID:         challan.PartyID,
		ParentInvoiceID: challan.ID,
		Date:            s.docDate(time.Time{}),
		TotalAmount:     challan.TotalAmount,
		Discount:        challan.Discount,
		RoundOff:        challan.RoundOff,
		PaidAmount:      paid,
		DueAmount:       due,
		Profit:          challan.TotalAmount.Sub(totalCost),
		PaymentMethod:   paymentMethod,
		ReferenceNumber: uuid.NewString(),
		Status:          StatusActive,
		Lines:           copyLines(challan.Lines),
	}
	number, err := s.seq.Next(ctx, companyID, "invoice_sale", docPrefixes[KindSale])
	if err != nil {
		return Invoice{}, err
	}
	inv.Number = number

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv = created
		roles, err := tx.RoleMap(ctx, inv.CompanyID)
		if err != nil {
			return err
		}
		if err := s.postSaleEntries(ctx, tx, roles, inv, paid, due, totalCost); err != nil {
			return err
		}
		return tx.UpdateInvoiceStatus(ctx, challan.ID, StatusConverted)
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, inv, "invoice.challan.convert")
	return inv, nil
}

// RecordPayment posts one payment row against a sale or purchase invoice.
// Due state is never stored; readers replay the journal.
func (s *Service) RecordPayment(ctx context.Context, companyID, invoiceID int64, amount decimal.Decimal, method, reference string) (ledger.Transaction, error) {
	inv, err := s.activeInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ledger.Transaction{}, shared.Validationf("payment amount must be positive")
	}
	var txn ledger.Transaction
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		roles, err := tx.RoleMap(ctx, companyID)
		if err != nil {
			return err
		}
		cashSub, err := roles.Resolve(cashRole(method))
		if err != nil {
			return err
		}
		var debitSub, creditSub int64
		var particulars string
		switch inv.Kind {
		case KindSale:
			arSub, err := roles.Resolve(ledger.RoleAccountsReceivable)
			if err != nil {
				return err
			}
			debitSub, creditSub = cashSub, arSub
			particulars = fmt.Sprintf("Payment received against sale invoice %s", inv.Number)
		case KindPurchase:
			apSub, err := roles.Resolve(ledger.RoleAccountsPayable)
			if err != nil {
				return err
			}
			debitSub, creditSub = apSub, cashSub
			particulars = fmt.Sprintf("Payment made against purchase invoice %s", inv.Number)
		default:
			return shared.Validationf("payments only apply to sale or purchase invoices")
		}
		posted, err := s.engine.Post(ctx, tx, ledger.PostingInput{
			Date:            s.now(),
			SubDebitID:      debitSub,
			SubCreditID:     creditSub,
			Amount:          amount,
			Particulars:     particulars,
			Type:            string(inv.Kind),
			RelatedID:       inv.ID,
			PaymentMethod:   method,
			ReferenceNumber: reference,
			CompanyID:       companyID,
		})
		if err != nil {
			return err
		}
		txn = posted
		return nil
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.record(ctx, inv, "invoice.payment")
	return txn, nil
}

// RecordDiscount posts a discount-given (sale) or discount-earned
// (purchase) row against an invoice. The two paths are intentionally not
// symmetric; they follow distinct accounting treatment.
func (s *Service) RecordDiscount(ctx context.Context, companyID, invoiceID int64, amount decimal.Decimal) (ledger.Transaction, error) {
	inv, err := s.activeInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ledger.Transaction{}, shared.Validationf("discount amount must be positive")
	}
	var txn ledger.Transaction
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		roles, err := tx.RoleMap(ctx, companyID)
		if err != nil {
			return err
		}
		var debitSub, creditSub int64
		var particulars string
		switch inv.Kind {
		case KindSale:
			dg, err := roles.Resolve(ledger.RoleDiscountGiven)
			if err != nil {
				return err
			}
			ar, err := roles.Resolve(ledger.RoleAccountsReceivable)
			if err != nil {
				return err
			}
			debitSub, creditSub = dg, ar
			particulars = fmt.Sprintf("Discount allowed against sale invoice %s", inv.Number)
		case KindPurchase:
			ap, err := roles.Resolve(ledger.RoleAccountsPayable)
			if err != nil {
				return err
			}
			de, err := roles.Resolve(ledger.RoleDiscountEarned)
			if err != nil {
				return err
			}
			debitSub, creditSub = ap, de
			particulars = fmt.Sprintf("Discount earned against purchase invoice %s", inv.Number)
		default:
			return shared.Validationf("discounts only apply to sale or purchase invoices")
		}
		posted, err := s.engine.Post(ctx, tx, ledger.PostingInput{
			Date:        s.now(),
			SubDebitID:  debitSub,
			SubCreditID: creditSub,
			Amount:      amount,
			Particulars: particulars,
			Type:        string(inv.Kind),
			RelatedID:   inv.ID,
			CompanyID:   companyID,
		})
		if err != nil {
			return err
		}
		txn = posted
		return nil
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.record(ctx, inv, "invoice.discount")
	return txn, nil
}

// Get fetches an invoice with tenant enforcement.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.CompanyID != companyID {
		return Invoice{}, shared.Forbiddenf("invoice %d", id)
	}
	return inv, nil
}

// List returns the company's invoices of a kind.
func (s *Service) List(ctx context.Context, companyID int64, kind InvoiceKind) ([]Invoice, error) {
	if companyID == 0 {
		return nil, shared.ErrTenant
	}
	return s.repo.List(ctx, companyID, kind)
}

// Delete flags the invoice deleted. Journal rows are never removed.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	inv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateInvoiceStatus(ctx, inv.ID, StatusDeleted)
	})
	if err != nil {
		return err
	}
	s.record(ctx, inv, "invoice.delete")
	return nil
}

// prepareLines validates tenant ownership of every product and computes
// totals plus cost snapshots. needCost is true for outbound kinds.
func (s *Service) prepareLines(ctx context.Context, in CreateInput, needCost bool) ([]Line, Totals, error) {
	if in.CompanyID == 0 {
		return nil, Totals{}, shared.ErrTenant
	}
	totals, err := ComputeTotals(in.Lines, in.BillDiscount, in.RoundOff)
	if err != nil {
		return nil, Totals{}, err
	}
	lines := make([]Line, 0, len(in.Lines))
	for _, li := range in.Lines {
		product, err := s.master.GetProduct(ctx, li.ProductID)
		if err != nil {
			return nil, Totals{}, err
		}
		if product.CompanyID != in.CompanyID {
			return nil, Totals{}, shared.Forbiddenf("product %d belongs to company %d", product.ID, product.CompanyID)
		}
		lineTotal, lineNet := ComputeLine(li)
		line := Line{
			ProductID:          li.ProductID,
			Quantity:           li.Quantity,
			UnitPrice:          li.UnitPrice,
			DiscountPct:        li.DiscountPct,
			CurrencyConversion: li.CurrencyConversion,
			LineTotal:          lineTotal,
			LineNet:            lineNet,
		}
		if needCost {
			line.UnitCost = product.PurchasePrice
		}
		lines = append(lines, line)
	}
	return lines, totals, nil
}

func (s *Service) customerOf(ctx context.Context, companyID, partyID int64) (masterdata.Customer, error) {
	if partyID == 0 {
		return masterdata.Customer{}, shared.Validationf("customer required")
	}
	customer, err := s.master.GetCustomer(ctx, partyID)
	if err != nil {
		return masterdata.Customer{}, err
	}
	if customer.CompanyID != companyID {
		return masterdata.Customer{}, shared.Forbiddenf("customer %d belongs to company %d", partyID, customer.CompanyID)
	}
	return customer, nil
}

func (s *Service) supplierOf(ctx context.Context, companyID, partyID int64) error {
	if partyID == 0 {
		return shared.Validationf("supplier required")
	}
	supplier, err := s.master.GetSupplier(ctx, partyID)
	if err != nil {
		return err
	}
	if supplier.CompanyID != companyID {
		return shared.Forbiddenf("supplier %d belongs to company %d", partyID, supplier.CompanyID)
	}
	return nil
}

func (s *Service) parentOf(ctx context.Context, companyID, parentID int64, kind InvoiceKind) (Invoice, error) {
	if companyID == 0 {
		return Invoice{}, shared.ErrTenant
	}
	if parentID == 0 {
		return Invoice{}, shared.Validationf("parent invoice required")
	}
	parent, err := s.repo.Get(ctx, parentID)
	if err != nil {
		return Invoice{}, err
	}
	if parent.CompanyID != companyID {
		return Invoice{}, shared.Forbiddenf("invoice %d belongs to company %d", parentID, parent.CompanyID)
	}
	if parent.Kind != kind {
		return Invoice{}, shared.Validationf("invoice %s is a %s, expected %s", parent.Number, parent.Kind, kind)
	}
	if parent.Status != StatusActive {
		return Invoice{}, shared.Validationf("invoice %s is %s", parent.Number, parent.Status)
	}
	return parent, nil
}

func (s *Service) activeInvoice(ctx context.Context, companyID, id int64) (Invoice, error) {
	inv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status != StatusActive {
		return Invoice{}, shared.Validationf("invoice %s is %s", inv.Number, inv.Status)
	}
	return inv, nil
}

func (s *Service) fulfillOrder(ctx context.Context, tx TxRepository, inv Invoice, kind orders.OrderKind) error {
	order, err := tx.GetOrderForUpdate(ctx, inv.OrderID)
	if err != nil {
		return err
	}
	if order.CompanyID != inv.CompanyID {
		return shared.Forbiddenf("order %d belongs to company %d", order.ID, order.CompanyID)
	}
	if order.Kind != kind {
		return shared.Validationf("order %s is a %s order", order.Number, order.Kind)
	}
	if order.Status == orders.OrderStatusCancelled {
		return shared.Validationf("order %s is cancelled", order.Number)
	}
	for _, line := range inv.Lines {
		for i := range order.Lines {
			if order.Lines[i].ProductID == line.ProductID {
				orders.ApplyFulfillment(&order.Lines[i], line.Quantity)
				break
			}
		}
	}
	order.Status = orders.ComputeStatus(order.Kind, order.Status, order.Lines)
	return tx.SaveOrderFulfillment(ctx, order)
}

func (s *Service) post(ctx context.Context, tx TxRepository, inv Invoice, debitSub, creditSub int64, amount decimal.Decimal, particulars string) error {
	return s.postRelated(ctx, tx, inv, inv.ID, debitSub, creditSub, amount, particulars)
}

func (s *Service) postRelated(ctx context.Context, tx TxRepository, inv Invoice, relatedID int64, debitSub, creditSub int64, amount decimal.Decimal, particulars string) error {
	_, err := s.engine.Post(ctx, tx, ledger.PostingInput{
		Date:            inv.Date,
		SubDebitID:      debitSub,
		SubCreditID:     creditSub,
		Amount:          amount,
		Particulars:     particulars,
		Type:            string(inv.Kind),
		RelatedID:       relatedID,
		PaymentMethod:   inv.PaymentMethod,
		ReferenceNumber: inv.ReferenceNumber,
		CompanyID:       inv.CompanyID,
	})
	return err
}

func (s *Service) docDate(date time.Time) time.Time {
	if date.IsZero() {
		date = s.now()
	}
	return ledger.NormalizeDate(date)
}

func (s *Service) record(ctx context.Context, inv Invoice, action string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: inv.CompanyID,
		Action:    action,
		Entity:    "invoice",
		EntityID:  fmt.Sprintf("%d", inv.ID),
		Meta: map[string]any{
			"number": inv.Number,
			"kind":   string(inv.Kind),
			"total":  inv.TotalAmount.String(),
		},
		At: s.now(),
	})
}

func cashRole(method string) ledger.AccountRole {
	if method == "bank" || method == "card" || method == "cheque" {
		return ledger.RoleBank
	}
	return ledger.RoleCash
}

func splitPaid(paid, total decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if paid.IsNegative() {
		return decimal.Decimal{}, decimal.Decimal{}, shared.Validationf("paid amount must not be negative")
	}
	if paid.GreaterThan(total) {
		return decimal.Decimal{}, decimal.Decimal{}, shared.Validationf("paid amount %s exceeds total %s", paid, total)
	}
	return paid, total.Sub(paid), nil
}

func sumCost(lines []Line) decimal.Decimal {
	var total decimal.Decimal
	for _, line := range lines {
		total = total.Add(line.UnitCost.Mul(decimal.NewFromFloat(line.Quantity)))
	}
	return total.Round(2)
}

// returnLines builds return lines priced from the parent invoice's lines.
// Each product's returnable quantity is the invoiced quantity less what
// prior active returns already took back, so cumulative returns can never
// exceed the invoice.
func returnLines(parent Invoice, prior []Invoice, requested []ReturnLineInput) ([]Line, Totals, error) {
	if len(requested) == 0 {
		return nil, Totals{}, shared.Validationf("return requires at least one line")
	}
	byProduct := make(map[int64]Line, len(parent.Lines))
	for _, line := range parent.Lines {
		byProduct[line.ProductID] = line
	}
	returned := make(map[int64]float64)
	for _, ret := range prior {
		for _, line := range ret.Lines {
			returned[line.ProductID] += line.Quantity
		}
	}
	lines := make([]Line, 0, len(requested))
	inputs := make([]LineInput, 0, len(requested))
	for i, req := range requested {
		if req.Quantity <= 0 {
			return nil, Totals{}, shared.Validationf("return line %d quantity must be positive", i)
		}
		src, ok := byProduct[req.ProductID]
		if !ok {
			return nil, Totals{}, shared.Validationf("product %d not on invoice %s", req.ProductID, parent.Number)
		}
		remaining := src.Quantity - returned[req.ProductID]
		if req.Quantity > remaining {
			return nil, Totals{}, shared.Validationf("return qty %v exceeds returnable qty %v for product %d on invoice %s",
				req.Quantity, remaining, req.ProductID, parent.Number)
		}
		li := LineInput{
			ProductID:          req.ProductID,
			Quantity:           req.Quantity,
			UnitPrice:          src.UnitPrice,
			DiscountPct:        src.DiscountPct,
			CurrencyConversion: src.CurrencyConversion,
		}
		lineTotal, lineNet := ComputeLine(li)
		lines = append(lines, Line{
			ProductID:          req.ProductID,
			Quantity:           req.Quantity,
			UnitPrice:          src.UnitPrice,
			DiscountPct:        src.DiscountPct,
			CurrencyConversion: src.CurrencyConversion,
			LineTotal:          lineTotal,
			LineNet:            lineNet,
			UnitCost:           src.UnitCost,
		})
		inputs = append(inputs, li)
	}
	totals, err := ComputeTotals(inputs, decimal.Zero, decimal.Zero)
	if err != nil {
		return nil, Totals{}, err
	}
	return lines, totals, nil
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].ID = 0
		out[i].InvoiceID = 0
	}
	return out
}
