package invoices

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/masterdata"
	"github.com/folio-erp/folio-erp/internal/orders"
	"github.com/folio-erp/folio-erp/internal/shared"
)

const (
	subCash      = int64(11)
	subBank      = int64(12)
	subInventory = int64(13)
	subAR        = int64(14)
	subAP        = int64(15)
	subSales     = int64(18)
	subCOS       = int64(19)
	subDG        = int64(20)
	subDE        = int64(21)
)

// fakeStore is the in-memory backing state. WithTx clones it, applies the
// callback to the clone, and swaps it in only on success, mirroring a
// database rollback.
type fakeStore struct {
	invoices      map[int64]Invoice
	nextInvoiceID int64
	stock         map[int64]float64
	products      map[int64]masterdata.Product
	orders        map[int64]orders.Order
	txns          []ledger.Transaction
	subs          map[int64]ledger.SubAccount
	roles         ledger.RoleMap
}

func newStore() *fakeStore {
	subs := map[int64]ledger.SubAccount{}
	for _, id := range []int64{subCash, subBank, subInventory, subAR, subAP, subSales, subCOS, subDG, subDE} {
		subs[id] = ledger.SubAccount{ID: id, AccountID: id - 10, CompanyID: 1, Status: ledger.SubAccountStatusActive}
	}
	return &fakeStore{
		invoices: map[int64]Invoice{},
		stock:    map[int64]float64{},
		products: map[int64]masterdata.Product{},
		orders:   map[int64]orders.Order{},
		subs:     subs,
		roles: ledger.RoleMap{
			ledger.RoleCash:               subCash,
			ledger.RoleBank:               subBank,
			ledger.RoleInventory:          subInventory,
			ledger.RoleAccountsReceivable: subAR,
			ledger.RoleAccountsPayable:    subAP,
			ledger.RoleSales:              subSales,
			ledger.RoleCostOfSales:        subCOS,
			ledger.RoleDiscountGiven:      subDG,
			ledger.RoleDiscountEarned:     subDE,
		},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		invoices:      make(map[int64]Invoice, len(s.invoices)),
		nextInvoiceID: s.nextInvoiceID,
		stock:         make(map[int64]float64, len(s.stock)),
		products:      make(map[int64]masterdata.Product, len(s.products)),
		orders:        make(map[int64]orders.Order, len(s.orders)),
		txns:          append([]ledger.Transaction(nil), s.txns...),
		subs:          s.subs,
		roles:         s.roles,
	}
	for k, v := range s.invoices {
		v.Lines = append([]Line(nil), v.Lines...)
		c.invoices[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		v.Lines = append([]orders.OrderLine(nil), v.Lines...)
		c.orders[k] = v
	}
	return c
}

type fakeRepo struct {
	store *fakeStore
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := r.store.clone()
	if err := fn(ctx, &fakeTx{store: staged}); err != nil {
		return err
	}
	r.store = staged
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (Invoice, error) {
	inv, ok := r.store.invoices[id]
	if !ok {
		return Invoice{}, shared.NotFoundf("invoice %d", id)
	}
	return inv, nil
}

func (r *fakeRepo) List(_ context.Context, companyID int64, kind InvoiceKind) ([]Invoice, error) {
	result := []Invoice{}
	for _, inv := range r.store.invoices {
		if inv.CompanyID == companyID && (kind == "" || inv.Kind == kind) {
			result = append(result, inv)
		}
	}
	return result, nil
}

func (r *fakeRepo) ListReturns(_ context.Context, parentID int64) ([]Invoice, error) {
	result := []Invoice{}
	for _, inv := range r.store.invoices {
		if inv.ParentInvoiceID == parentID && inv.Status == StatusActive &&
			(inv.Kind == KindSaleReturn || inv.Kind == KindPurchaseReturn) {
			result = append(result, inv)
		}
	}
	return result, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetSubAccount(_ context.Context, id int64) (ledger.SubAccount, error) {
	sub, ok := t.store.subs[id]
	if !ok {
		return ledger.SubAccount{}, shared.NotFoundf("sub-account %d", id)
	}
	return sub, nil
}

func (t *fakeTx) InsertTransaction(_ context.Context, txn ledger.Transaction) (int64, error) {
	txn.ID = int64(len(t.store.txns) + 1)
	t.store.txns = append(t.store.txns, txn)
	return txn.ID, nil
}

func (t *fakeTx) RoleMap(_ context.Context, _ int64) (ledger.RoleMap, error) {
	return t.store.roles, nil
}

func (t *fakeTx) InsertInvoice(_ context.Context, inv Invoice) (Invoice, error) {
	t.store.nextInvoiceID++
	inv.ID = t.store.nextInvoiceID
	for i := range inv.Lines {
		inv.Lines[i].ID = int64(i + 1)
		inv.Lines[i].InvoiceID = inv.ID
	}
	t.store.invoices[inv.ID] = inv
	return inv, nil
}

func (t *fakeTx) GetInvoiceForUpdate(_ context.Context, id int64) (Invoice, error) {
	inv, ok := t.store.invoices[id]
	if !ok {
		return Invoice{}, shared.NotFoundf("invoice %d", id)
	}
	return inv, nil
}

func (t *fakeTx) UpdateInvoiceProfit(_ context.Context, id int64, profit decimal.Decimal) error {
	inv := t.store.invoices[id]
	inv.Profit = profit
	t.store.invoices[id] = inv
	return nil
}

func (t *fakeTx) UpdateInvoiceStatus(_ context.Context, id int64, status InvoiceStatus) error {
	inv := t.store.invoices[id]
	inv.Status = status
	t.store.invoices[id] = inv
	return nil
}

func (t *fakeTx) IncrementStock(_ context.Context, _, productID int64, qty float64) error {
	t.store.stock[productID] += qty
	return nil
}

func (t *fakeTx) DecrementStock(_ context.Context, _, productID int64, qty float64) error {
	if t.store.stock[productID] < qty {
		return fmt.Errorf("%w: product %d needs %v", shared.ErrInsufficientStock, productID, qty)
	}
	t.store.stock[productID] -= qty
	return nil
}

func (t *fakeTx) StockQty(_ context.Context, _, productID int64) (float64, error) {
	return t.store.stock[productID], nil
}

func (t *fakeTx) GetProductForUpdate(_ context.Context, id int64) (masterdata.Product, error) {
	p, ok := t.store.products[id]
	if !ok {
		return masterdata.Product{}, shared.NotFoundf("product %d", id)
	}
	return p, nil
}

func (t *fakeTx) UpdateProductPurchasePrice(_ context.Context, id int64, price decimal.Decimal) error {
	p := t.store.products[id]
	p.PurchasePrice = price
	t.store.products[id] = p
	return nil
}

func (t *fakeTx) GetOrderForUpdate(_ context.Context, id int64) (orders.Order, error) {
	o, ok := t.store.orders[id]
	if !ok {
		return orders.Order{}, shared.NotFoundf("order %d", id)
	}
	return o, nil
}

func (t *fakeTx) SaveOrderFulfillment(_ context.Context, order orders.Order) error {
	t.store.orders[order.ID] = order
	return nil
}

type fakeMaster struct {
	store     *fakeStore
	customers map[int64]masterdata.Customer
	suppliers map[int64]masterdata.Supplier
}

func (m *fakeMaster) GetProduct(_ context.Context, id int64) (masterdata.Product, error) {
	p, ok := m.store.products[id]
	if !ok {
		return masterdata.Product{}, shared.NotFoundf("product %d", id)
	}
	return p, nil
}

func (m *fakeMaster) GetCustomer(_ context.Context, id int64) (masterdata.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return masterdata.Customer{}, shared.NotFoundf("customer %d", id)
	}
	return c, nil
}

func (m *fakeMaster) GetSupplier(_ context.Context, id int64) (masterdata.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return masterdata.Supplier{}, shared.NotFoundf("supplier %d", id)
	}
	return s, nil
}

type fakeSeq struct {
	counters map[string]int64
}

func (s *fakeSeq) Next(_ context.Context, _ int64, kind, prefix string) (string, error) {
	if s.counters == nil {
		s.counters = map[string]int64{}
	}
	s.counters[kind]++
	return fmt.Sprintf("%s-%06d", prefix, s.counters[kind]), nil
}

type fixture struct {
	service *Service
	repo    *fakeRepo
	store   func() *fakeStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := newStore()
	store.products[1] = masterdata.Product{ID: 1, CompanyID: 1, Title: "The Go Programming Language", SalePrice: d("100"), PurchasePrice: d("60"), IsActive: true}
	store.products[2] = masterdata.Product{ID: 2, CompanyID: 2, Title: "Other Tenant Title", SalePrice: d("80"), PurchasePrice: d("40"), IsActive: true}
	store.stock[1] = 5
	repo := &fakeRepo{store: store}
	master := &fakeMaster{
		store:     store,
		customers: map[int64]masterdata.Customer{7: {ID: 7, CompanyID: 1, Name: "City Books"}},
		suppliers: map[int64]masterdata.Supplier{8: {ID: 8, CompanyID: 1, Name: "Paper Mill"}},
	}
	service := NewService(repo, master, ledger.NewEngine(), &fakeSeq{}, nil)
	service.WithNow(func() time.Time { return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC) })
	// the master port reads committed state
	return fixture{service: service, repo: repo, store: func() *fakeStore {
		master.store = repo.store
		return repo.store
	}}
}

func saleInput() CreateInput {
	return CreateInput{
		CompanyID:     1,
		PartyID:       7,
		Lines:         []LineInput{{ProductID: 1, Quantity: 2, UnitPrice: d("100"), DiscountPct: d("10")}},
		BillDiscount:  d("20"),
		PaidAmount:    d("100"),
		PaymentMethod: "cash",
	}
}

func TestCreateSalePostsJournalAndMovesStock(t *testing.T) {
	fx := newFixture(t)

	inv, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)

	require.True(t, d("160").Equal(inv.TotalAmount), "total = %s", inv.TotalAmount)
	require.True(t, d("100").Equal(inv.PaidAmount))
	require.True(t, d("60").Equal(inv.DueAmount))
	require.True(t, d("40").Equal(inv.Profit), "profit = %s", inv.Profit)
	require.Equal(t, "SIN-000001", inv.Number)

	store := fx.store()
	require.Equal(t, float64(3), store.stock[1])
	require.Len(t, store.txns, 3)

	payment := store.txns[0]
	require.Equal(t, subCash, payment.SubDebitID)
	require.Equal(t, subSales, payment.SubCreditID)
	require.True(t, d("100").Equal(payment.Amount))
	require.Equal(t, "sale", payment.Type)
	require.Equal(t, inv.ID, payment.RelatedID)

	due := store.txns[1]
	require.Equal(t, subAR, due.SubDebitID)
	require.Equal(t, subSales, due.SubCreditID)
	require.True(t, d("60").Equal(due.Amount))

	cogs := store.txns[2]
	require.Equal(t, subCOS, cogs.SubDebitID)
	require.Equal(t, subInventory, cogs.SubCreditID)
	require.True(t, d("120").Equal(cogs.Amount))
}

func TestCreateSaleBankMethodUsesBankSubAccount(t *testing.T) {
	fx := newFixture(t)
	in := saleInput()
	in.PaymentMethod = "bank"

	_, err := fx.service.CreateSale(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, subBank, fx.store().txns[0].SubDebitID)
}

func TestCreateSaleInsufficientStockRollsBackEverything(t *testing.T) {
	fx := newFixture(t)
	in := saleInput()
	in.Lines[0].Quantity = 10
	in.BillDiscount = decimal.Zero
	in.PaidAmount = decimal.Zero

	_, err := fx.service.CreateSale(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	store := fx.store()
	require.Empty(t, store.invoices, "invoice must not survive a failed stock decrement")
	require.Empty(t, store.txns)
	require.Equal(t, float64(5), store.stock[1])
}

func TestCreateSaleRejectsCrossTenantProduct(t *testing.T) {
	fx := newFixture(t)
	in := saleInput()
	in.Lines[0].ProductID = 2

	_, err := fx.service.CreateSale(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateSaleRejectsOverpayment(t *testing.T) {
	fx := newFixture(t)
	in := saleInput()
	in.PaidAmount = d("200")

	_, err := fx.service.CreateSale(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreatePurchaseUpdatesCostAndStock(t *testing.T) {
	fx := newFixture(t)
	// 5 on hand at avg 60; receive 5 at 60 less a 25 bill discount.
	// Effective unit cost (300-25)/5 = 55, new avg (5*60+5*55)/10 = 57.5.
	inv, err := fx.service.CreatePurchase(context.Background(), CreateInput{
		CompanyID:     1,
		PartyID:       8,
		Lines:         []LineInput{{ProductID: 1, Quantity: 5, UnitPrice: d("60")}},
		BillDiscount:  d("25"),
		PaidAmount:    d("100"),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	require.True(t, d("275").Equal(inv.TotalAmount))
	require.True(t, inv.Profit.IsZero())

	store := fx.store()
	require.Equal(t, float64(10), store.stock[1])
	require.True(t, d("57.5").Equal(store.products[1].PurchasePrice), "avg cost = %s", store.products[1].PurchasePrice)

	require.Len(t, store.txns, 2)
	paid := store.txns[0]
	require.Equal(t, subInventory, paid.SubDebitID)
	require.Equal(t, subCash, paid.SubCreditID)
	require.True(t, d("100").Equal(paid.Amount))

	due := store.txns[1]
	require.Equal(t, subInventory, due.SubDebitID)
	require.Equal(t, subAP, due.SubCreditID)
	require.True(t, d("175").Equal(due.Amount))
}

func TestCreateSaleReturnAdjustsParentProfit(t *testing.T) {
	fx := newFixture(t)
	parent, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)

	ret, err := fx.service.CreateSaleReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 1}},
		RefundAmount:    d("50"),
		PaymentMethod:   "cash",
	})
	require.NoError(t, err)

	// Return value 90 (100 less 10% line discount), cost 60, so the
	// return removes 30 of profit.
	require.True(t, d("90").Equal(ret.TotalAmount))
	require.True(t, d("-30").Equal(ret.Profit))

	store := fx.store()
	require.Equal(t, float64(4), store.stock[1], "returned unit goes back to stock")
	require.True(t, d("10").Equal(store.invoices[parent.ID].Profit), "parent profit 40-30")

	require.Len(t, store.txns, 6)
	refund := store.txns[3]
	require.Equal(t, subSales, refund.SubDebitID)
	require.Equal(t, subCash, refund.SubCreditID)
	require.True(t, d("50").Equal(refund.Amount))
	require.Equal(t, "sale_return", refund.Type)
	require.Equal(t, parent.ID, refund.RelatedID, "return rows reference the parent invoice")

	remainder := store.txns[4]
	require.Equal(t, subSales, remainder.SubDebitID)
	require.Equal(t, subAR, remainder.SubCreditID)
	require.True(t, d("40").Equal(remainder.Amount))

	costBack := store.txns[5]
	require.Equal(t, subInventory, costBack.SubDebitID)
	require.Equal(t, subCOS, costBack.SubCreditID)
	require.True(t, d("60").Equal(costBack.Amount))
}

func TestSaleReturnsCappedCumulatively(t *testing.T) {
	fx := newFixture(t)
	parent, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)

	_, err = fx.service.CreateSaleReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// One of two units is back; a second return may take at most one more.
	_, err = fx.service.CreateSaleReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 2}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, float64(4), fx.store().stock[1], "rejected return must not move stock")

	_, err = fx.service.CreateSaleReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// Everything sold is back; nothing more can be returned.
	_, err = fx.service.CreateSaleReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, float64(5), fx.store().stock[1], "stock never exceeds the pre-sale level")
}

func TestPurchaseReturnsCappedCumulatively(t *testing.T) {
	fx := newFixture(t)
	parent, err := fx.service.CreatePurchase(context.Background(), CreateInput{
		CompanyID: 1,
		PartyID:   8,
		Lines:     []LineInput{{ProductID: 1, Quantity: 5, UnitPrice: d("60")}},
	})
	require.NoError(t, err)

	_, err = fx.service.CreatePurchaseReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = fx.service.CreatePurchaseReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 3}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, float64(7), fx.store().stock[1], "5 on hand + 5 received - 3 returned")
}

func TestCreateSaleReturnCapsAtInvoicedQty(t *testing.T) {
	fx := newFixture(t)
	parent, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)

	_, err = fx.service.CreateSaleReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 3}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreatePurchaseReturnHonorsStockFloor(t *testing.T) {
	fx := newFixture(t)
	parent, err := fx.service.CreatePurchase(context.Background(), CreateInput{
		CompanyID: 1,
		PartyID:   8,
		Lines:     []LineInput{{ProductID: 1, Quantity: 5, UnitPrice: d("60")}},
	})
	require.NoError(t, err)

	// Stock drained elsewhere; the return cannot ship goods that are gone.
	fx.repo.store.stock[1] = 1

	_, err = fx.service.CreatePurchaseReturn(context.Background(), ReturnInput{
		CompanyID:       1,
		ParentInvoiceID: parent.ID,
		Lines:           []ReturnLineInput{{ProductID: 1, Quantity: 2}},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Equal(t, float64(1), fx.store().stock[1])
}

func TestCreateChallanMovesStockWithoutJournal(t *testing.T) {
	fx := newFixture(t)
	in := saleInput()
	in.PaidAmount = decimal.Zero

	challan, err := fx.service.CreateChallan(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, KindChallan, challan.Kind)
	require.True(t, challan.DueAmount.Equal(challan.TotalAmount))

	store := fx.store()
	require.Equal(t, float64(3), store.stock[1])
	require.Empty(t, store.txns, "challans never post to the journal")
}

func TestConvertChallanPostsFinancialsOnly(t *testing.T) {
	fx := newFixture(t)
	in := saleInput()
	in.PaidAmount = decimal.Zero
	challan, err := fx.service.CreateChallan(context.Background(), in)
	require.NoError(t, err)

	sale, err := fx.service.ConvertChallan(context.Background(), 1, challan.ID, d("160"), "cash")
	require.NoError(t, err)
	require.Equal(t, KindSale, sale.Kind)
	require.Equal(t, challan.ID, sale.ParentInvoiceID)
	require.True(t, d("40").Equal(sale.Profit))

	store := fx.store()
	require.Equal(t, float64(3), store.stock[1], "conversion must not move stock twice")
	require.Equal(t, StatusConverted, store.invoices[challan.ID].Status)
	require.Len(t, store.txns, 2, "full payment plus cost of sales")
}

func TestSaleFulfillsLinkedOrderCapped(t *testing.T) {
	fx := newFixture(t)
	fx.repo.store.orders[30] = orders.Order{
		ID:        30,
		CompanyID: 1,
		Kind:      orders.OrderKindSale,
		PartyID:   7,
		Status:    orders.OrderStatusPending,
		Lines:     []orders.OrderLine{{ID: 1, OrderID: 30, ProductID: 1, OrderedQty: 2}},
	}
	in := saleInput()
	in.OrderID = 30
	in.Lines[0].Quantity = 3
	in.BillDiscount = decimal.Zero
	in.PaidAmount = decimal.Zero

	_, err := fx.service.CreateSale(context.Background(), in)
	require.NoError(t, err)

	order := fx.store().orders[30]
	require.Equal(t, float64(2), order.Lines[0].FulfilledQty, "fulfillment caps at ordered qty")
	require.Equal(t, orders.OrderStatusFulfilled, order.Status)
}

func TestRecordPaymentAgainstSale(t *testing.T) {
	fx := newFixture(t)
	inv, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)

	txn, err := fx.service.RecordPayment(context.Background(), 1, inv.ID, d("60"), "cash", "RCPT-9")
	require.NoError(t, err)
	require.Equal(t, subCash, txn.SubDebitID)
	require.Equal(t, subAR, txn.SubCreditID)
	require.Equal(t, "sale", txn.Type)
	require.Equal(t, inv.ID, txn.RelatedID)
}

func TestRecordDiscountAgainstPurchase(t *testing.T) {
	fx := newFixture(t)
	inv, err := fx.service.CreatePurchase(context.Background(), CreateInput{
		CompanyID: 1,
		PartyID:   8,
		Lines:     []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: d("60")}},
	})
	require.NoError(t, err)

	txn, err := fx.service.RecordDiscount(context.Background(), 1, inv.ID, d("10"))
	require.NoError(t, err)
	require.Equal(t, subAP, txn.SubDebitID)
	require.Equal(t, subDE, txn.SubCreditID)
}

func TestDeleteLeavesJournalIntact(t *testing.T) {
	fx := newFixture(t)
	inv, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)
	posted := len(fx.store().txns)

	require.NoError(t, fx.service.Delete(context.Background(), 1, inv.ID))

	store := fx.store()
	require.Equal(t, StatusDeleted, store.invoices[inv.ID].Status)
	require.Len(t, store.txns, posted, "journal rows outlive the invoice")
}

func TestGetEnforcesTenant(t *testing.T) {
	fx := newFixture(t)
	inv, err := fx.service.CreateSale(context.Background(), saleInput())
	require.NoError(t, err)

	_, err = fx.service.Get(context.Background(), 2, inv.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}
