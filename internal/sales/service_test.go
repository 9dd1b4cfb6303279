package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memorySalesRepo struct {
	orders        map[int64]*Order
	sales         map[int64]*Sale
	nextOrderID   int64
	nextSaleID    int64
	nextPaymentID int64

	failOrderUpdate bool
}

func newMemorySalesRepo() *memorySalesRepo {
	return &memorySalesRepo{
		orders: make(map[int64]*Order),
		sales:  make(map[int64]*Sale),
	}
}

func (r *memorySalesRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memorySalesRepo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return r.GetOrderForUpdate(ctx, id)
}

func (r *memorySalesRepo) GetOrderForUpdate(ctx context.Context, id int64) (*Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *order
	copied.Items = append([]LineItem(nil), order.Items...)
	return &copied, nil
}

func (r *memorySalesRepo) InsertOrder(ctx context.Context, order Order) (int64, error) {
	r.nextOrderID++
	order.ID = r.nextOrderID
	order.Items = nil
	r.orders[order.ID] = &order
	return order.ID, nil
}

func (r *memorySalesRepo) ReplaceOrderItems(ctx context.Context, orderID int64, items []LineItem) error {
	order, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.Items = append([]LineItem(nil), items...)
	return nil
}

func (r *memorySalesRepo) UpdateOrderHeader(ctx context.Context, order Order) error {
	if r.failOrderUpdate {
		return errors.New("simulated write failure")
	}
	stored, ok := r.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	order.Items = stored.Items
	r.orders[order.ID] = &order
	return nil
}

func (r *memorySalesRepo) DeleteOrderRecord(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memorySalesRepo) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return r.GetSaleForUpdate(ctx, id)
}

func (r *memorySalesRepo) GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *sale
	copied.Items = append([]LineItem(nil), sale.Items...)
	copied.Payments = append([]Payment(nil), sale.Payments...)
	return &copied, nil
}

func (r *memorySalesRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	r.nextSaleID++
	sale.ID = r.nextSaleID
	sale.Items = nil
	sale.Payments = nil
	r.sales[sale.ID] = &sale
	return sale.ID, nil
}

func (r *memorySalesRepo) ReplaceSaleItems(ctx context.Context, saleID int64, items []LineItem) error {
	sale, ok := r.sales[saleID]
	if !ok {
		return ErrNotFound
	}
	sale.Items = append([]LineItem(nil), items...)
	return nil
}

func (r *memorySalesRepo) UpdateSaleHeader(ctx context.Context, sale Sale) error {
	stored, ok := r.sales[sale.ID]
	if !ok {
		return ErrNotFound
	}
	sale.Items = stored.Items
	sale.Payments = stored.Payments
	r.sales[sale.ID] = &sale
	return nil
}

func (r *memorySalesRepo) DeleteSaleRecord(ctx context.Context, id int64) error {
	if _, ok := r.sales[id]; !ok {
		return ErrNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *memorySalesRepo) InsertPayment(ctx context.Context, saleID int64, payment Payment) (int64, error) {
	sale, ok := r.sales[saleID]
	if !ok {
		return 0, ErrNotFound
	}
	r.nextPaymentID++
	payment.ID = r.nextPaymentID
	sale.Payments = append(sale.Payments, payment)
	return payment.ID, nil
}

func (r *memorySalesRepo) DeletePaymentRecord(ctx context.Context, saleID, paymentID int64) error {
	sale, ok := r.sales[saleID]
	if !ok {
		return ErrNotFound
	}
	for i, p := range sale.Payments {
		if p.ID == paymentID {
			sale.Payments = append(sale.Payments[:i], sale.Payments[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memorySalesRepo) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memorySalesRepo) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var out []Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *memorySalesRepo) FindSalesByClient(ctx context.Context, clientID int64) ([]Sale, error) {
	var out []Sale
	for _, s := range r.sales {
		if s.ClientID == clientID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func newTestService(repo *memorySalesRepo) *Service {
	return NewService(repo, nil)
}

func seedOrder(t *testing.T, svc *Service, items []LineItemRequest) *Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		ClientID:     1,
		Items:        items,
		DeliveryDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Currency:     "USD",
	}, 7)
	require.NoError(t, err)
	return order
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateOrderDefaults(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 3, UnitPrice: 10},
	})

	require.Equal(t, OrderStatusPending, order.Status)
	require.Equal(t, PriorityMedium, order.Priority)
	require.Nil(t, order.SaleID)
	require.InDelta(t, 30.0, order.NegotiatedPrice(), 1e-9)
}

func TestCreateSaleFromOrder(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 3, UnitPrice: 10},
	})

	sale, err := svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.NoError(t, err)

	require.InDelta(t, 30.0, sale.TotalAmount, 1e-9)
	require.Equal(t, SaleStatusUnpaid, sale.Status)
	require.Equal(t, SaleTypeCredit, sale.SaleType)
	require.True(t, sale.National)
	require.NotNil(t, sale.OrderID)
	require.Equal(t, order.ID, *sale.OrderID)
	require.Len(t, sale.Items, 1)
	require.Equal(t, order.Items[0].Quantity, sale.Items[0].Quantity)

	linked, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusCompleted, linked.Status)
	require.NotNil(t, linked.SaleID)
	require.Equal(t, sale.ID, *linked.SaleID)
	require.NotNil(t, linked.Fulfillment)
	require.Equal(t, FulfillmentComplete, *linked.Fulfillment)
}

func TestCreateSaleFromOrderAlreadyLinked(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 1, UnitPrice: 5},
	})

	_, err := svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.NoError(t, err)

	_, err = svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.ErrorIs(t, err, ErrAlreadyLinked)
}

func TestCreateSaleLinkFailureSurfacesPartialLink(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 1, UnitPrice: 5},
	})

	repo.failOrderUpdate = true
	_, err := svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.ErrorIs(t, err, ErrPartialLink)
}

func TestCashSaleSettledOnCreation(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	cash := SaleTypeCash
	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "panela", Quantity: 2, UnitPrice: 25},
		},
		SaleType: &cash,
		National: true,
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	require.Equal(t, SaleStatusPaid, sale.Status)
	require.Len(t, sale.Payments, 1)
	require.InDelta(t, 50.0, sale.Payments[0].Amount, 1e-9)
	require.Zero(t, sale.AmountOwed())
}

func TestCashSaleZeroTotalHasEmptyLedger(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	cash := SaleTypeCash
	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "muestra gratis", Quantity: 1, UnitPrice: 0},
		},
		SaleType: &cash,
		National: true,
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	require.Equal(t, SaleStatusPaid, sale.Status)
	require.Empty(t, sale.Payments)
	require.Zero(t, sale.AmountOwed())
}

func TestRecordPaymentSequence(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "coffee", Quantity: 10, UnitPrice: 10},
		},
		Currency: "USD",
	}, 7)
	require.NoError(t, err)
	require.Equal(t, SaleStatusUnpaid, sale.Status)

	when := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	sale, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Date: when, Amount: 40})
	require.NoError(t, err)
	require.Equal(t, SaleStatusPartial, sale.Status)
	require.InDelta(t, 60.0, sale.AmountOwed(), 1e-9)

	sale, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Date: when, Amount: 60})
	require.NoError(t, err)
	require.Equal(t, SaleStatusPaid, sale.Status)
	require.Zero(t, sale.AmountOwed())

	// A settled sale accepts no further payments, no matter how small.
	_, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Date: when, Amount: 1})
	require.ErrorIs(t, err, ErrOverpayment)

	// Retrying the same rejected payment fails identically.
	_, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Date: when, Amount: 1})
	require.ErrorIs(t, err, ErrOverpayment)

	sale, err = svc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, sale.Payments, 2)
	require.Equal(t, SaleStatusPaid, sale.Status)
}

func TestRecordPaymentRejectsNonPositiveAmounts(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "coffee", Quantity: 1, UnitPrice: 100},
		},
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	when := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	for _, amount := range []float64{0, -5} {
		_, err := svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Date: when, Amount: amount})
		require.ErrorIs(t, err, ErrInvalidPayment)
	}
}

func TestRecordPaymentExactSettlement(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "coffee", Quantity: 1, UnitPrice: 75},
		},
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	sale, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{
		Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Amount: 75,
	})
	require.NoError(t, err)
	require.Equal(t, SaleStatusPaid, sale.Status)
}

func TestDeletePaymentRevertsStatus(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "coffee", Quantity: 1, UnitPrice: 100},
		},
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	sale, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{
		Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Amount: 100,
	})
	require.NoError(t, err)
	require.Equal(t, SaleStatusPaid, sale.Status)

	sale, err = svc.DeletePayment(context.Background(), sale.ID, sale.Payments[0].ID)
	require.NoError(t, err)
	require.Empty(t, sale.Payments)
	require.Equal(t, SaleStatusUnpaid, sale.Status)
}

func TestDeletePaymentUnknownID(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "coffee", Quantity: 1, UnitPrice: 10},
		},
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	_, err = svc.DeletePayment(context.Background(), sale.ID, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSaleResetsLinkedOrder(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 2, UnitPrice: 10},
	})

	sale, err := svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), sale.ID))

	_, err = svc.GetSale(context.Background(), sale.ID)
	require.ErrorIs(t, err, ErrNotFound)

	reset, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, reset.Status)
	require.Nil(t, reset.SaleID)
	require.NotNil(t, reset.Fulfillment)
	require.Equal(t, FulfillmentUnfulfilled, *reset.Fulfillment)
}

func TestDeleteOrderLeavesSaleReference(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 2, UnitPrice: 10},
	})
	sale, err := svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))

	// The sale keeps its order reference even though the order is gone.
	orphan, err := svc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan.OrderID)
	require.Equal(t, order.ID, *orphan.OrderID)
}

func TestUpdateSaleItemsRecomputesStatus(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID: 1,
		SaleDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{Description: "coffee", Quantity: 1, UnitPrice: 100},
		},
		Currency: "USD",
	}, 7)
	require.NoError(t, err)

	sale, err = svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{
		Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Amount: 50,
	})
	require.NoError(t, err)
	require.Equal(t, SaleStatusPartial, sale.Status)

	// Shrinking the sale to the amount already paid settles it.
	sale, err = svc.UpdateSaleItems(context.Background(), sale.ID, []LineItemRequest{
		{Description: "coffee", Quantity: 1, UnitPrice: 50},
	})
	require.NoError(t, err)
	require.InDelta(t, 50.0, sale.TotalAmount, 1e-9)
	require.Equal(t, SaleStatusPaid, sale.Status)
}

func TestCreateSaleWithExplicitNumberAndLink(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 2, UnitPrice: 10},
	})

	number := "VENTA-CUSTOM-1"
	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ClientID:   1,
		SaleNumber: &number,
		SaleDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemRequest{
			{ProductID: int64Ptr(10), Description: "coffee", Quantity: 2, UnitPrice: 10},
		},
		Currency: "USD",
		OrderID:  &order.ID,
	}, 7)
	require.NoError(t, err)
	require.Equal(t, number, sale.SaleNumber)

	linked, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusCompleted, linked.Status)
	require.NotNil(t, linked.SaleID)
	require.Equal(t, sale.ID, *linked.SaleID)
}

func TestUpdateOrderNeverTouchesLink(t *testing.T) {
	repo := newMemorySalesRepo()
	svc := newTestService(repo)

	order := seedOrder(t, svc, []LineItemRequest{
		{ProductID: int64Ptr(10), Description: "coffee", Quantity: 2, UnitPrice: 10},
	})
	sale, err := svc.CreateSaleFromOrder(context.Background(), order.ID, 7)
	require.NoError(t, err)

	high := PriorityHigh
	updated, err := svc.UpdateOrder(context.Background(), order.ID, UpdateOrderRequest{Priority: &high})
	require.NoError(t, err)
	require.Equal(t, PriorityHigh, updated.Priority)
	require.NotNil(t, updated.SaleID)
	require.Equal(t, sale.ID, *updated.SaleID)
}
