package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campoverde/backoffice/internal/shared"
)

// RepositoryPort defines the persistence surface the service depends on.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	FindSalesByClient(ctx context.Context, clientID int64) ([]Sale, error)
}

// Service owns the order and sale business rules: the payment ledger, the
// derived payment status, fulfillment evaluation and the order-sale link.
type Service struct {
	repo  RepositoryPort
	locks *shared.Locker
	now   func() time.Time
}

// NewService constructs a sales service. locker may be nil when cross-process
// payment serialization is not required (tests, single-instance deployments);
// row locks inside the transaction still protect the ledger invariant.
func NewService(repo RepositoryPort, locker *shared.Locker) *Service {
	return &Service{
		repo:  repo,
		locks: locker,
		now:   time.Now,
	}
}

// ============================================================================
// ORDER OPERATIONS
// ============================================================================

// CreateOrder records a new pending order.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest, createdBy int64) (*Order, error) {
	items := itemsFromRequests(req.Items)
	if _, err := LineItemsTotal(items); err != nil {
		return nil, err
	}

	priority := PriorityMedium
	if req.Priority != nil {
		priority = *req.Priority
	}

	order := Order{
		ClientID:     req.ClientID,
		Items:        items,
		DeliveryDate: req.DeliveryDate,
		Location:     req.Location,
		Comments:     req.Comments,
		Priority:     priority,
		Status:       OrderStatusPending,
		Currency:     req.Currency,
		CreatedBy:    createdBy,
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}
		return tx.ReplaceOrderItems(ctx, id, items)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return s.repo.GetOrder(ctx, id)
}

// UpdateOrder applies a partial update to an order. The sale link and
// fulfillment status are never touched here; they belong to the linker.
func (s *Service) UpdateOrder(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.ClientID != nil {
			order.ClientID = *req.ClientID
		}
		if req.DeliveryDate != nil {
			order.DeliveryDate = *req.DeliveryDate
		}
		if req.Location != nil {
			order.Location = req.Location
		}
		if req.Comments != nil {
			order.Comments = req.Comments
		}
		if req.Priority != nil {
			order.Priority = *req.Priority
		}
		if req.Status != nil {
			order.Status = *req.Status
		}
		if req.Currency != nil {
			order.Currency = *req.Currency
		}

		if req.Items != nil {
			items := itemsFromRequests(*req.Items)
			if _, err := LineItemsTotal(items); err != nil {
				return err
			}
			if err := tx.ReplaceOrderItems(ctx, id, items); err != nil {
				return err
			}
			order.Items = items
		}

		return tx.UpdateOrderHeader(ctx, *order)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

// GetOrder retrieves an order with its items.
func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders returns a filtered, paginated order listing.
func (s *Service) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.repo.ListOrders(ctx, req)
}

// DeleteOrder removes an order. A sale referencing the deleted order keeps its
// order reference; the dangling pointer is a documented gap, matching how the
// system has always behaved.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteOrderRecord(ctx, id)
	})
}

// ============================================================================
// SALE OPERATIONS
// ============================================================================

// CreateSale records a sale. A CASH sale starts fully paid with a single
// auto-inserted payment dated at the sale date. When req.OrderID is set the
// sale is linked to that order in the same transaction, with the same
// postconditions as CreateSaleFromOrder.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest, createdBy int64) (*Sale, error) {
	items := itemsFromRequests(req.Items)
	total, err := LineItemsTotal(items)
	if err != nil {
		return nil, err
	}

	saleType := SaleTypeCredit
	if req.SaleType != nil {
		saleType = *req.SaleType
	}

	now := s.now()
	saleNumber := s.generateSaleNumber()
	if req.SaleNumber != nil && *req.SaleNumber != "" {
		saleNumber = *req.SaleNumber
	}

	// A zero-total sale derives to PAID with an empty ledger; recording a
	// 0-amount payment would trip the ledger's positive-amount rule.
	var payments []Payment
	if saleType == SaleTypeCash && total > 0 {
		comment := "cash sale, settled on creation"
		payments = append(payments, Payment{Date: req.SaleDate, Amount: total, Comments: &comment})
	}
	paid, err := PaymentsTotal(payments)
	if err != nil {
		return nil, err
	}

	sale := Sale{
		ClientID:     req.ClientID,
		SaleNumber:   saleNumber,
		SaleDate:     req.SaleDate,
		RecordedDate: now,
		Items:        items,
		TotalAmount:  total,
		Payments:     payments,
		Status:       DeriveStatus(total, paid),
		SaleType:     saleType,
		National:     req.National,
		Currency:     req.Currency,
		Comments:     req.Comments,
		Location:     req.Location,
		OrderID:      req.OrderID,
		CreatedBy:    createdBy,
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var order *Order
		if req.OrderID != nil {
			loaded, err := tx.GetOrderForUpdate(ctx, *req.OrderID)
			if err != nil {
				return fmt.Errorf("load linked order: %w", err)
			}
			if loaded.SaleID != nil {
				return ErrAlreadyLinked
			}
			order = loaded
		}

		var err error
		id, err = insertSaleWithChildren(ctx, tx, sale)
		if err != nil {
			return err
		}

		if order != nil {
			if err := completeOrderLink(ctx, tx, order, id, items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetSale(ctx, id)
}

// CreateSaleFromOrder converts an order into a credit sale. Order items are
// carried over verbatim, with no repricing. Both writes -- the new sale and
// the order's link update -- run in one transaction, so a failure on either
// side leaves no orphaned record behind.
func (s *Service) CreateSaleFromOrder(ctx context.Context, orderID, createdBy int64) (*Sale, error) {
	now := s.now()

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.SaleID != nil {
			return ErrAlreadyLinked
		}

		items := copyItems(order.Items)
		total, err := LineItemsTotal(items)
		if err != nil {
			return err
		}

		sale := Sale{
			ClientID:     order.ClientID,
			SaleNumber:   s.generateSaleNumber(),
			SaleDate:     now,
			RecordedDate: now,
			Items:        items,
			TotalAmount:  total,
			Status:       SaleStatusUnpaid,
			SaleType:     SaleTypeCredit,
			National:     true,
			Currency:     order.Currency,
			Comments:     order.Comments,
			Location:     order.Location,
			OrderID:      &order.ID,
			CreatedBy:    createdBy,
		}

		id, err = insertSaleWithChildren(ctx, tx, sale)
		if err != nil {
			return err
		}

		return completeOrderLink(ctx, tx, order, id, items)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetSale(ctx, id)
}

// UpdateSale applies a partial update. Replacing items recomputes the total
// and the payment status against the unchanged payment history, and a linked
// order's fulfillment is re-evaluated against the new items.
func (s *Service) UpdateSale(ctx context.Context, id int64, req UpdateSaleRequest) (*Sale, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.ClientID != nil {
			sale.ClientID = *req.ClientID
		}
		if req.SaleNumber != nil && *req.SaleNumber != "" {
			sale.SaleNumber = *req.SaleNumber
		}
		if req.SaleDate != nil {
			sale.SaleDate = *req.SaleDate
		}
		if req.SaleType != nil {
			sale.SaleType = *req.SaleType
		}
		if req.National != nil {
			sale.National = *req.National
		}
		if req.Currency != nil {
			sale.Currency = *req.Currency
		}
		if req.Comments != nil {
			sale.Comments = req.Comments
		}
		if req.Location != nil {
			sale.Location = req.Location
		}

		if req.Items != nil {
			items := itemsFromRequests(*req.Items)
			total, err := LineItemsTotal(items)
			if err != nil {
				return err
			}
			if err := tx.ReplaceSaleItems(ctx, id, items); err != nil {
				return err
			}
			sale.Items = items
			sale.TotalAmount = total
		}

		sale.Status = DeriveStatus(sale.TotalAmount, sale.AmountPaid())
		if err := tx.UpdateSaleHeader(ctx, *sale); err != nil {
			return err
		}

		return refreshLinkedFulfillment(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetSale(ctx, id)
}

// UpdateSaleItems replaces a sale's items wholesale.
func (s *Service) UpdateSaleItems(ctx context.Context, id int64, items []LineItemRequest) (*Sale, error) {
	return s.UpdateSale(ctx, id, UpdateSaleRequest{Items: &items})
}

// GetSale retrieves a sale with its items and payments.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns a filtered, paginated sale listing.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return s.repo.ListSales(ctx, req)
}

// FindSalesByClient returns every sale recorded for a client.
func (s *Service) FindSalesByClient(ctx context.Context, clientID int64) ([]Sale, error) {
	return s.repo.FindSalesByClient(ctx, clientID)
}

// DeleteSale removes a sale. A linked order is reset to PENDING/UNFULFILLED
// with its sale reference cleared before the sale record goes away.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if sale.OrderID != nil {
			order, err := tx.GetOrderForUpdate(ctx, *sale.OrderID)
			if err == nil {
				unfulfilled := FulfillmentUnfulfilled
				order.Status = OrderStatusPending
				order.Fulfillment = &unfulfilled
				order.SaleID = nil
				if err := tx.UpdateOrderHeader(ctx, *order); err != nil {
					return fmt.Errorf("unlink order: %w", err)
				}
			} else if !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("load linked order: %w", err)
			}
		}

		return tx.DeleteSaleRecord(ctx, id)
	})
}

// ============================================================================
// LEDGER OPERATIONS
// ============================================================================

// RecordPayment appends a payment to a sale's ledger and recomputes the
// payment status. Insertion is serialized per sale: the sale row is locked for
// the duration of the transaction, and an optional Redis advisory lock guards
// callers that bypass the database.
func (s *Service) RecordPayment(ctx context.Context, saleID int64, req RecordPaymentRequest) (*Sale, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount=%v", ErrInvalidPayment, req.Amount)
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, shared.SaleLockKey(saleID))
		if err != nil {
			return nil, fmt.Errorf("record payment: %w", err)
		}
		defer release()
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		if sale.AmountPaid()+req.Amount > sale.TotalAmount {
			return fmt.Errorf("%w: paid=%v amount=%v total=%v",
				ErrOverpayment, sale.AmountPaid(), req.Amount, sale.TotalAmount)
		}

		payment := Payment{Date: req.Date, Amount: req.Amount, Comments: req.Comments}
		if _, err := tx.InsertPayment(ctx, saleID, payment); err != nil {
			return err
		}

		sale.Payments = append(sale.Payments, payment)
		sale.Status = DeriveStatus(sale.TotalAmount, sale.AmountPaid())
		if err := tx.UpdateSaleHeader(ctx, *sale); err != nil {
			return err
		}

		// Fulfillment depends on items, not payments, so this re-evaluation is
		// an idempotent resave of the linked order.
		return refreshLinkedFulfillment(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetSale(ctx, saleID)
}

// DeletePayment removes a payment from a sale's ledger and recomputes the
// payment status.
func (s *Service) DeletePayment(ctx context.Context, saleID, paymentID int64) (*Sale, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		if err := tx.DeletePaymentRecord(ctx, saleID, paymentID); err != nil {
			return err
		}

		remaining := sale.Payments[:0:0]
		for _, p := range sale.Payments {
			if p.ID != paymentID {
				remaining = append(remaining, p)
			}
		}
		sale.Payments = remaining
		sale.Status = DeriveStatus(sale.TotalAmount, sale.AmountPaid())
		return tx.UpdateSaleHeader(ctx, *sale)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetSale(ctx, saleID)
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Service) generateSaleNumber() string {
	return fmt.Sprintf("VENTA-%d", s.now().UnixNano())
}

func itemsFromRequests(reqs []LineItemRequest) []LineItem {
	items := make([]LineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, LineItem{
			ProductID:   r.ProductID,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		})
	}
	return items
}

func copyItems(items []LineItem) []LineItem {
	copied := make([]LineItem, 0, len(items))
	for _, item := range items {
		copied = append(copied, LineItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return copied
}

// insertSaleWithChildren persists a sale header with its items and any
// initial payments.
func insertSaleWithChildren(ctx context.Context, tx TxRepository, sale Sale) (int64, error) {
	id, err := tx.InsertSale(ctx, sale)
	if err != nil {
		return 0, err
	}
	if err := tx.ReplaceSaleItems(ctx, id, sale.Items); err != nil {
		return 0, err
	}
	for _, payment := range sale.Payments {
		if _, err := tx.InsertPayment(ctx, id, payment); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// completeOrderLink finishes the order side of a link: status COMPLETED,
// fulfillment evaluated against the sale items, sale reference set. A failure
// here rolls the whole transaction back; it is still surfaced as
// ErrPartialLink so callers alert instead of retrying.
func completeOrderLink(ctx context.Context, tx TxRepository, order *Order, saleID int64, saleItems []LineItem) error {
	fulfillment := EvaluateFulfillment(order.Items, saleItems)
	order.Status = OrderStatusCompleted
	order.SaleID = &saleID
	order.Fulfillment = &fulfillment
	if err := tx.UpdateOrderHeader(ctx, *order); err != nil {
		return fmt.Errorf("%w: %v", ErrPartialLink, err)
	}
	return nil
}

// refreshLinkedFulfillment re-evaluates and persists the fulfillment of the
// order linked to sale, when one exists.
func refreshLinkedFulfillment(ctx context.Context, tx TxRepository, sale *Sale) error {
	if sale.OrderID == nil {
		return nil
	}
	order, err := tx.GetOrderForUpdate(ctx, *sale.OrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load linked order: %w", err)
	}
	fulfillment := EvaluateFulfillment(order.Items, sale.Items)
	order.Fulfillment = &fulfillment
	return tx.UpdateOrderHeader(ctx, *order)
}
