package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for orders and sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the write operations available inside a transaction.
type TxRepository interface {
	GetOrderForUpdate(ctx context.Context, id int64) (*Order, error)
	InsertOrder(ctx context.Context, order Order) (int64, error)
	ReplaceOrderItems(ctx context.Context, orderID int64, items []LineItem) error
	UpdateOrderHeader(ctx context.Context, order Order) error
	DeleteOrderRecord(ctx context.Context, id int64) error

	GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	ReplaceSaleItems(ctx context.Context, saleID int64, items []LineItem) error
	UpdateSaleHeader(ctx context.Context, sale Sale) error
	DeleteSaleRecord(ctx context.Context, id int64) error

	InsertPayment(ctx context.Context, saleID int64, payment Payment) (int64, error)
	DeletePaymentRecord(ctx context.Context, saleID, paymentID int64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("sales: begin tx: %w", err)
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ============================================================================
// ORDER READS
// ============================================================================

const orderColumns = `
	id, client_id, delivery_date, location, comments, priority, status,
	fulfillment_status, sale_id, currency, created_by, created_at, updated_at`

// GetOrder loads an order with its items.
func (r *Repository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return getOrder(ctx, r.pool, id, "")
}

func getOrder(ctx context.Context, q queryer, id int64, suffix string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1` + suffix
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	items, err := loadLineItems(ctx, q, "order_items", "order_id", order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var location, comments pgtype.Text
	var fulfillment pgtype.Text
	var saleID pgtype.Int8
	err := row.Scan(
		&o.ID, &o.ClientID, &o.DeliveryDate, &location, &comments,
		&o.Priority, &o.Status, &fulfillment, &saleID, &o.Currency,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sales: scan order: %w", err)
	}
	if location.Valid {
		o.Location = &location.String
	}
	if comments.Valid {
		o.Comments = &comments.String
	}
	if fulfillment.Valid {
		fs := FulfillmentStatus(fulfillment.String)
		o.Fulfillment = &fs
	}
	if saleID.Valid {
		o.SaleID = &saleID.Int64
	}
	return &o, nil
}

// ListOrders returns orders newest first, with optional filters.
func (r *Repository) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	idx := 1
	if req.ClientID != nil {
		where += fmt.Sprintf(" AND client_id = $%d", idx)
		args = append(args, *req.ClientID)
		idx++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *req.Status)
		idx++
	}
	if req.Priority != nil {
		where += fmt.Sprintf(" AND priority = $%d", idx)
		args = append(args, *req.Priority)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sales: count orders: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sales: list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sales: list orders rows: %w", err)
	}

	for i := range orders {
		items, err := loadLineItems(ctx, r.pool, "order_items", "order_id", orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// ============================================================================
// SALE READS
// ============================================================================

const saleColumns = `
	id, client_id, sale_number, sale_date, recorded_date, total_amount, status,
	sale_type, national, currency, comments, location, order_id, created_by,
	created_at, updated_at`

// GetSale loads a sale with its items and payments.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return getSale(ctx, r.pool, id, "")
}

func getSale(ctx context.Context, q queryer, id int64, suffix string) (*Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1` + suffix
	sale, err := scanSale(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := attachSaleChildren(ctx, q, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var comments, location pgtype.Text
	var orderID pgtype.Int8
	err := row.Scan(
		&s.ID, &s.ClientID, &s.SaleNumber, &s.SaleDate, &s.RecordedDate,
		&s.TotalAmount, &s.Status, &s.SaleType, &s.National, &s.Currency,
		&comments, &location, &orderID, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sales: scan sale: %w", err)
	}
	if comments.Valid {
		s.Comments = &comments.String
	}
	if location.Valid {
		s.Location = &location.String
	}
	if orderID.Valid {
		s.OrderID = &orderID.Int64
	}
	return &s, nil
}

func attachSaleChildren(ctx context.Context, q queryer, sale *Sale) error {
	items, err := loadLineItems(ctx, q, "sale_items", "sale_id", sale.ID)
	if err != nil {
		return err
	}
	sale.Items = items

	rows, err := q.Query(ctx,
		`SELECT id, paid_at, amount, comments FROM sale_payments WHERE sale_id = $1 ORDER BY id`,
		sale.ID)
	if err != nil {
		return fmt.Errorf("sales: load payments: %w", err)
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		var p Payment
		var comments pgtype.Text
		if err := rows.Scan(&p.ID, &p.Date, &p.Amount, &comments); err != nil {
			return fmt.Errorf("sales: scan payment: %w", err)
		}
		if comments.Valid {
			p.Comments = &comments.String
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sales: payment rows: %w", err)
	}
	sale.Payments = payments
	return nil
}

// ListSales returns sales newest first, with optional filters.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	idx := 1
	if req.ClientID != nil {
		where += fmt.Sprintf(" AND client_id = $%d", idx)
		args = append(args, *req.ClientID)
		idx++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *req.Status)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sales: count sales: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + saleColumns + ` FROM sales` + where +
		fmt.Sprintf(" ORDER BY recorded_date DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sales: list sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sales: list sales rows: %w", err)
	}

	for i := range sales {
		if err := attachSaleChildren(ctx, r.pool, &sales[i]); err != nil {
			return nil, 0, err
		}
	}
	return sales, total, nil
}

// FindSalesByClient returns every sale recorded for the given client.
func (r *Repository) FindSalesByClient(ctx context.Context, clientID int64) ([]Sale, error) {
	sales, _, err := r.ListSales(ctx, ListSalesRequest{ClientID: &clientID, Limit: 1000})
	return sales, err
}

// ============================================================================
// SHARED HELPERS
// ============================================================================

func loadLineItems(ctx context.Context, q queryer, table, fk string, ownerID int64) ([]LineItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, product_id, description, quantity, unit_price FROM `+table+
			` WHERE `+fk+` = $1 ORDER BY line_order, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("sales: load %s: %w", table, err)
	}
	defer rows.Close()

	items := []LineItem{}
	for rows.Next() {
		var item LineItem
		var productID pgtype.Int8
		if err := rows.Scan(&item.ID, &productID, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("sales: scan %s: %w", table, err)
		}
		if productID.Valid {
			item.ProductID = &productID.Int64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales: %s rows: %w", table, err)
	}
	return items, nil
}

func replaceLineItems(ctx context.Context, q queryer, table, fk string, ownerID int64, items []LineItem) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE `+fk+` = $1`, ownerID); err != nil {
		return fmt.Errorf("sales: clear %s: %w", table, err)
	}
	for i, item := range items {
		var productID pgtype.Int8
		if item.ProductID != nil {
			productID = pgtype.Int8{Int64: *item.ProductID, Valid: true}
		}
		_, err := q.Exec(ctx,
			`INSERT INTO `+table+` (`+fk+`, product_id, description, quantity, unit_price, line_order)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ownerID, productID, item.Description, item.Quantity, item.UnitPrice, i+1)
		if err != nil {
			return fmt.Errorf("sales: insert %s: %w", table, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ============================================================================
// TRANSACTIONAL WRITES
// ============================================================================

func (t *txRepo) GetOrderForUpdate(ctx context.Context, id int64) (*Order, error) {
	return getOrder(ctx, t.tx, id, " FOR UPDATE")
}

func (t *txRepo) InsertOrder(ctx context.Context, order Order) (int64, error) {
	var location, comments pgtype.Text
	if order.Location != nil {
		location = pgtype.Text{String: *order.Location, Valid: true}
	}
	if order.Comments != nil {
		comments = pgtype.Text{String: *order.Comments, Valid: true}
	}

	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO orders (client_id, delivery_date, location, comments, priority, status, currency, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		 RETURNING id`,
		order.ClientID, order.DeliveryDate, location, comments,
		order.Priority, order.Status, order.Currency, order.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sales: insert order: %w", err)
	}
	return id, nil
}

func (t *txRepo) ReplaceOrderItems(ctx context.Context, orderID int64, items []LineItem) error {
	return replaceLineItems(ctx, t.tx, "order_items", "order_id", orderID, items)
}

func (t *txRepo) UpdateOrderHeader(ctx context.Context, order Order) error {
	var location, comments, fulfillment pgtype.Text
	var saleID pgtype.Int8
	if order.Location != nil {
		location = pgtype.Text{String: *order.Location, Valid: true}
	}
	if order.Comments != nil {
		comments = pgtype.Text{String: *order.Comments, Valid: true}
	}
	if order.Fulfillment != nil {
		fulfillment = pgtype.Text{String: string(*order.Fulfillment), Valid: true}
	}
	if order.SaleID != nil {
		saleID = pgtype.Int8{Int64: *order.SaleID, Valid: true}
	}

	tag, err := t.tx.Exec(ctx,
		`UPDATE orders SET
			client_id = $2, delivery_date = $3, location = $4, comments = $5,
			priority = $6, status = $7, fulfillment_status = $8, sale_id = $9,
			currency = $10, updated_at = NOW()
		 WHERE id = $1`,
		order.ID, order.ClientID, order.DeliveryDate, location, comments,
		order.Priority, order.Status, fulfillment, saleID, order.Currency)
	if err != nil {
		return fmt.Errorf("sales: update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) DeleteOrderRecord(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("sales: delete order items: %w", err)
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sales: delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error) {
	return getSale(ctx, t.tx, id, " FOR UPDATE")
}

func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var comments, location pgtype.Text
	var orderID pgtype.Int8
	if sale.Comments != nil {
		comments = pgtype.Text{String: *sale.Comments, Valid: true}
	}
	if sale.Location != nil {
		location = pgtype.Text{String: *sale.Location, Valid: true}
	}
	if sale.OrderID != nil {
		orderID = pgtype.Int8{Int64: *sale.OrderID, Valid: true}
	}

	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (client_id, sale_number, sale_date, recorded_date, total_amount, status, sale_type, national, currency, comments, location, order_id, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		 RETURNING id`,
		sale.ClientID, sale.SaleNumber, sale.SaleDate, sale.RecordedDate,
		sale.TotalAmount, sale.Status, sale.SaleType, sale.National,
		sale.Currency, comments, location, orderID, sale.CreatedBy,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateNumber
		}
		return 0, fmt.Errorf("sales: insert sale: %w", err)
	}
	return id, nil
}

func (t *txRepo) ReplaceSaleItems(ctx context.Context, saleID int64, items []LineItem) error {
	return replaceLineItems(ctx, t.tx, "sale_items", "sale_id", saleID, items)
}

func (t *txRepo) UpdateSaleHeader(ctx context.Context, sale Sale) error {
	var comments, location pgtype.Text
	var orderID pgtype.Int8
	if sale.Comments != nil {
		comments = pgtype.Text{String: *sale.Comments, Valid: true}
	}
	if sale.Location != nil {
		location = pgtype.Text{String: *sale.Location, Valid: true}
	}
	if sale.OrderID != nil {
		orderID = pgtype.Int8{Int64: *sale.OrderID, Valid: true}
	}

	tag, err := t.tx.Exec(ctx,
		`UPDATE sales SET
			client_id = $2, sale_number = $3, sale_date = $4, total_amount = $5,
			status = $6, sale_type = $7, national = $8, currency = $9,
			comments = $10, location = $11, order_id = $12, updated_at = NOW()
		 WHERE id = $1`,
		sale.ID, sale.ClientID, sale.SaleNumber, sale.SaleDate, sale.TotalAmount,
		sale.Status, sale.SaleType, sale.National, sale.Currency,
		comments, location, orderID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("sales: update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) DeleteSaleRecord(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM sale_payments WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("sales: delete sale payments: %w", err)
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("sales: delete sale items: %w", err)
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sales: delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) InsertPayment(ctx context.Context, saleID int64, payment Payment) (int64, error) {
	var comments pgtype.Text
	if payment.Comments != nil {
		comments = pgtype.Text{String: *payment.Comments, Valid: true}
	}
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sale_payments (sale_id, paid_at, amount, comments, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id`,
		saleID, payment.Date, payment.Amount, comments,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sales: insert payment: %w", err)
	}
	return id, nil
}

func (t *txRepo) DeletePaymentRecord(ctx context.Context, saleID, paymentID int64) error {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM sale_payments WHERE id = $1 AND sale_id = $2`, paymentID, saleID)
	if err != nil {
		return fmt.Errorf("sales: delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
