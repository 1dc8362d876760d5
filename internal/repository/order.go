package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/daffodils/florist-api/internal/model"
)

// StatusAgg is one row of the per-status order rollup.
type StatusAgg struct {
	Status     model.OrderStatus
	Count      int
	TotalValue decimal.Decimal
}

// MonthlyAgg is one month of the trailing revenue rollup.
type MonthlyAgg struct {
	Year    int
	Month   int
	Revenue decimal.Decimal
	Orders  int
}

type OrderRepository interface {
	// Create inserts the order and its line items. It joins the transaction
	// carried by ctx, if any.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, int, error)
	Update(ctx context.Context, order *model.Order) error
	AppendStatusChange(ctx context.Context, change *model.StatusChange) error
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	StatusBreakdown(ctx context.Context) ([]StatusAgg, error)
	PaymentBreakdown(ctx context.Context) (map[model.PaymentStatus]int, error)
	// Revenue sums order totals excluding cancelled orders.
	Revenue(ctx context.Context) (decimal.Decimal, error)
	MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyAgg, error)
	Recent(ctx context.Context, limit int) ([]model.Order, error)
}

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone,
	delivery_address, delivery_date, delivery_time_slot, delivery_instructions, is_express,
	is_gift, gift_message, gift_recipient,
	subtotal, delivery_fee, tax, total,
	status, payment_status, payment_method, notes, tracking_number, admin_notes,
	created_at, updated_at`

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	q := queryFrom(ctx, r.pool)

	order.ID = uuid.New()
	err := q.QueryRow(ctx,
		`INSERT INTO orders (id, order_number, customer_name, customer_email, customer_phone,
			delivery_address, delivery_date, delivery_time_slot, delivery_instructions, is_express,
			is_gift, gift_message, gift_recipient,
			subtotal, delivery_fee, tax, total,
			status, payment_status, payment_method, notes, tracking_number, admin_notes,
			created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,NOW(),NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.OrderNumber,
		order.CustomerInfo.Name, order.CustomerInfo.Email, order.CustomerInfo.Phone,
		order.DeliveryInfo.Address, order.DeliveryInfo.Date, order.DeliveryInfo.TimeSlot,
		order.DeliveryInfo.Instructions, order.DeliveryInfo.IsExpress,
		order.GiftInfo.IsGift, order.GiftInfo.Message, order.GiftInfo.RecipientName,
		order.Pricing.Subtotal, order.Pricing.DeliveryFee, order.Pricing.Tax, order.Pricing.Total,
		order.Status, order.PaymentStatus, order.PaymentMethod,
		order.Notes, order.TrackingNumber, order.AdminNotes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("insert order %s: %w", order.OrderNumber, ErrDuplicateOrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		_, err = q.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, price, image, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.Items[i].ID, order.ID, order.Items[i].ProductID,
			order.Items[i].Name, order.Items[i].Price, order.Items[i].Image, order.Items[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	q := queryFrom(ctx, r.pool)

	order := &model.Order{}
	err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, q, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	history, err := r.loadHistory(ctx, q, order.ID)
	if err != nil {
		return nil, err
	}
	order.StatusHistory = history
	return order, nil
}

var orderSortColumns = map[string]string{
	"createdAt":   "created_at",
	"total":       "total",
	"status":      "status",
	"orderNumber": "order_number",
}

func (r *pgOrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	q := queryFrom(ctx, r.pool)

	sort, ok := orderSortColumns[f.SortBy]
	if !ok {
		sort = "created_at"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	where := `WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR payment_status = $2)
		AND ($3 = '' OR order_number ILIKE '%' || $3 || '%'
			OR customer_name ILIKE '%' || $3 || '%'
			OR customer_email ILIKE '%' || $3 || '%')
		AND ($4::timestamptz IS NULL OR created_at >= $4)
		AND ($5::timestamptz IS NULL OR created_at <= $5)`
	args := []any{f.Status, f.PaymentStatus, f.Search, f.DateFrom, f.DateTo}

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY %s %s LIMIT $6 OFFSET $7`,
		orderColumns, where, sort, order)
	rows, err := q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	var ids []uuid.UUID
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := r.loadItems(ctx, q, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return orders, total, nil
}

func (r *pgOrderRepo) Update(ctx context.Context, order *model.Order) error {
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`UPDATE orders SET status=$2, payment_status=$3, notes=$4, tracking_number=$5,
			admin_notes=$6, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		order.ID, order.Status, order.PaymentStatus, order.Notes,
		order.TrackingNumber, order.AdminNotes,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) AppendStatusChange(ctx context.Context, change *model.StatusChange) error {
	change.ID = uuid.New()
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO order_status_history (id, order_id, status, notes, updated_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
		change.ID, change.OrderID, change.Status, change.Notes, change.UpdatedBy,
	).Scan(&change.Timestamp)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := queryFrom(ctx, r.pool).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgOrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := queryFrom(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *pgOrderRepo) CountByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	var n int
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders by status: %w", err)
	}
	return n, nil
}

func (r *pgOrderRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders since: %w", err)
	}
	return n, nil
}

func (r *pgOrderRepo) StatusBreakdown(ctx context.Context) ([]StatusAgg, error) {
	rows, err := queryFrom(ctx, r.pool).Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	defer rows.Close()

	var out []StatusAgg
	for rows.Next() {
		var agg StatusAgg
		if err := rows.Scan(&agg.Status, &agg.Count, &agg.TotalValue); err != nil {
			return nil, fmt.Errorf("scan status breakdown: %w", err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

func (r *pgOrderRepo) PaymentBreakdown(ctx context.Context) (map[model.PaymentStatus]int, error) {
	rows, err := queryFrom(ctx, r.pool).Query(ctx,
		`SELECT payment_status, COUNT(*) FROM orders GROUP BY payment_status`)
	if err != nil {
		return nil, fmt.Errorf("payment breakdown: %w", err)
	}
	defer rows.Close()

	out := make(map[model.PaymentStatus]int)
	for rows.Next() {
		var ps model.PaymentStatus
		var n int
		if err := rows.Scan(&ps, &n); err != nil {
			return nil, fmt.Errorf("scan payment breakdown: %w", err)
		}
		out[ps] = n
	}
	return out, rows.Err()
}

func (r *pgOrderRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> 'cancelled'`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("revenue: %w", err)
	}
	return total, nil
}

func (r *pgOrderRepo) MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyAgg, error) {
	rows, err := queryFrom(ctx, r.pool).Query(ctx,
		`SELECT EXTRACT(YEAR FROM created_at)::int, EXTRACT(MONTH FROM created_at)::int,
			COALESCE(SUM(total), 0), COUNT(*)
		 FROM orders
		 WHERE created_at >= $1 AND status <> 'cancelled'
		 GROUP BY 1, 2 ORDER BY 1, 2`, since)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	var out []MonthlyAgg
	for rows.Next() {
		var agg MonthlyAgg
		if err := rows.Scan(&agg.Year, &agg.Month, &agg.Revenue, &agg.Orders); err != nil {
			return nil, fmt.Errorf("scan monthly revenue: %w", err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

func (r *pgOrderRepo) Recent(ctx context.Context, limit int) ([]model.Order, error) {
	orders, _, err := r.List(ctx, OrderFilter{Limit: limit, SortBy: "createdAt", SortOrder: "desc"})
	return orders, err
}

func (r *pgOrderRepo) loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT i.id, i.order_id, i.product_id, i.name, i.price, i.image, i.quantity,
			p.name, p.price, p.image, p.in_stock, p.stock_quantity
		 FROM order_items i
		 LEFT JOIN products p ON p.id = i.product_id
		 WHERE i.order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.OrderItem)
	for rows.Next() {
		var item model.OrderItem
		var pName, pImage *string
		var pPrice *decimal.Decimal
		var pInStock *bool
		var pStock *int
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price,
			&item.Image, &item.Quantity, &pName, &pPrice, &pImage, &pInStock, &pStock)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if pName != nil {
			item.Product = &model.Product{
				ID:            item.ProductID,
				Name:          *pName,
				Price:         *pPrice,
				Image:         *pImage,
				InStock:       *pInStock,
				StockQuantity: *pStock,
			}
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, rows.Err()
}

func (r *pgOrderRepo) loadHistory(ctx context.Context, q querier, orderID uuid.UUID) ([]model.StatusChange, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_id, status, notes, updated_by, created_at
		 FROM order_status_history WHERE order_id = $1 ORDER BY created_at ASC, id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	defer rows.Close()

	var history []model.StatusChange
	for rows.Next() {
		var sc model.StatusChange
		if err := rows.Scan(&sc.ID, &sc.OrderID, &sc.Status, &sc.Notes, &sc.UpdatedBy, &sc.Timestamp); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		history = append(history, sc)
	}
	return history, rows.Err()
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber,
		&o.CustomerInfo.Name, &o.CustomerInfo.Email, &o.CustomerInfo.Phone,
		&o.DeliveryInfo.Address, &o.DeliveryInfo.Date, &o.DeliveryInfo.TimeSlot,
		&o.DeliveryInfo.Instructions, &o.DeliveryInfo.IsExpress,
		&o.GiftInfo.IsGift, &o.GiftInfo.Message, &o.GiftInfo.RecipientName,
		&o.Pricing.Subtotal, &o.Pricing.DeliveryFee, &o.Pricing.Tax, &o.Pricing.Total,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.Notes, &o.TrackingNumber, &o.AdminNotes,
		&o.CreatedAt, &o.UpdatedAt,
	)
}
