package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/platemate/platemate/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// SortField values accepted by List. Anything else falls back to created_at.
const (
	SortByCreatedAt = "created_at"
	SortByTotal     = "total"
)

type ListFilter struct {
	CustomerID uuid.UUID
	Status     *domain.OrderStatus
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// Create persists the order and its line items in a single transaction.
// Either the whole order exists afterwards or nothing does.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_id, restaurant_id, status,
			subtotal, delivery_fee, tax, discount, total,
			street, city, state, zip, latitude, longitude,
			payment_method, payment_status, special_instructions,
			estimated_delivery_time, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21)
	`,
		order.ID, order.OrderNumber, order.CustomerID, order.RestaurantID, order.Status,
		order.Pricing.Subtotal, order.Pricing.DeliveryFee, order.Pricing.Tax, order.Pricing.Discount, order.Pricing.Total,
		order.DeliveryAddress.Street, order.DeliveryAddress.City, order.DeliveryAddress.State, order.DeliveryAddress.Zip,
		order.DeliveryAddress.Latitude, order.DeliveryAddress.Longitude,
		order.PaymentMethod, order.PaymentStatus, order.SpecialInstructions,
		order.EstimatedDeliveryTime, order.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, position, menu_item_id, name, description, category,
				images, unit_price, quantity, customizations, subtotal
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			uuid.New(), order.ID, i, item.MenuItemID, item.Name, item.Description, item.Category,
			pq.Array(item.Images), item.UnitPrice, item.Quantity, pq.Array(item.Customizations), item.Subtotal,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetForCustomer fetches an order scoped to its owner. A valid id owned by
// someone else returns nil, indistinguishable from a missing order.
func (r *OrderRepository) GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*domain.Order, error) {
	return r.getOne(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND customer_id = $2
	`, orderID, customerID)
}

// GetByID fetches an order without an ownership scope, for restaurant and
// delivery actors advancing status.
func (r *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return r.getOne(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID)
}

// List returns one page of a customer's orders plus the total count before
// paging was applied.
func (r *OrderRepository) List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error) {
	where := "customer_id = $1"
	args := []any{filter.CustomerID}
	if filter.Status != nil {
		where += " AND status = $2"
		args = append(args, *filter.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := SortByCreatedAt
	if filter.SortBy == SortByTotal {
		sortBy = SortByTotal
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, sortBy, direction, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[uuid.UUID]*domain.Order)
	var orderIDs []uuid.UUID

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, total, nil
	}

	if err := r.loadItems(ctx, orderMap, orderIDs); err != nil {
		return nil, 0, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, total, nil
}

// Cancel performs the guarded transition to cancelled inside one statement,
// so a concurrent advance or repeat cancel loses cleanly. It reports whether
// a row actually changed; the caller derives which guard failed.
func (r *OrderRepository) Cancel(ctx context.Context, customerID, orderID uuid.UUID) (bool, error) {
	statuses := make([]string, 0, 3)
	for _, s := range domain.CancellableStatuses() {
		statuses = append(statuses, string(s))
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND customer_id = $3 AND status = ANY($4)
	`, domain.OrderStatusCancelled, orderID, customerID, pq.Array(statuses))
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// AdvanceStatus moves an order from one known status to the next, guarded by
// the expected current status.
func (r *OrderRepository) AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

const orderColumns = `
	id, order_number, customer_id, restaurant_id, status,
	subtotal, delivery_fee, tax, discount, total,
	street, city, state, zip, latitude, longitude,
	payment_method, payment_status, special_instructions,
	estimated_delivery_time, cancelled_at, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var status string
	var cancelledAt sql.NullTime

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.CustomerID, &order.RestaurantID, &status,
		&order.Pricing.Subtotal, &order.Pricing.DeliveryFee, &order.Pricing.Tax, &order.Pricing.Discount, &order.Pricing.Total,
		&order.DeliveryAddress.Street, &order.DeliveryAddress.City, &order.DeliveryAddress.State, &order.DeliveryAddress.Zip,
		&order.DeliveryAddress.Latitude, &order.DeliveryAddress.Longitude,
		&order.PaymentMethod, &order.PaymentStatus, &order.SpecialInstructions,
		&order.EstimatedDeliveryTime, &cancelledAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status, err = domain.ToOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		order.CancelledAt = &t
	}

	return order, nil
}

func (r *OrderRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	orderMap := map[uuid.UUID]*domain.Order{order.ID: order}
	if err := r.loadItems(ctx, orderMap, []uuid.UUID{order.ID}); err != nil {
		return nil, err
	}

	return order, nil
}

// loadItems attaches line items for a batch of orders in one query,
// preserving the position each line had in the original cart.
func (r *OrderRepository) loadItems(ctx context.Context, orderMap map[uuid.UUID]*domain.Order, orderIDs []uuid.UUID) error {
	ids := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, menu_item_id, name, description, category, images, unit_price, quantity, customizations, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var orderID uuid.UUID
		var item domain.OrderLineItem
		if err := rows.Scan(
			&orderID, &item.MenuItemID, &item.Name, &item.Description, &item.Category,
			pq.Array(&item.Images), &item.UnitPrice, &item.Quantity, pq.Array(&item.Customizations), &item.Subtotal,
		); err != nil {
			return err
		}
		if item.Images == nil {
			item.Images = []string{}
		}
		if item.Customizations == nil {
			item.Customizations = []string{}
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	return rows.Err()
}
