package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront-backend/internal/models"
)

type OrderQueries struct {
	db *sql.DB
}

func NewOrderQueries(db *sql.DB) *OrderQueries {
	return &OrderQueries{db: db}
}

const orderColumns = `id, user_id, session_id, full_name, email, phone, address, zip_code,
		payment_method, upi_id, status, subtotal, shipping_cost, total_amount, created_at, updated_at`

// CreateOrder stores an order, its items and the initial status event in a
// transaction. The order id is assigned by the caller.
func (q *OrderQueries) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, user_id, session_id, full_name, email, phone, address, zip_code,
			payment_method, upi_id, status, subtotal, shipping_cost, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, orderQuery,
		order.ID, order.UserID, order.SessionID, order.FullName, order.Email, order.Phone,
		order.Address, order.ZipCode, order.PaymentMethod, order.UPIID, order.Status,
		order.Subtotal, order.ShippingCost, order.TotalAmount,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, line_id, product_id, name, image, attributes, unit_price, quantity, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for i := range order.Items {
		item := &order.Items[i]

		var attributes interface{}
		if len(item.Attributes) > 0 {
			raw, err := json.Marshal(item.Attributes)
			if err != nil {
				return fmt.Errorf("failed to marshal item attributes: %w", err)
			}
			attributes = string(raw)
		}

		err = tx.QueryRowContext(ctx, itemQuery,
			order.ID, item.LineID, item.ProductID, item.Name, nullString(item.Image), attributes,
			item.UnitPrice, item.Quantity, item.TotalPrice,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		item.OrderID = order.ID
	}

	if _, err := insertStatusEvent(ctx, tx, order.ID, order.Status, nil); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order with its items and status history
func (q *OrderQueries) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(q.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Items, err = q.getOrderItems(ctx, id); err != nil {
		return nil, err
	}
	if order.History, err = q.getStatusEvents(ctx, id); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders retrieves orders with pagination and filtering
func (q *OrderQueries) ListOrders(ctx context.Context, page, limit int, userID *int, status string) (*models.OrderListResponse, error) {
	offset := (page - 1) * limit

	var conditions []string
	var args []interface{}
	argIndex := 1

	if userID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *userID)
		argIndex++
	}
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	if err := q.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return &models.OrderListResponse{
		Orders: orders,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// GetOrdersByUserID retrieves orders for a specific user
func (q *OrderQueries) GetOrdersByUserID(ctx context.Context, userID, page, limit int) (*models.OrderListResponse, error) {
	return q.ListOrders(ctx, page, limit, &userID, "")
}

// UpdateOrderStatus sets an order's status and appends it to the history
func (q *OrderQueries) UpdateOrderStatus(ctx context.Context, id, status string, note *string) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	if _, err := insertStatusEvent(ctx, tx, id, status, note); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (q *OrderQueries) getOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, line_id, product_id, name, image, attributes, unit_price, quantity, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := q.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		var image sql.NullString
		var attributesJSON []byte
		err := rows.Scan(&item.ID, &item.OrderID, &item.LineID, &item.ProductID, &item.Name, &image,
			&attributesJSON, &item.UnitPrice, &item.Quantity, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Image = image.String
		if len(attributesJSON) > 0 {
			if err := json.Unmarshal(attributesJSON, &item.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item attributes: %w", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return items, nil
}

func (q *OrderQueries) getStatusEvents(ctx context.Context, orderID string) ([]models.OrderStatusEvent, error) {
	query := `
		SELECT id, order_id, status, note, created_at
		FROM order_status_events
		WHERE order_id = $1
		ORDER BY created_at, id`

	rows, err := q.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	defer rows.Close()

	var events []models.OrderStatusEvent
	for rows.Next() {
		var ev models.OrderStatusEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.Status, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order history: %w", err)
	}
	return events, nil
}

func insertStatusEvent(ctx context.Context, tx *sql.Tx, orderID, status string, note *string) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx,
		`INSERT INTO order_status_events (order_id, status, note) VALUES ($1, $2, $3) RETURNING id`,
		orderID, status, note,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order status event: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &o.FullName, &o.Email, &o.Phone, &o.Address,
		&o.ZipCode, &o.PaymentMethod, &o.UPIID, &o.Status, &o.Subtotal, &o.ShippingCost,
		&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
