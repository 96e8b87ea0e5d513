package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

const orderColumns = `id, order_number, user_id, user_email, subtotal, tax, total, currency,
	payment_method, payment_instructions, wallet_deduction, status,
	delivered_type, delivered_data, delivered_extra, created_at, updated_at, version`

type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func scanOrder(scanner interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	var deliveredType, deliveredData, deliveredExtra sql.NullString

	err := scanner.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.UserEmail,
		&order.Subtotal,
		&order.Tax,
		&order.Total,
		&order.Currency,
		&order.PaymentMethod,
		&order.PaymentInstructions,
		&order.WalletDeduction,
		&order.Status,
		&deliveredType,
		&deliveredData,
		&deliveredExtra,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return nil, err
	}

	if deliveredType.Valid {
		order.DeliveredAsset = &models.DeliveryPayload{
			Type:      models.AssetType(deliveredType.String),
			Data:      deliveredData.String,
			ExtraInfo: deliveredExtra.String,
		}
	}

	return order, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := loadOrderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetOrderForUpdateTx reads an order with a row lock so status checks and
// the subsequent write happen against a stable row.
func GetOrderForUpdateTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	items, err := loadOrderItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func loadOrderItems(ctx context.Context, q rowQuerier, orderID int64) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, product_image, quantity, unit_price, subtotal, created_at
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// InsertOrderTx persists a new order and its line items, filling in the
// generated id and timestamps.
func InsertOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (order_number, user_id, user_email, subtotal, tax, total, currency,
		                     payment_method, payment_instructions, wallet_deduction, status,
		                     created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW(), 1)
		 RETURNING id, created_at, updated_at, version`,
		order.OrderNumber, order.UserID, order.UserEmail,
		order.Subtotal, order.Tax, order.Total, order.Currency,
		order.PaymentMethod, order.PaymentInstructions, order.WalletDeduction,
		order.Status).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Version)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, product_image, quantity, unit_price, subtotal, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			 RETURNING id, created_at`,
			item.OrderID, item.ProductID, item.ProductName, item.ProductImage,
			item.Quantity, item.UnitPrice, item.Subtotal).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	return nil
}

// MarkDeliveredTx attaches the delivered payload and completes the order
// in one write, keeping the completed <-> delivered-asset invariant.
func MarkDeliveredTx(ctx context.Context, tx *sql.Tx, orderID int64, payload models.DeliveryPayload) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, delivered_type = $2, delivered_data = $3, delivered_extra = $4,
		     updated_at = NOW(), version = version + 1
		 WHERE id = $5`,
		models.OrderStatusCompleted, payload.Type, payload.Data, payload.ExtraInfo, orderID)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

// MarkRefundedTx transitions to refunded only if the order is not already
// refunded, returning the owner and total for the wallet credit. The
// conditional write is the double-credit guard.
func MarkRefundedTx(ctx context.Context, tx *sql.Tx, orderID int64) (*models.Order, error) {
	row := tx.QueryRowContext(ctx,
		`UPDATE orders
		 SET status = $1, updated_at = NOW(), version = version + 1
		 WHERE id = $2 AND status <> $1
		 RETURNING `+orderColumns,
		models.OrderStatusRefunded, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if checkErr := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`,
				orderID).Scan(&exists); checkErr != nil {
				return nil, fmt.Errorf("check order exists: %w", checkErr)
			}
			if !exists {
				return nil, database.ErrOrderNotFound
			}
			return nil, database.ErrAlreadyRefunded
		}
		return nil, fmt.Errorf("mark refunded: %w", err)
	}

	return order, nil
}

func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID int64, status models.OrderStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, updated_at = NOW(), version = version + 1
		 WHERE id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		   AND (created_at, id) < ($2, $3)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $4`,
		userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOrderPage(orders, limit), nil
}

func ListOrders(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(orders, total, page, pageSize), nil
}
