package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

func CreatePaymentMethod(ctx context.Context, db *sql.DB, name, instructions string) (*models.PaymentMethod, error) {
	method := &models.PaymentMethod{}

	err := db.QueryRowContext(ctx,
		`INSERT INTO payment_methods (name, instructions, active, created_at)
		 VALUES ($1, $2, TRUE, NOW())
		 RETURNING id, name, instructions, active, created_at`,
		name, instructions).Scan(&method.ID, &method.Name, &method.Instructions, &method.Active, &method.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create payment method: %w", err)
	}

	return method, nil
}

func GetPaymentMethodByName(ctx context.Context, db *sql.DB, name string) (*models.PaymentMethod, error) {
	method := &models.PaymentMethod{}

	err := db.QueryRowContext(ctx,
		`SELECT id, name, instructions, active, created_at
		 FROM payment_methods
		 WHERE name = $1`,
		name).Scan(&method.ID, &method.Name, &method.Instructions, &method.Active, &method.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}

	return method, nil
}

func ListPaymentMethods(ctx context.Context, db *sql.DB, activeOnly bool) ([]models.PaymentMethod, error) {
	query := `SELECT id, name, instructions, active, created_at FROM payment_methods ORDER BY name`
	if activeOnly {
		query = `SELECT id, name, instructions, active, created_at FROM payment_methods WHERE active ORDER BY name`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var method models.PaymentMethod
		if err := rows.Scan(&method.ID, &method.Name, &method.Instructions, &method.Active, &method.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, method)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return methods, nil
}

func SetPaymentMethodActive(ctx context.Context, db *sql.DB, id int64, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE payment_methods SET active = $1 WHERE id = $2`,
		active, id)
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrPaymentMethodNotFound
	}

	return nil
}
