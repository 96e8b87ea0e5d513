package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

type ProductInput struct {
	SKU          string
	Name         string
	Description  string
	Image        string
	CategoryID   *int64
	Price        decimal.Decimal
	DeliveryMode models.DeliveryMode
}

const productColumns = `id, sku, name, description, image, category_id, price, delivery_mode, created_at, updated_at, version`

func scanProduct(scanner interface{ Scan(...interface{}) error }) (*models.Product, error) {
	product := &models.Product{}
	var categoryID sql.NullInt64

	err := scanner.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.Image,
		&categoryID,
		&product.Price,
		&product.DeliveryMode,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		product.CategoryID = &categoryID.Int64
	}

	return product, nil
}

func CreateProduct(ctx context.Context, db *sql.DB, input ProductInput) (*models.Product, error) {
	if input.DeliveryMode == "" {
		input.DeliveryMode = models.DeliveryModeManual
	}

	row := db.QueryRowContext(ctx,
		`INSERT INTO products (sku, name, description, image, category_id, price, delivery_mode, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW(), 1)
		 RETURNING `+productColumns,
		input.SKU, input.Name, input.Description, input.Image, input.CategoryID,
		input.Price, input.DeliveryMode)

	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// GetProductTx reads a product inside the checkout transaction so line
// item prices and snapshots are consistent with the order totals.
func GetProductTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// UpdateProductOptimistic applies admin edits guarded by the record
// version, failing with ErrOptimisticLockFailed on a concurrent edit.
func UpdateProductOptimistic(ctx context.Context, db *sql.DB, id int64, input ProductInput, version int) (*models.Product, error) {
	row := db.QueryRowContext(ctx,
		`UPDATE products
		 SET sku = $1, name = $2, description = $3, image = $4, category_id = $5,
		     price = $6, delivery_mode = $7, updated_at = NOW(), version = version + 1
		 WHERE id = $8 AND version = $9
		 RETURNING `+productColumns,
		input.SKU, input.Name, input.Description, input.Image, input.CategoryID,
		input.Price, input.DeliveryMode, id, version)

	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := GetProduct(ctx, db, id); getErr != nil {
				return nil, getErr
			}
			return nil, database.ErrOptimisticLockFailed
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(products, total, page, pageSize), nil
}

func ListProductsByCategory(ctx context.Context, db *sql.DB, categoryID int64) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE category_id = $1
		 ORDER BY name`,
		categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
