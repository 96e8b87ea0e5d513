package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

type AddAssetRequest struct {
	ProductID int64
	Type      models.AssetType
	Key       string
	Username  string
	Password  string
	ExtraInfo string
}

func AddAsset(ctx context.Context, db *sql.DB, req AddAssetRequest) (*models.DigitalAsset, error) {
	asset := &models.DigitalAsset{
		ProductID: req.ProductID,
		Type:      req.Type,
		Key:       req.Key,
		Username:  req.Username,
		Password:  req.Password,
		ExtraInfo: req.ExtraInfo,
		Status:    models.AssetStatusAvailable,
	}
	if err := asset.ValidateStock(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO digital_assets (product_id, asset_type, asset_key, username, password, extra_info, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`

	err := db.QueryRowContext(ctx, query,
		req.ProductID, req.Type, req.Key, req.Username, req.Password, req.ExtraInfo,
		models.AssetStatusAvailable).Scan(&asset.ID, &asset.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add asset: %w", err)
	}

	return asset, nil
}

func scanAsset(scanner interface{ Scan(...interface{}) error }) (*models.DigitalAsset, error) {
	asset := &models.DigitalAsset{}
	var orderID sql.NullInt64
	var deliveredAt sql.NullTime

	err := scanner.Scan(
		&asset.ID,
		&asset.ProductID,
		&asset.Type,
		&asset.Key,
		&asset.Username,
		&asset.Password,
		&asset.ExtraInfo,
		&asset.Status,
		&orderID,
		&deliveredAt,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if orderID.Valid {
		asset.OrderID = &orderID.Int64
	}
	if deliveredAt.Valid {
		asset.DeliveredAt = &deliveredAt.Time
	}

	return asset, nil
}

const assetColumns = `id, product_id, asset_type, asset_key, username, password, extra_info, status, order_id, delivered_at, created_at`

func GetAsset(ctx context.Context, db *sql.DB, id int64) (*models.DigitalAsset, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM digital_assets WHERE id = $1`, id)

	asset, err := scanAsset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAssetNotFound
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return asset, nil
}

func ListAvailable(ctx context.Context, db *sql.DB, productID int64) ([]models.DigitalAsset, error) {
	return listAssets(ctx, db,
		`SELECT `+assetColumns+`
		 FROM digital_assets
		 WHERE product_id = $1 AND status = $2
		 ORDER BY id`,
		productID, models.AssetStatusAvailable)
}

func ListByProduct(ctx context.Context, db *sql.DB, productID int64) ([]models.DigitalAsset, error) {
	return listAssets(ctx, db,
		`SELECT `+assetColumns+`
		 FROM digital_assets
		 WHERE product_id = $1
		 ORDER BY id`,
		productID)
}

func listAssets(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]models.DigitalAsset, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.DigitalAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return assets, nil
}

func CountAvailable(ctx context.Context, db *sql.DB, productID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM digital_assets WHERE product_id = $1 AND status = $2`,
		productID, models.AssetStatusAvailable).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count available assets: %w", err)
	}
	return count, nil
}

// DeleteAsset removes an asset from stock. Delivered assets are part of
// an order's history and cannot be removed.
func DeleteAsset(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM digital_assets WHERE id = $1 AND status = $2`,
		id, models.AssetStatusAvailable)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := GetAsset(ctx, db, id); err != nil {
			return err
		}
		return database.ErrAssetAlreadyDelivered
	}

	return nil
}

// ClaimAssetTx picks one available asset for the product and transitions
// it to delivered, stamping the claiming order and timestamp. The row is
// selected with FOR UPDATE SKIP LOCKED so concurrent claims for the same
// product take disjoint rows; the conditional UPDATE makes the
// available -> delivered transition happen exactly once per asset.
func ClaimAssetTx(ctx context.Context, tx *sql.Tx, productID, orderID int64) (*models.DigitalAsset, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+assetColumns+`
		 FROM digital_assets
		 WHERE product_id = $1 AND status = $2
		 ORDER BY id
		 FOR UPDATE SKIP LOCKED
		 LIMIT 1`,
		productID, models.AssetStatusAvailable)

	asset, err := scanAsset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNoStockAvailable
		}
		return nil, fmt.Errorf("select available asset: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE digital_assets
		 SET status = $1, order_id = $2, delivered_at = NOW()
		 WHERE id = $3 AND status = $4`,
		models.AssetStatusDelivered, orderID, asset.ID, models.AssetStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("claim asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, database.ErrAssetAlreadyDelivered
	}

	asset.Status = models.AssetStatusDelivered
	asset.OrderID = &orderID

	return asset, nil
}
