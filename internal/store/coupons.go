package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

func CreateCoupon(ctx context.Context, db *sql.DB, code string, discountType models.DiscountType, value decimal.Decimal, oneTime bool) (*models.Coupon, error) {
	if discountType != models.DiscountTypePercent && discountType != models.DiscountTypeFixed {
		return nil, fmt.Errorf("unknown discount type %q", discountType)
	}
	if !value.IsPositive() {
		return nil, database.ErrInvalidAmount
	}

	coupon := &models.Coupon{}
	err := db.QueryRowContext(ctx,
		`INSERT INTO coupons (code, discount_type, discount_value, active, one_time, created_at)
		 VALUES ($1, $2, $3, TRUE, $4, NOW())
		 RETURNING id, code, discount_type, discount_value, active, one_time, created_at`,
		code, discountType, value, oneTime).Scan(
		&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.Active, &coupon.OneTime, &coupon.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return coupon, nil
}

func GetCouponByCode(ctx context.Context, db *sql.DB, code string) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	err := db.QueryRowContext(ctx,
		`SELECT id, code, discount_type, discount_value, active, one_time, created_at
		 FROM coupons
		 WHERE code = $1`,
		code).Scan(
		&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.Active, &coupon.OneTime, &coupon.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return coupon, nil
}

func SetCouponActive(ctx context.Context, db *sql.DB, id int64, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE coupons SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCouponNotFound
	}

	return nil
}

func ListCoupons(ctx context.Context, db *sql.DB) ([]models.Coupon, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, code, discount_type, discount_value, active, one_time, created_at
		 FROM coupons
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var coupon models.Coupon
		err := rows.Scan(
			&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.DiscountValue,
			&coupon.Active, &coupon.OneTime, &coupon.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return coupons, nil
}

// RedeemCouponTx validates and records a redemption inside the checkout
// transaction, returning the discount off the given subtotal. One-time
// coupons lock the row so two racing checkouts cannot both redeem; the
// unique (coupon_id, user_id) index blocks a repeat by the same user.
func RedeemCouponTx(ctx context.Context, tx *sql.Tx, code string, userID int64, subtotal decimal.Decimal) (decimal.Decimal, error) {
	coupon := &models.Coupon{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, code, discount_type, discount_value, active, one_time, created_at
		 FROM coupons
		 WHERE code = $1
		 FOR UPDATE`,
		code).Scan(
		&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.Active, &coupon.OneTime, &coupon.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, database.ErrCouponNotFound
		}
		return decimal.Zero, fmt.Errorf("lock coupon: %w", err)
	}

	if !coupon.Active {
		return decimal.Zero, database.ErrCouponNotFound
	}

	var redeemed int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`,
		coupon.ID).Scan(&redeemed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("count redemptions: %w", err)
	}
	if coupon.OneTime && redeemed > 0 {
		return decimal.Zero, database.ErrCouponExhausted
	}

	var alreadyByUser bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2)`,
		coupon.ID, userID).Scan(&alreadyByUser)
	if err != nil {
		return decimal.Zero, fmt.Errorf("check redemption: %w", err)
	}
	if alreadyByUser {
		return decimal.Zero, database.ErrCouponExhausted
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO coupon_redemptions (coupon_id, user_id, redeemed_at)
		 VALUES ($1, $2, NOW())`,
		coupon.ID, userID); err != nil {
		return decimal.Zero, fmt.Errorf("record redemption: %w", err)
	}

	return coupon.Discount(subtotal), nil
}
