package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

// GetBalance returns the wallet balance for a user, materializing a
// zero-balance record on first reference.
func GetBalance(ctx context.Context, db *sql.DB, userID int64) (decimal.Decimal, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO wallet_balances (user_id, balance, created_at, updated_at)
		 VALUES ($1, 0, NOW(), NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ensure wallet: %w", err)
	}

	var balance decimal.Decimal
	err = db.QueryRowContext(ctx,
		`SELECT balance FROM wallet_balances WHERE user_id = $1`,
		userID).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

func GetWallet(ctx context.Context, db *sql.DB, userID int64) (*models.WalletBalance, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO wallet_balances (user_id, balance, created_at, updated_at)
		 VALUES ($1, 0, NOW(), NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	wallet := &models.WalletBalance{}
	err := db.QueryRowContext(ctx,
		`SELECT user_id, balance, created_at, updated_at
		 FROM wallet_balances WHERE user_id = $1`,
		userID).Scan(&wallet.UserID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	return wallet, nil
}

// Credit atomically increments a user's balance, creating the record if
// absent. The increment is a single upsert statement so concurrent
// credits never lose updates.
func Credit(ctx context.Context, db *sql.DB, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return database.ErrInvalidAmount
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO wallet_balances (user_id, balance, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET balance = wallet_balances.balance + EXCLUDED.balance,
		     updated_at = NOW()`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	return nil
}

// CreditTx is the in-transaction variant used by the refund flow.
func CreditTx(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return database.ErrInvalidAmount
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_balances (user_id, balance, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET balance = wallet_balances.balance + EXCLUDED.balance,
		     updated_at = NOW()`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	return nil
}

// DebitTx decrements a user's balance inside the caller's transaction.
// The decrement is conditional on sufficient funds; a shortfall returns
// ErrInsufficientFunds and aborts the transaction, so an order and its
// debit commit together or not at all.
func DebitTx(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return database.ErrInvalidAmount
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_balances (user_id, balance, created_at, updated_at)
		 VALUES ($1, 0, NOW(), NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE wallet_balances
		 SET balance = balance - $1,
		     updated_at = NOW()
		 WHERE user_id = $2
		   AND balance >= $1`,
		amount, userID)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrInsufficientFunds
	}

	return nil
}
