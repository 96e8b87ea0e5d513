package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrAssetNotFound         = errors.New("digital asset not found")
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrSettingNotFound       = errors.New("setting not found")
	ErrInsufficientFunds     = errors.New("insufficient wallet funds")
	ErrNoStockAvailable      = errors.New("no available asset for product")
	ErrAlreadyRefunded       = errors.New("order already refunded")
	ErrAssetAlreadyDelivered = errors.New("asset already delivered")
	ErrCouponExhausted       = errors.New("coupon already redeemed")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrOptimisticLockFailed  = errors.New("optimistic lock failed")
)
