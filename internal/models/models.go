package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryMode selects the fulfillment path for a product.
type DeliveryMode string

const (
	DeliveryModeManual    DeliveryMode = "manual"
	DeliveryModeAutomatic DeliveryMode = "automatic"
)

type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Image        string          `json:"image,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	Price        decimal.Decimal `json:"price"`
	DeliveryMode DeliveryMode    `json:"delivery_mode"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

type PaymentMethod struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Order struct {
	ID                  int64            `json:"id"`
	OrderNumber         string           `json:"order_number"`
	UserID              int64            `json:"user_id"`
	UserEmail           string           `json:"user_email"`
	Subtotal            decimal.Decimal  `json:"subtotal"`
	Tax                 decimal.Decimal  `json:"tax"`
	Total               decimal.Decimal  `json:"total"`
	Currency            string           `json:"currency"`
	PaymentMethod       string           `json:"payment_method"`
	PaymentInstructions string           `json:"payment_instructions,omitempty"`
	WalletDeduction     decimal.Decimal  `json:"wallet_deduction"`
	Status              OrderStatus      `json:"status"`
	DeliveredAsset      *DeliveryPayload `json:"delivered_asset,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Version             int              `json:"version"`
	Items               []OrderItem      `json:"items,omitempty"`
}

type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	CreatedAt    time.Time       `json:"created_at"`
}

type AssetStatus string

const (
	AssetStatusAvailable AssetStatus = "available"
	AssetStatusDelivered AssetStatus = "delivered"
)

type DigitalAsset struct {
	ID          int64       `json:"id"`
	ProductID   int64       `json:"product_id"`
	Type        AssetType   `json:"type"`
	Key         string      `json:"key,omitempty"`
	Username    string      `json:"username,omitempty"`
	Password    string      `json:"password,omitempty"`
	ExtraInfo   string      `json:"extra_info,omitempty"`
	Status      AssetStatus `json:"status"`
	OrderID     *int64      `json:"order_id,omitempty"`
	DeliveredAt *time.Time  `json:"delivered_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type WalletBalance struct {
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

type Coupon struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Active        bool            `json:"active"`
	OneTime       bool            `json:"one_time"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Discount computes the amount a coupon takes off the given subtotal.
// Never exceeds the subtotal.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercent:
		d = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeFixed:
		d = c.DiscountValue
	default:
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
