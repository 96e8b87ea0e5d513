// Package fulfillment owns every transition of an order's status and the
// side effects each transition entails: wallet debits at checkout,
// exactly-once digital asset claims for automatic delivery, and wallet
// credits on refund. Every multi-step mutation runs inside one
// serializable transaction with conflict retry, so a wallet debit and
// its order, or an asset claim and its order completion, commit together
// or not at all.
package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/events"
	"github.com/avelar/digistore/internal/models"
	"github.com/avelar/digistore/internal/store"
)

type Engine struct {
	DB       *sql.DB
	Events   events.Publisher
	Producer string
}

func New(db *sql.DB, pub events.Publisher) *Engine {
	return &Engine{DB: db, Events: pub, Producer: "fulfillment-engine"}
}

type CartItem struct {
	ProductID int64
	Quantity  int
}

type PlaceOrderRequest struct {
	UserID              int64
	UserEmail           string
	Items               []CartItem
	Currency            string
	PaymentMethod       string
	PaymentInstructions string
	CouponCode          string
	TaxRate             decimal.Decimal
	WalletDeduction     decimal.Decimal
}

// PlaceOrder creates an order, optionally debiting the buyer's wallet.
// Debit and order insert share one transaction: if the wallet cannot
// cover the requested deduction, no order row exists afterwards and the
// balance is untouched. A fully wallet-funded order starts paid,
// otherwise pending.
func (e *Engine) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("order has no items")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, database.ErrInvalidAmount
		}
	}
	if req.WalletDeduction.IsNegative() {
		return nil, database.ErrInvalidAmount
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	var order *models.Order

	err := database.WithRetry(ctx, e.DB, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, item := range req.Items {
			product, err := store.GetProductTx(ctx, tx, item.ProductID)
			if err != nil {
				return err
			}

			lineSubtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)

			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: product.Image,
				Quantity:     item.Quantity,
				UnitPrice:    product.Price,
				Subtotal:     lineSubtotal,
			})
		}

		if req.CouponCode != "" {
			discount, err := store.RedeemCouponTx(ctx, tx, req.CouponCode, req.UserID, subtotal)
			if err != nil {
				return err
			}
			subtotal = subtotal.Sub(discount)
		}

		tax := subtotal.Mul(req.TaxRate).Round(2)
		total := subtotal.Add(tax)

		if req.WalletDeduction.IsPositive() {
			if req.WalletDeduction.GreaterThan(total) {
				return database.ErrInvalidAmount
			}
			if err := store.DebitTx(ctx, tx, req.UserID, req.WalletDeduction); err != nil {
				return err
			}
		}

		status := models.OrderStatusPending
		if req.WalletDeduction.IsPositive() && req.WalletDeduction.Equal(total) {
			status = models.OrderStatusPaid
		}

		order = &models.Order{
			OrderNumber:         uuid.NewString(),
			UserID:              req.UserID,
			UserEmail:           req.UserEmail,
			Subtotal:            subtotal,
			Tax:                 tax,
			Total:               total,
			Currency:            req.Currency,
			PaymentMethod:       req.PaymentMethod,
			PaymentInstructions: req.PaymentInstructions,
			WalletDeduction:     req.WalletDeduction,
			Status:              status,
			Items:               items,
		}

		return store.InsertOrderTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	e.publishOrder(events.TypeOrderCreated, order)

	return order, nil
}

// SetStatus is the direct administrative transition. Refunds go through
// Refund because of the mandatory wallet credit.
func (e *Engine) SetStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if !models.ValidOrderStatus(status) {
		return database.ErrInvalidStatus
	}
	if status == models.OrderStatusRefunded {
		return fmt.Errorf("%w: use Refund for refunds", database.ErrInvalidStatus)
	}

	if err := store.UpdateOrderStatus(ctx, e.DB, orderID, status); err != nil {
		return err
	}

	if e.Events != nil {
		e.Events.Publish(strconv.FormatInt(orderID, 10), events.NewEnvelope(
			events.TypeOrderStatusChanged, e.Producer,
			events.OrderPayload{OrderID: orderID, Status: string(status)}))
	}

	return nil
}

// Refund credits the order total back to the owner's wallet and sets the
// status to refunded, in one transaction. The status write is
// conditional on not being refunded already, so a second invocation
// returns ErrAlreadyRefunded and credits nothing.
func (e *Engine) Refund(ctx context.Context, orderID int64) error {
	var refunded *models.Order

	err := database.WithRetry(ctx, e.DB, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		order, err := store.MarkRefundedTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Total.IsPositive() {
			if err := store.CreditTx(ctx, tx, order.UserID, order.Total); err != nil {
				return err
			}
		}

		refunded = order
		return nil
	})
	if err != nil {
		return err
	}

	e.publishOrder(events.TypeOrderRefunded, refunded)
	if e.Events != nil && refunded.Total.IsPositive() {
		e.Events.Publish(strconv.FormatInt(refunded.UserID, 10), events.NewEnvelope(
			events.TypeWalletCredited, e.Producer,
			events.WalletPayload{UserID: refunded.UserID, Amount: refunded.Total.String()}))
	}

	return nil
}

// DeliverManually attaches an operator-supplied payload and completes
// the order. Allowed from paid, and from completed so an operator can
// correct a payload.
func (e *Engine) DeliverManually(ctx context.Context, orderID int64, payload models.DeliveryPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}

	var delivered *models.Order

	err := database.WithRetry(ctx, e.DB, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		order, err := store.GetOrderForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if order.Status != models.OrderStatusCompleted &&
			!models.CanTransition(order.Status, models.OrderStatusCompleted) {
			return fmt.Errorf("%w: manual delivery from %q", database.ErrInvalidStatus, order.Status)
		}

		if err := store.MarkDeliveredTx(ctx, tx, orderID, payload); err != nil {
			return err
		}

		delivered = order
		return nil
	})
	if err != nil {
		return err
	}

	delivered.Status = models.OrderStatusCompleted
	e.publishOrder(events.TypeOrderDelivered, delivered)

	return nil
}

type DeliveryResult struct {
	Delivered bool   `json:"delivered"`
	Message   string `json:"message"`
}

const (
	msgNotEligible = "order is not eligible for automatic delivery"
	msgUnsupported = "automatic delivery supports single-item orders only"
	msgNoStock     = "no automatic stock available for this product"
	msgDelivered   = "delivered"
)

// AttemptAutoDelivery claims one available asset for the order's product
// and completes the order, all in one transaction. Ineligibility and
// empty stock are results, not errors: the caller can retry after
// restocking or fall back to manual delivery. Two orders racing for the
// last asset cannot both win; the loser sees no stock.
func (e *Engine) AttemptAutoDelivery(ctx context.Context, orderID int64) (DeliveryResult, error) {
	var result DeliveryResult
	var delivered *models.Order

	err := database.WithRetry(ctx, e.DB, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		delivered = nil

		order, err := store.GetOrderForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if !models.CanTransition(order.Status, models.OrderStatusCompleted) {
			result = DeliveryResult{Delivered: false, Message: msgNotEligible}
			return nil
		}

		if len(order.Items) != 1 || order.Items[0].Quantity != 1 {
			result = DeliveryResult{Delivered: false, Message: msgUnsupported}
			return nil
		}

		asset, err := store.ClaimAssetTx(ctx, tx, order.Items[0].ProductID, order.ID)
		if err != nil {
			if errors.Is(err, database.ErrNoStockAvailable) {
				result = DeliveryResult{Delivered: false, Message: msgNoStock}
				return nil
			}
			return err
		}

		payload, err := asset.PayloadForDelivery()
		if err != nil {
			return err
		}

		if err := store.MarkDeliveredTx(ctx, tx, order.ID, payload); err != nil {
			return err
		}

		order.Status = models.OrderStatusCompleted
		order.DeliveredAsset = &payload
		delivered = order
		result = DeliveryResult{Delivered: true, Message: msgDelivered}
		return nil
	})
	if err != nil {
		return DeliveryResult{}, err
	}

	if delivered != nil {
		e.publishOrder(events.TypeOrderDelivered, delivered)
	}

	return result, nil
}

func (e *Engine) publishOrder(eventType string, order *models.Order) {
	if e.Events == nil || order == nil {
		return
	}
	e.Events.Publish(order.OrderNumber, events.NewEnvelope(eventType, e.Producer, events.OrderPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      string(order.Status),
		Total:       order.Total.String(),
	}))
}
