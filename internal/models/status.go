package models

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCompleted,
		OrderStatusCanceled, OrderStatusRefunded:
		return true
	}
	return false
}

// validNext encodes the engine-initiated transitions. Refunds are
// reachable from any non-refunded state but go through the dedicated
// refund operation, not a bare status write.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusPaid: true, OrderStatusCanceled: true},
	OrderStatusPaid:      {OrderStatusCompleted: true, OrderStatusCanceled: true},
	OrderStatusCompleted: {},
	OrderStatusCanceled:  {},
	OrderStatusRefunded:  {},
}

// CanTransition reports whether the machine allows moving from one
// status to another. Delivery paths use it to decide whether an order
// may complete.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderStatusRefunded {
		return from != OrderStatusRefunded
	}
	return validNext[from][to]
}
