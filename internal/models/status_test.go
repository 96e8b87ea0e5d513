package models

import "testing"

func TestValidOrderStatus(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusCompleted,
		OrderStatusCanceled, OrderStatusRefunded,
	}
	for _, s := range valid {
		if !ValidOrderStatus(s) {
			t.Errorf("Expected %s to be valid", s)
		}
	}

	for _, s := range []OrderStatus{"", "shipped", "PAID", "done"} {
		if ValidOrderStatus(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPaid, OrderStatusCompleted, true},
		{OrderStatusPaid, OrderStatusCanceled, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusPaid, false},
		{OrderStatusCanceled, OrderStatusPaid, false},
		// Refund is reachable from everything except itself.
		{OrderStatusPending, OrderStatusRefunded, true},
		{OrderStatusPaid, OrderStatusRefunded, true},
		{OrderStatusCompleted, OrderStatusRefunded, true},
		{OrderStatusCanceled, OrderStatusRefunded, true},
		{OrderStatusRefunded, OrderStatusRefunded, false},
		{OrderStatusRefunded, OrderStatusPaid, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
