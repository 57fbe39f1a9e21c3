package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderAccepted, true},
		{OrderPending, OrderRejected, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderDelivered, false},
		{OrderAccepted, OrderDelivered, true},
		{OrderAccepted, OrderCancelled, true},
		{OrderAccepted, OrderRejected, false},
		{OrderAccepted, OrderPending, false},
		{OrderRejected, OrderAccepted, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []OrderStatus{OrderRejected, OrderDelivered, OrderCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderPending, OrderAccepted} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderAccepted, OrderRejected, OrderDelivered, OrderCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if OrderStatus("shipped").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestIsMain(t *testing.T) {
	parent := int64(7)
	main := Order{ID: 7}
	child := Order{ID: 8, ParentOrderID: &parent}
	if !main.IsMain() {
		t.Error("order without parent should be main")
	}
	if child.IsMain() {
		t.Error("order with parent should not be main")
	}
}
