package model

import "testing"

func TestToOrderStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{"pending", OrderStatusPending, false},
		{"processing", OrderStatusProcessing, false},
		{"shipped", OrderStatusShipped, false},
		{"delivered", OrderStatusDelivered, false},
		{"cancelled", OrderStatusCancelled, false},
		{"shipped!!", "", true},
		{"Pending", "", true},
		{"confirmed", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ToOrderStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToOrderStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ToOrderStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range orderStatuses {
		want := s == OrderStatusDelivered || s == OrderStatusCancelled
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v", s, s.Terminal())
		}
	}
}
