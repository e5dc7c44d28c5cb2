package model

import (
	"testing"
	"time"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "PENDING"},
		{"processing", OrderStatusProcessing, "PROCESSING"},
		{"completed", OrderStatusCompleted, "COMPLETED"},
		{"rejected", OrderStatusRejected, "REJECTED"},
		{"expired", OrderStatusExpired, "EXPIRED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestOrderStatusTableIsExhaustive(t *testing.T) {
	statuses := OrderStatuses()
	if len(statuses) != len(orderStatuses) {
		t.Fatalf("expected %d statuses in table, got %d", len(statuses), len(orderStatuses))
	}
	for _, status := range statuses {
		traits, ok := orderStatuses[status]
		if !ok {
			t.Fatalf("status %s missing from table", status)
		}
		if traits.label == "" {
			t.Fatalf("status %s has no label", status)
		}
		if traits.terminal && len(traits.next) > 0 {
			t.Fatalf("terminal status %s must not have successors", status)
		}
		for _, next := range traits.next {
			if !next.Valid() {
				t.Fatalf("status %s points to unknown status %s", status, next)
			}
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{OrderStatusPending, OrderStatusProcessing}:   true,
		{OrderStatusPending, OrderStatusExpired}:      true,
		{OrderStatusProcessing, OrderStatusCompleted}: true,
		{OrderStatusProcessing, OrderStatusRejected}:  true,
	}

	for _, from := range OrderStatuses() {
		for _, to := range OrderStatuses() {
			got := from.CanTransitionTo(to)
			if got != allowed[[2]OrderStatus{from, to}] {
				t.Errorf("transition %s -> %s: expected %v, got %v", from, to, !got, got)
			}
		}
	}
}

func TestOrderStatusTerminalAndLabels(t *testing.T) {
	cases := []struct {
		status   OrderStatus
		terminal bool
		label    string
	}{
		{OrderStatusPending, false, "Chờ thanh toán"},
		{OrderStatusProcessing, false, "Chờ xác nhận"},
		{OrderStatusCompleted, true, "Hoàn thành"},
		{OrderStatusRejected, true, "Đã hủy"},
		{OrderStatusExpired, true, "Hết hạn"},
	}
	for _, tc := range cases {
		if tc.status.Terminal() != tc.terminal {
			t.Errorf("%s terminal: expected %v", tc.status, tc.terminal)
		}
		if tc.status.Label() != tc.label {
			t.Errorf("%s label: expected %q, got %q", tc.status, tc.label, tc.status.Label())
		}
	}
	if OrderStatus("UNKNOWN").Label() != "UNKNOWN" {
		t.Error("unknown status should render raw value")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("PROCESSING")
	if err != nil || status != OrderStatusProcessing {
		t.Fatalf("expected PROCESSING, got %q (%v)", status, err)
	}
	if _, err := ParseOrderStatus("processing"); err == nil {
		t.Fatal("expected error for lowercase status")
	}
	if _, err := ParseOrderStatus(""); err == nil {
		t.Fatal("expected error for empty status")
	}
}

func TestPaymentAndDeliveryMethods(t *testing.T) {
	if !PaymentMethodBankTransfer.Supported() {
		t.Error("bank transfer must be supported")
	}
	if PaymentMethodUSDT.Supported() {
		t.Error("USDT must not be supported")
	}
	for _, m := range []DeliveryMethod{DeliveryMethodEmail, DeliveryMethodTelegram, DeliveryMethodZalo} {
		if !m.Valid() {
			t.Errorf("expected %s to be valid", m)
		}
	}
	if DeliveryMethod("SMS").Valid() {
		t.Error("SMS must not be valid")
	}
}

func TestOrderDue(t *testing.T) {
	now := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)
	order := Order{Status: OrderStatusPending, ExpiresAt: now}
	if !order.Due(now) {
		t.Fatal("expected order to be due at its expiry instant")
	}
	if order.Due(now.Add(-time.Second)) {
		t.Fatal("did not expect order to be due before expiry")
	}
	order.Status = OrderStatusProcessing
	if order.Due(now.Add(time.Hour)) {
		t.Fatal("processing order is never due")
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in     Page
		want   Page
		offset int
	}{
		{Page{}, Page{Page: 1, Limit: 10}, 0},
		{Page{Page: 3, Limit: 20}, Page{Page: 3, Limit: 20}, 40},
		{Page{Page: -1, Limit: 1000}, Page{Page: 1, Limit: 100}, 0},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got != tc.want {
			t.Errorf("normalize %+v: expected %+v, got %+v", tc.in, tc.want, got)
		}
		if got.Offset() != tc.offset {
			t.Errorf("offset %+v: expected %d, got %d", got, tc.offset, got.Offset())
		}
	}
}

func TestOrderListTotalPages(t *testing.T) {
	cases := []struct {
		list OrderList
		want int
	}{
		{OrderList{Total: 0, Limit: 10}, 0},
		{OrderList{Total: 10, Limit: 10}, 1},
		{OrderList{Total: 11, Limit: 10}, 2},
		{OrderList{Total: 5, Limit: 0}, 0},
	}
	for _, tc := range cases {
		if got := tc.list.TotalPages(); got != tc.want {
			t.Errorf("total %d limit %d: expected %d, got %d", tc.list.Total, tc.list.Limit, tc.want, got)
		}
	}
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Fatal("nil user is not admin")
	}
	if (&User{Role: RoleUser}).IsAdmin() {
		t.Fatal("user role is not admin")
	}
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Fatal("admin role expected admin")
	}
}
