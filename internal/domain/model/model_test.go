package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		got   OrderStatus
		value string
	}{
		{OrderStatusCreated, "created"},
		{OrderStatusAttempted, "attempted"},
		{OrderStatusPaid, "paid"},
		{OrderStatusCaptured, "captured"},
		{OrderStatusFailed, "failed"},
		{OrderStatusRefunded, "refunded"},
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if !tc.got.Valid() {
				t.Fatalf("expected %s to be valid", tc.got)
			}
		})
	}

	if OrderStatus("pending").Valid() {
		t.Fatal("unexpected valid status")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusCreated, OrderStatusAttempted, true},
		{OrderStatusCreated, OrderStatusPaid, true},
		{OrderStatusCreated, OrderStatusCaptured, true},
		{OrderStatusCreated, OrderStatusFailed, true},
		{OrderStatusCreated, OrderStatusRefunded, false},
		{OrderStatusAttempted, OrderStatusPaid, true},
		{OrderStatusAttempted, OrderStatusCaptured, true},
		{OrderStatusAttempted, OrderStatusFailed, true},
		{OrderStatusAttempted, OrderStatusCreated, false},
		{OrderStatusPaid, OrderStatusCaptured, true},
		{OrderStatusPaid, OrderStatusRefunded, true},
		{OrderStatusPaid, OrderStatusFailed, false},
		{OrderStatusCaptured, OrderStatusPaid, false},
		{OrderStatusCaptured, OrderStatusFailed, false},
		{OrderStatusCaptured, OrderStatusRefunded, true},
		{OrderStatusFailed, OrderStatusCaptured, true},
		{OrderStatusFailed, OrderStatusPaid, false},
		{OrderStatusFailed, OrderStatusAttempted, false},
		{OrderStatusRefunded, OrderStatusCaptured, false},
		{OrderStatusCaptured, OrderStatusCaptured, true},
		{OrderStatusRefunded, OrderStatusRefunded, true},
		{OrderStatus("bogus"), OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatus("bogus"), false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestSourcesFor(t *testing.T) {
	got := SourcesFor(OrderStatusRefunded)
	want := []OrderStatus{OrderStatusPaid, OrderStatusCaptured, OrderStatusRefunded}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	failed := SourcesFor(OrderStatusFailed)
	for _, s := range failed {
		if s.Successful() {
			t.Fatalf("successful status %s must not lead to failed", s)
		}
	}
}

func TestCapturedIsReachableFromFailed(t *testing.T) {
	var fromFailed bool
	for _, s := range SourcesFor(OrderStatusCaptured) {
		if s == OrderStatusFailed {
			fromFailed = true
		}
	}
	if !fromFailed {
		t.Fatal("a later capture must be able to settle a failed order")
	}
	for _, s := range SourcesFor(OrderStatusPaid) {
		if s == OrderStatusFailed {
			t.Fatal("client verification must not revive a failed order")
		}
	}
}

func TestSuccessful(t *testing.T) {
	for _, s := range AllStatuses() {
		want := s == OrderStatusPaid || s == OrderStatusCaptured
		if s.Successful() != want {
			t.Errorf("%s: expected successful=%v", s, want)
		}
	}
}

func TestParseEventKind(t *testing.T) {
	cases := map[string]EventKind{
		"payment.authorized": EventPaymentAuthorized,
		"payment.captured":   EventPaymentCaptured,
		"payment.failed":     EventPaymentFailed,
		"refund.created":     EventRefundCreated,
		"order.paid":         EventUnknown,
		"":                   EventUnknown,
	}
	for name, want := range cases {
		if got := ParseEventKind(name); got != want {
			t.Errorf("%q: expected %v, got %v", name, want, got)
		}
	}
	if EventPaymentCaptured.String() != "payment.captured" {
		t.Errorf("unexpected name %q", EventPaymentCaptured.String())
	}
	if EventUnknown.String() != "unknown" {
		t.Errorf("unexpected name %q", EventUnknown.String())
	}
}

func TestOrderHelpers(t *testing.T) {
	o := &Order{UserID: "user-a"}
	if !o.OwnedBy("user-a") || o.OwnedBy("user-b") || o.OwnedBy("") {
		t.Fatal("unexpected ownership result")
	}
	var nilOrder *Order
	if nilOrder.OwnedBy("user-a") {
		t.Fatal("nil order must not be owned")
	}

	item := OrderItem{Category: ServiceCategory, UnitPrice: decimal.NewFromInt(1)}
	if !item.IsService() {
		t.Fatal("expected service item")
	}
}

func TestIdempotencyEntryExpired(t *testing.T) {
	now := time.Now()
	entry := &IdempotencyEntry{ExpiresAt: now.Add(time.Minute)}
	if entry.Expired(now) {
		t.Fatal("entry should be live")
	}
	if !entry.Expired(now.Add(time.Minute)) {
		t.Fatal("entry should expire at its deadline")
	}
}
