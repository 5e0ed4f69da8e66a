package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
	"github.com/polkiloo/cleanmart/internal/pkg/audit"
	"github.com/polkiloo/cleanmart/internal/pkg/signature"
	"github.com/polkiloo/cleanmart/internal/test"
)

const keySecret = "key-secret"

func ledgerOrder(id, gatewayOrderID, userID string, status model.OrderStatus) model.Order {
	return model.Order{
		ID:             id,
		GatewayOrderID: gatewayOrderID,
		UserID:         userID,
		Amount:         31300,
		Currency:       "INR",
		Status:         status,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
}

func paymentSignature(secret, orderID, paymentID string) string {
	return signature.Sign(secret, signature.PaymentPayload(orderID, paymentID))
}

func newVerification(secret string, orders ...model.Order) (*VerificationUseCase, *test.OrderLedgerStub, *test.LogBuffer) {
	ledger := test.NewOrderLedgerStub(orders...)
	logs := &test.LogBuffer{}
	return NewVerificationUseCase(ledger, secret, audit.New(logs.Logger())), ledger, logs
}

func TestVerifyMarksOrderPaid(t *testing.T) {
	uc, ledger, _ := newVerification(keySecret, ledgerOrder("o1", "order_1", "u1", model.OrderStatusCreated))
	ctx := context.Background()

	order, err := uc.Verify(ctx, "u1", "order_1", "pay_1", paymentSignature(keySecret, "order_1", "pay_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
	if order.GatewayPaymentID == nil || *order.GatewayPaymentID != "pay_1" || order.PaidAt == nil {
		t.Fatalf("expected payment details to be recorded: %+v", order)
	}

	again, err := uc.Verify(ctx, "u1", "order_1", "pay_1", paymentSignature(keySecret, "order_1", "pay_1"))
	if err != nil {
		t.Fatalf("repeat verification must succeed: %v", err)
	}
	if !again.PaidAt.Equal(*order.PaidAt) {
		t.Fatalf("paid timestamp must not move on repeat verification")
	}

	row, _ := ledger.Find("order_1")
	if row.Status != model.OrderStatusPaid {
		t.Fatalf("expected ledger to be paid, got %s", row.Status)
	}
}

func TestVerifyRejectsForgedSignature(t *testing.T) {
	uc, ledger, logs := newVerification(keySecret, ledgerOrder("o1", "order_1", "u1", model.OrderStatusCreated))

	_, err := uc.Verify(context.Background(), "u1", "order_1", "pay_1", paymentSignature("other-secret", "order_1", "pay_1"))
	if !errors.Is(err, domainErrors.ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
	if row, _ := ledger.Find("order_1"); row.Status != model.OrderStatusCreated {
		t.Fatalf("forged verification must not change status, got %s", row.Status)
	}
	if !logs.HasEvent(audit.EventSignatureMismatch) {
		t.Fatalf("expected %s audit record", audit.EventSignatureMismatch)
	}
}

func TestVerifyRejectsOtherUsersOrder(t *testing.T) {
	uc, ledger, logs := newVerification(keySecret, ledgerOrder("o1", "order_1", "u1", model.OrderStatusCreated))

	_, err := uc.Verify(context.Background(), "u2", "order_1", "pay_1", paymentSignature(keySecret, "order_1", "pay_1"))
	if !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if row, _ := ledger.Find("order_1"); row.Status != model.OrderStatusCreated {
		t.Fatalf("foreign verification must not change status, got %s", row.Status)
	}
	if !logs.HasEvent(audit.EventAccessDenied) {
		t.Fatalf("expected %s audit record", audit.EventAccessDenied)
	}
}

func TestVerifyUnknownOrderIsForbidden(t *testing.T) {
	uc, _, _ := newVerification(keySecret)

	_, err := uc.Verify(context.Background(), "u1", "order_x", "pay_1", paymentSignature(keySecret, "order_x", "pay_1"))
	if !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestVerifyTerminalStates(t *testing.T) {
	uc, _, logs := newVerification(keySecret,
		ledgerOrder("o1", "order_captured", "u1", model.OrderStatusCaptured),
		ledgerOrder("o2", "order_failed", "u1", model.OrderStatusFailed),
		ledgerOrder("o3", "order_refunded", "u1", model.OrderStatusRefunded),
	)
	ctx := context.Background()

	order, err := uc.Verify(ctx, "u1", "order_captured", "pay_1", paymentSignature(keySecret, "order_captured", "pay_1"))
	if err != nil {
		t.Fatalf("verifying a captured order must succeed: %v", err)
	}
	if order.Status != model.OrderStatusCaptured {
		t.Fatalf("captured order must not regress, got %s", order.Status)
	}

	for _, id := range []string{"order_failed", "order_refunded"} {
		if _, err := uc.Verify(ctx, "u1", id, "pay_1", paymentSignature(keySecret, id, "pay_1")); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("%s: expected ErrInvalidTransition, got %v", id, err)
		}
	}
	if !logs.HasEvent(audit.EventStatusDiscrepancy) {
		t.Fatalf("expected %s audit record", audit.EventStatusDiscrepancy)
	}
}

func TestVerifyInputValidation(t *testing.T) {
	ctx := context.Background()

	unconfigured, _, _ := newVerification("")
	if _, err := unconfigured.Verify(ctx, "u1", "order_1", "pay_1", "sig"); !errors.Is(err, domainErrors.ErrGatewayUnconfigured) {
		t.Fatalf("expected ErrGatewayUnconfigured, got %v", err)
	}

	uc, _, _ := newVerification(keySecret)
	cases := [][4]string{
		{"", "order_1", "pay_1", "sig"},
		{"u1", " ", "pay_1", "sig"},
		{"u1", "order_1", "", "sig"},
		{"u1", "order_1", "pay_1", ""},
	}
	for _, c := range cases {
		if _, err := uc.Verify(ctx, c[0], c[1], c[2], c[3]); !errors.Is(err, domainErrors.ErrInvalidPayload) {
			t.Fatalf("%v: expected ErrInvalidPayload, got %v", c, err)
		}
	}
}

func TestVerifyLedgerError(t *testing.T) {
	uc, ledger, _ := newVerification(keySecret, ledgerOrder("o1", "order_1", "u1", model.OrderStatusCreated))
	boom := errors.New("db down")
	ledger.Err = boom

	if _, err := uc.Verify(context.Background(), "u1", "order_1", "pay_1", paymentSignature(keySecret, "order_1", "pay_1")); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
