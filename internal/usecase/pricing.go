package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// FeeSchedule holds the constants of the storefront fee model. Amounts are in major units.
type FeeSchedule struct {
	TaxRate            decimal.Decimal
	PlatformFee        decimal.Decimal
	FreeDeliveryAbove  decimal.Decimal
	ProductDeliveryFee decimal.Decimal
	ServiceDeliveryFee decimal.Decimal
	MinorUnits         int64
	MinimumCharge      int64
}

// DefaultFeeSchedule returns the reference fee model: 5% tax, flat platform fee of 10,
// delivery of 40 for supplies-only carts and 50 when services are booked, waived above 1000.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		TaxRate:            decimal.RequireFromString("0.05"),
		PlatformFee:        decimal.NewFromInt(10),
		FreeDeliveryAbove:  decimal.NewFromInt(1000),
		ProductDeliveryFee: decimal.NewFromInt(40),
		ServiceDeliveryFee: decimal.NewFromInt(50),
		MinorUnits:         100,
		MinimumCharge:      100,
	}
}

// Quote is the server side breakdown of a cart.
type Quote struct {
	Subtotal    decimal.Decimal
	Taxes       decimal.Decimal
	PlatformFee decimal.Decimal
	DeliveryFee decimal.Decimal
	Tip         decimal.Decimal
	Total       decimal.Decimal
	// Amount is Total in minor currency units.
	Amount int64
}

// Quote prices items and tip. Client supplied totals are never consulted.
func (f FeeSchedule) Quote(items []model.OrderItem, tip decimal.Decimal) (Quote, error) {
	if err := validateItems(items); err != nil {
		return Quote{}, err
	}
	if tip.IsNegative() {
		return Quote{}, domainErrors.ErrInvalidItems
	}

	subtotal := decimal.Zero
	hasServices := false
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		if item.IsService() {
			hasServices = true
		}
	}

	taxes := subtotal.Mul(f.TaxRate).Round(0)

	delivery := decimal.Zero
	if !subtotal.GreaterThan(f.FreeDeliveryAbove) {
		delivery = f.ProductDeliveryFee
		if hasServices {
			delivery = f.ServiceDeliveryFee
		}
	}

	total := subtotal.Add(taxes).Add(f.PlatformFee).Add(delivery).Add(tip)
	amount := total.Mul(decimal.NewFromInt(f.MinorUnits)).Round(0).IntPart()
	if amount < f.MinimumCharge {
		return Quote{}, domainErrors.ErrAmountTooLow
	}

	return Quote{
		Subtotal:    subtotal,
		Taxes:       taxes,
		PlatformFee: f.PlatformFee,
		DeliveryFee: delivery,
		Tip:         tip,
		Total:       total,
		Amount:      amount,
	}, nil
}

func validateItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return domainErrors.ErrInvalidItems
	}
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 || !item.UnitPrice.IsPositive() {
			return domainErrors.ErrInvalidItems
		}
	}
	return nil
}
