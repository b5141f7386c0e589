package base

import (
	"fmt"

	"admissions/internal/provider"
)

// AmountValidator checks order amounts against gateway limits (minor units)
type AmountValidator struct {
	minAmount int64
	maxAmount int64
	currency  string
}

// NewAmountValidator creates an amount validator with limits. A zero max
// means unbounded.
func NewAmountValidator(currency string, minAmount, maxAmount int64) *AmountValidator {
	return &AmountValidator{
		minAmount: minAmount,
		maxAmount: maxAmount,
		currency:  currency,
	}
}

// ValidateAmount validates an amount in minor units
func (v *AmountValidator) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: "amount must be greater than zero",
		}
	}
	if amount < v.minAmount {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must be at least %s", FormatAmount(v.minAmount, v.currency)),
		}
	}
	if v.maxAmount > 0 && amount > v.maxAmount {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must not exceed %s", FormatAmount(v.maxAmount, v.currency)),
		}
	}
	return nil
}

// FormatAmount renders minor units for display, e.g. "INR 500.00".
func FormatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, amount/100, amount%100)
}
