package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"admissions/internal/core"
)

// Money represents an amount in the smallest currency unit (paise)
type Money int64

// Currency represents an ISO currency code
type Currency string

const INR Currency = "INR"

// MinorUnitsPerMajor is the paise-per-rupee factor applied to order amounts
const MinorUnitsPerMajor = 100

// Order is the gateway's order object, returned verbatim to the client
type Order struct {
	ID         string   `json:"id"`
	Entity     string   `json:"entity"`
	Amount     Money    `json:"amount"`
	AmountPaid Money    `json:"amount_paid"`
	AmountDue  Money    `json:"amount_due"`
	Currency   Currency `json:"currency"`
	Receipt    string   `json:"receipt"`
	Status     string   `json:"status"`
	Attempts   int      `json:"attempts"`
	CreatedAt  int64    `json:"created_at"`
}

// MaxMajorAmount is the largest whole-rupee amount whose paise value fits in
// an int64.
const MaxMajorAmount = math.MaxInt64 / MinorUnitsPerMajor

// MinorUnits converts a whole-rupee amount into paise.
func MinorUnits(amount int64) (Money, error) {
	if amount <= 0 {
		return 0, core.Invalid("minor_units", "amount must be a positive integer")
	}
	if amount > MaxMajorAmount {
		return 0, core.Invalid("minor_units", "amount is too large")
	}
	return Money(amount * MinorUnitsPerMajor), nil
}

// NewReceipt builds a receipt label from the clock.
func NewReceipt(now time.Time) string {
	return fmt.Sprintf("receipt_%d", now.UnixMilli())
}

// Verification is the triple returned by the checkout widget after payment
type Verification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Validate checks that every part of the triple is present
func (v Verification) Validate() error {
	switch {
	case strings.TrimSpace(v.OrderID) == "":
		return core.Invalid("verify_payment", "razorpay_order_id is required")
	case strings.TrimSpace(v.PaymentID) == "":
		return core.Invalid("verify_payment", "razorpay_payment_id is required")
	case strings.TrimSpace(v.Signature) == "":
		return core.Invalid("verify_payment", "razorpay_signature is required")
	}
	return nil
}

// ExpectedSignature returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func ExpectedSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature in constant time. The comparison is over the
// lowercase hex string, so an uppercase signature does not match.
func Verify(secret string, v Verification) error {
	if err := v.Validate(); err != nil {
		return err
	}
	expected := ExpectedSignature(secret, v.OrderID, v.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(v.Signature)) {
		return core.E(core.KindSignatureMismatch, "verify_payment", "Invalid signature")
	}
	return nil
}
