package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	"admissions/internal/domain/payment"
	paymentsvc "admissions/internal/services/payment"

	"github.com/google/uuid"
)

type createOrderReq struct {
	Amount json.Number `json:"amount" validate:"required"`
}

type verifyReq struct {
	OrderID         string `json:"razorpay_order_id" validate:"required"`
	PaymentID       string `json:"razorpay_payment_id" validate:"required"`
	Signature       string `json:"razorpay_signature" validate:"required"`
	ApplicationID   string `json:"applicationId"`
	ApplicationType string `json:"applicationType"`
}

// CreateOrder opens a gateway order for a whole-rupee amount.
func CreateOrder(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in createOrderReq
		if err := decode(r, "create_order", &in); err != nil {
			writeError(w, r, err)
			return
		}
		amount, err := in.Amount.Int64()
		if err != nil {
			writeError(w, r, core.Invalid("create_order", "amount must be a positive integer"))
			return
		}

		// Short, bounded context for provider call
		ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
		defer cancel()

		res, err := svc.CreateOrder(ctx, amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"key":     res.Key,
			"order":   res.Order,
		})
	}
}

// VerifyPayment checks the checkout signature and, when the request names
// an application, marks it paid.
func VerifyPayment(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in verifyReq
		if err := decode(r, "verify_payment", &in); err != nil {
			writeError(w, r, err)
			return
		}

		req := paymentsvc.VerifyRequest{
			Verification: payment.Verification{
				OrderID:   in.OrderID,
				PaymentID: in.PaymentID,
				Signature: in.Signature,
			},
		}
		if in.ApplicationID != "" {
			id, err := uuid.Parse(in.ApplicationID)
			if err != nil {
				writeError(w, r, core.Invalid("verify_payment", "applicationId is invalid"))
				return
			}
			req.ApplicationID = &id
			req.Kind = application.Kind(strings.ToLower(strings.TrimSpace(in.ApplicationType)))
		}

		app, err := svc.Verify(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		body := map[string]any{"success": true, "message": "Payment verified successfully!"}
		if app != nil {
			body["application"] = app
		}
		writeJSON(w, http.StatusOK, body)
	}
}
