package handlers

import (
	"net/http"

	"admissions/internal/services/audit"

	"github.com/go-chi/chi/v5"
)

// PaymentHistory lists the audit trail of one gateway order.
func PaymentHistory(rec *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := rec.History(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "events": events})
	}
}
