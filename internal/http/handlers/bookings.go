package handlers

import (
	"net/http"

	bookingsvc "admissions/internal/services/booking"
)

type bookingReq struct {
	Name         string `json:"name" validate:"required"`
	Mobile       text   `json:"mobile" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	StudentClass text   `json:"studentClass" validate:"required"`
	Interest     string `json:"interest"`
}

func CreateBooking(svc *bookingsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in bookingReq
		if err := decode(r, "create_booking", &in); err != nil {
			writeError(w, r, err)
			return
		}
		b, err := svc.Create(r.Context(), bookingsvc.CreateInput{
			Name:         in.Name,
			Mobile:       string(in.Mobile),
			Email:        in.Email,
			StudentClass: string(in.StudentClass),
			Interest:     in.Interest,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Booking created successfully",
			"data":    b,
		})
	}
}

func ListBookings(svc *bookingsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
	}
}
