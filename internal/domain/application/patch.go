package application

import (
	"strings"

	"admissions/internal/core"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Mobile           *string `json:"mobile,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	Class            *string `json:"class,omitempty"`
	Stream           *string `json:"stream,omitempty"`
	Grade10          *string `json:"grade10,omitempty"`
	Grade12          *string `json:"grade12,omitempty"`
	ExamDate         *string `json:"examDate,omitempty"`
	GraduationScore  *string `json:"graduationScore,omitempty"`
	GraduationStream *string `json:"graduationStream,omitempty"`
	PassingYear      *string `json:"passingYear,omitempty"`
	PaymentStatus    *Status `json:"paymentStatus,omitempty"`
	PaymentID        *string `json:"paymentId,omitempty"`
	OrderID          *string `json:"orderId,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// CompletePayment is the patch applied after a verified gateway payment.
func CompletePayment(paymentID, orderID string) Patch {
	s := StatusCompleted
	return Patch{PaymentStatus: &s, PaymentID: &paymentID, OrderID: &orderID}
}

// Apply mutates the application in place. The payment status is a one-way
// gate: a completed application never goes back to pending.
func (a *Application) Apply(p Patch) error {
	if p.PaymentStatus != nil {
		next := *p.PaymentStatus
		if !next.Valid() {
			return core.Invalid("apply_patch", "paymentStatus must be pending or completed")
		}
		if a.PaymentStatus == StatusCompleted && next != StatusCompleted {
			return core.Invalid("apply_patch", "paymentStatus cannot move from completed back to pending")
		}
	}

	updated := *a
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&updated.Name, p.Name)
	set(&updated.Mobile, p.Mobile)
	set(&updated.City, p.City)
	set(&updated.State, p.State)
	set(&updated.Class, p.Class)
	set(&updated.Stream, p.Stream)
	set(&updated.Grade10, p.Grade10)
	set(&updated.Grade12, p.Grade12)
	set(&updated.PaymentID, p.PaymentID)
	set(&updated.OrderID, p.OrderID)
	if p.Email != nil {
		updated.Email = normalizeEmail(*p.Email)
	}
	switch a.Kind {
	case KindUG:
		set(&updated.ExamDate, p.ExamDate)
	case KindPG:
		set(&updated.GraduationScore, p.GraduationScore)
		set(&updated.GraduationStream, p.GraduationStream)
		set(&updated.PassingYear, p.PassingYear)
	}
	if p.PaymentStatus != nil {
		updated.PaymentStatus = *p.PaymentStatus
	}

	if err := updated.validate(); err != nil {
		return err
	}
	*a = updated
	return nil
}
