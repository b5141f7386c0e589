package application

import (
	"strings"
	"time"

	"admissions/internal/core"

	"github.com/google/uuid"
)

// Kind distinguishes undergraduate from postgraduate applications.
type Kind string

const (
	KindUG Kind = "ug"
	KindPG Kind = "pg"
)

// Label returns the human form used in messages ("UG Application not found").
func (k Kind) Label() string {
	return strings.ToUpper(string(k))
}

func (k Kind) Valid() bool {
	return k == KindUG || k == KindPG
}

// ParseKind accepts "ug"/"pg" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", core.Invalid("parse_kind", "application kind must be ug or pg")
	}
	return k, nil
}

// Status is the exam-fee payment state of an application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Application is a submitted admission record.
type Application struct {
	ID     uuid.UUID `json:"id"`
	Kind   Kind      `json:"kind"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Mobile string    `json:"mobile"`
	City   string    `json:"city"`
	State  string    `json:"state"`
	Class  string    `json:"class"`
	Stream string    `json:"stream"`

	Grade10 string `json:"grade10"`
	Grade12 string `json:"grade12"`

	// UG only
	ExamDate string `json:"examDate,omitempty"`

	// PG only
	GraduationScore  string `json:"graduationScore,omitempty"`
	GraduationStream string `json:"graduationStream,omitempty"`
	PassingYear      string `json:"passingYear,omitempty"`

	PaymentStatus   Status    `json:"paymentStatus"`
	PaymentID       string    `json:"paymentId,omitempty"`
	OrderID         string    `json:"orderId,omitempty"`
	ApplicationDate time.Time `json:"applicationDate"`
}

// Fields is the applicant-supplied part of an application.
type Fields struct {
	Name             string
	Email            string
	Mobile           string
	City             string
	State            string
	Class            string
	Stream           string
	Grade10          string
	Grade12          string
	ExamDate         string
	GraduationScore  string
	GraduationStream string
	PassingYear      string
}

// New validates fields for the given kind and returns a pending application.
func New(kind Kind, f Fields, now time.Time) (*Application, error) {
	if !kind.Valid() {
		return nil, core.Invalid("new_application", "application kind must be ug or pg")
	}
	a := &Application{
		ID:               uuid.New(),
		Kind:             kind,
		Name:             strings.TrimSpace(f.Name),
		Email:            normalizeEmail(f.Email),
		Mobile:           strings.TrimSpace(f.Mobile),
		City:             strings.TrimSpace(f.City),
		State:            strings.TrimSpace(f.State),
		Class:            strings.TrimSpace(f.Class),
		Stream:           strings.TrimSpace(f.Stream),
		Grade10:          strings.TrimSpace(f.Grade10),
		Grade12:          strings.TrimSpace(f.Grade12),
		ExamDate:         strings.TrimSpace(f.ExamDate),
		GraduationScore:  strings.TrimSpace(f.GraduationScore),
		GraduationStream: strings.TrimSpace(f.GraduationStream),
		PassingYear:      strings.TrimSpace(f.PassingYear),
		PaymentStatus:    StatusPending,
		ApplicationDate:  now,
	}
	if kind == KindUG {
		// PG-only columns never apply to UG records
		a.GraduationScore, a.GraduationStream, a.PassingYear = "", "", ""
	} else {
		a.ExamDate = ""
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// validate checks that every field required for the kind is present.
func (a *Application) validate() error {
	required := []struct{ name, value string }{
		{"name", a.Name},
		{"email", a.Email},
		{"mobile", a.Mobile},
		{"city", a.City},
		{"state", a.State},
		{"class", a.Class},
		{"stream", a.Stream},
		{"grade10", a.Grade10},
		{"grade12", a.Grade12},
	}
	switch a.Kind {
	case KindUG:
		required = append(required, struct{ name, value string }{"examDate", a.ExamDate})
	case KindPG:
		required = append(required,
			struct{ name, value string }{"graduationScore", a.GraduationScore},
			struct{ name, value string }{"graduationStream", a.GraduationStream},
			struct{ name, value string }{"passingYear", a.PassingYear},
		)
	}
	for _, r := range required {
		if r.value == "" {
			return core.Invalid("validate_application", r.name+" is required")
		}
	}
	if !strings.Contains(a.Email, "@") {
		return core.Invalid("validate_application", "email is invalid")
	}
	if !a.PaymentStatus.Valid() {
		return core.Invalid("validate_application", "paymentStatus must be pending or completed")
	}
	return nil
}

// IsCompleted checks if the exam fee has been paid.
func (a *Application) IsCompleted() bool {
	return a.PaymentStatus == StatusCompleted
}

// TransitionedToCompleted reports whether moving from prev to next is the
// one-time pending -> completed transition that triggers a notification.
func TransitionedToCompleted(prev, next Status) bool {
	return prev != StatusCompleted && next == StatusCompleted
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
