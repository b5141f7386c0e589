package booking

import (
	"strings"
	"time"

	"admissions/internal/core"

	"github.com/google/uuid"
)

// Booking is a class/demo booking request from a prospective student.
type Booking struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile"`
	Email        string    `json:"email,omitempty"`
	StudentClass string    `json:"studentClass"`
	Interest     string    `json:"interest,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// New validates the required fields and stamps both timestamps.
func New(name, mobile, email, studentClass, interest string, now time.Time) (*Booking, error) {
	b := &Booking{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Mobile:       strings.TrimSpace(mobile),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		StudentClass: strings.TrimSpace(studentClass),
		Interest:     strings.TrimSpace(interest),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if b.Name == "" || b.Mobile == "" || b.StudentClass == "" {
		return nil, core.Invalid("new_booking", "Name, mobile and class are required")
	}
	return b, nil
}
