package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"admissions/internal/domain/application"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders the transactional emails
type Templates struct {
	institution string
	confirm     *template.Template
}

func NewTemplates(institution string) (*Templates, error) {
	t, err := template.ParseFS(templateFS, "templates/payment_confirmation.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{institution: institution, confirm: t}, nil
}

type confirmationData struct {
	Institution   string
	Name          string
	Kind          string
	ApplicationID string
	Stream        string
	ExamDate      string
	PaymentID     string
	OrderID       string
}

// PaymentConfirmation builds the message sent once an exam fee is paid.
func (t *Templates) PaymentConfirmation(a *application.Application) (Message, error) {
	data := confirmationData{
		Institution:   t.institution,
		Name:          a.Name,
		Kind:          a.Kind.Label(),
		ApplicationID: a.ID.String(),
		Stream:        a.Stream,
		ExamDate:      a.ExamDate,
		PaymentID:     a.PaymentID,
		OrderID:       a.OrderID,
	}
	if a.Kind == application.KindPG {
		data.Stream = a.GraduationStream
	}

	var buf bytes.Buffer
	if err := t.confirm.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Message{
		To:      a.Email,
		Subject: fmt.Sprintf("%s %s application: payment received", t.institution, a.Kind.Label()),
		HTML:    buf.String(),
	}, nil
}
