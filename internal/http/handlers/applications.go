package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	appsvc "admissions/internal/services/application"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// text accepts a JSON string or number. Forms post marks and years either way.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = text(n.String())
	return nil
}

func (t *text) ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

type applicationReq struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Mobile  text   `json:"mobile" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Class   string `json:"class" validate:"required"`
	Stream  string `json:"stream" validate:"required"`
	Grade10 text   `json:"grade10" validate:"required"`
	Grade12 text   `json:"grade12" validate:"required"`

	ExamDate         string `json:"examDate"`
	GraduationScore  text   `json:"graduationScore"`
	GraduationStream string `json:"graduationStream"`
	PassingYear      text   `json:"passingYear"`
}

func (in applicationReq) fields() application.Fields {
	return application.Fields{
		Name:             in.Name,
		Email:            in.Email,
		Mobile:           string(in.Mobile),
		City:             in.City,
		State:            in.State,
		Class:            in.Class,
		Stream:           in.Stream,
		Grade10:          string(in.Grade10),
		Grade12:          string(in.Grade12),
		ExamDate:         in.ExamDate,
		GraduationScore:  string(in.GraduationScore),
		GraduationStream: in.GraduationStream,
		PassingYear:      string(in.PassingYear),
	}
}

type patchReq struct {
	Name             *string             `json:"name"`
	Email            *string             `json:"email" validate:"omitempty,email"`
	Mobile           *text               `json:"mobile"`
	City             *string             `json:"city"`
	State            *string             `json:"state"`
	Class            *string             `json:"class"`
	Stream           *string             `json:"stream"`
	Grade10          *text               `json:"grade10"`
	Grade12          *text               `json:"grade12"`
	ExamDate         *string             `json:"examDate"`
	GraduationScore  *text               `json:"graduationScore"`
	GraduationStream *string             `json:"graduationStream"`
	PassingYear      *text               `json:"passingYear"`
	PaymentStatus    *application.Status `json:"paymentStatus"`
	PaymentID        *string             `json:"paymentId"`
	OrderID          *string             `json:"orderId"`
}

func (in patchReq) patch() application.Patch {
	return application.Patch{
		Name:             in.Name,
		Email:            in.Email,
		Mobile:           in.Mobile.ptr(),
		City:             in.City,
		State:            in.State,
		Class:            in.Class,
		Stream:           in.Stream,
		Grade10:          in.Grade10.ptr(),
		Grade12:          in.Grade12.ptr(),
		ExamDate:         in.ExamDate,
		GraduationScore:  in.GraduationScore.ptr(),
		GraduationStream: in.GraduationStream,
		PassingYear:      in.PassingYear.ptr(),
		PaymentStatus:    in.PaymentStatus,
		PaymentID:        in.PaymentID,
		OrderID:          in.OrderID,
	}
}

// CreateApplication is the public application form submission.
func CreateApplication(svc *appsvc.Service, kind application.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in applicationReq
		if err := decode(r, "create_application", &in); err != nil {
			writeError(w, r, err)
			return
		}
		app, err := svc.Create(r.Context(), kind, in.fields())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":     true,
			"message":     kind.Label() + " Application created successfully",
			"application": app,
		})
	}
}

func ListApplications(svc *appsvc.Service, kind application.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), kind, listQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"applications":      page.Applications,
			"totalPages":        page.TotalPages,
			"currentPage":       page.CurrentPage,
			"totalApplications": page.TotalApplications,
		})
	}
}

// listQuery reads paging, search and sort parameters. Malformed numbers
// fall back to defaults.
func listQuery(r *http.Request) application.ListQuery {
	v := r.URL.Query()
	q := application.ListQuery{
		Search:        v.Get("search"),
		SortBy:        v.Get("sortBy"),
		SortOrder:     v.Get("sortOrder"),
		PaymentStatus: application.Status(v.Get("paymentStatus")),
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil {
		q.Limit = n
	}
	return q
}

func GetApplication(svc *appsvc.Service, kind application.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		app, err := svc.Get(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "application": app})
	}
}

// UpdateApplication applies a partial update. Setting paymentStatus to
// completed for the first time sends the confirmation email.
func UpdateApplication(svc *appsvc.Service, kind application.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in patchReq
		if err := decode(r, "update_application", &in); err != nil {
			writeError(w, r, err)
			return
		}
		app, err := svc.Update(r.Context(), kind, id, in.patch())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     kind.Label() + " Application updated successfully",
			"application": app,
		})
	}
}

func DeleteApplication(svc *appsvc.Service, kind application.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.Delete(r.Context(), kind, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": kind.Label() + " Application deleted successfully",
		})
	}
}

func ApplicationStats(svc *appsvc.Service, kind application.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
	}
}

func applicationID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, core.Invalid("application_id", "invalid application id")
	}
	return id, nil
}
