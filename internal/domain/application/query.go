package application

import (
	"math"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int for any accepted limit
	MaxPage = math.MaxInt / MaxLimit
)

// sortable maps accepted sortBy values to their storage column.
var sortable = map[string]string{
	"applicationDate": "application_date",
	"name":            "name",
	"email":           "email",
	"city":            "city",
	"state":           "state",
	"stream":          "stream",
	"paymentStatus":   "payment_status",
}

// ListQuery is a paginated, searchable list request.
type ListQuery struct {
	Page          int
	Limit         int
	Search        string
	SortBy        string
	SortOrder     string
	PaymentStatus Status
}

// Normalize applies defaults and limits.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	if _, ok := sortable[q.SortBy]; !ok {
		q.SortBy = "applicationDate"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	if !q.PaymentStatus.Valid() {
		q.PaymentStatus = ""
	}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SortColumn returns the whitelisted column for SortBy.
func (q ListQuery) SortColumn() string {
	if c, ok := sortable[q.SortBy]; ok {
		return c
	}
	return "application_date"
}

func (q ListQuery) Descending() bool {
	return q.SortOrder != "asc"
}

// SearchFields lists the fields matched by Search for the kind.
func SearchFields(kind Kind) []string {
	fields := []string{"name", "email", "mobile", "city", "state"}
	if kind == KindPG {
		fields = append(fields, "graduation_stream")
	}
	return fields
}

// Matches reports whether a matches the query's search and status filter.
// Used by the in-memory store; Postgres evaluates the same rules in SQL.
func (q ListQuery) Matches(a *Application) bool {
	if q.PaymentStatus != "" && a.PaymentStatus != q.PaymentStatus {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	values := []string{a.Name, a.Email, a.Mobile, a.City, a.State}
	if a.Kind == KindPG {
		values = append(values, a.GraduationStream)
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Page is one page of a list result.
type Page struct {
	Applications      []*Application `json:"applications"`
	TotalPages        int            `json:"totalPages"`
	CurrentPage       int            `json:"currentPage"`
	TotalApplications int            `json:"totalApplications"`
}

// NewPage builds a page from the query and the unpaginated total.
func NewPage(q ListQuery, items []*Application, total int) Page {
	if items == nil {
		items = []*Application{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Page{
		Applications:      items,
		TotalPages:        pages,
		CurrentPage:       q.Page,
		TotalApplications: total,
	}
}
