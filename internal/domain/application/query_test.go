package application

import (
	"math"
	"testing"
	"time"
)

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, Limit: 1000, SortBy: "password", SortOrder: "sideways", PaymentStatus: "x"}
	q.Normalize()
	if q.Page != 1 || q.Limit != MaxLimit {
		t.Fatalf("paging not clamped: %+v", q)
	}
	if q.SortColumn() != "application_date" || !q.Descending() {
		t.Fatalf("sort not defaulted: %+v", q)
	}
	if q.PaymentStatus != "" {
		t.Fatal("unknown status filter should be dropped")
	}

	q = ListQuery{Page: 3, Limit: 10}
	q.Normalize()
	if q.Offset() != 20 {
		t.Fatalf("offset = %d", q.Offset())
	}

	for _, limit := range []int{10, MaxLimit, 1 << 40} {
		q = ListQuery{Page: math.MaxInt, Limit: limit}
		q.Normalize()
		if q.Page != MaxPage || q.Offset() < 0 {
			t.Fatalf("limit %d: page %d offset %d", limit, q.Page, q.Offset())
		}
	}
}

func TestListQueryMatches(t *testing.T) {
	pg := &Application{Kind: KindPG, Name: "Ravi", City: "Delhi", GraduationStream: "Commerce", PaymentStatus: StatusPending}
	ug := &Application{Kind: KindUG, Name: "Meera", City: "Chennai", PaymentStatus: StatusCompleted}

	q := ListQuery{Search: "commerce"}
	if !q.Matches(pg) {
		t.Fatal("PG search should include graduation stream")
	}
	q = ListQuery{Search: "DEL"}
	if !q.Matches(pg) || q.Matches(ug) {
		t.Fatal("search should be case-insensitive substring")
	}
	q = ListQuery{PaymentStatus: StatusCompleted}
	if q.Matches(pg) || !q.Matches(ug) {
		t.Fatal("status filter not applied")
	}
}

func TestNewPage(t *testing.T) {
	q := ListQuery{Page: 2, Limit: 10}
	p := NewPage(q, nil, 21)
	if p.TotalPages != 3 || p.CurrentPage != 2 || p.TotalApplications != 21 {
		t.Fatalf("unexpected page %+v", p)
	}
	if p.Applications == nil {
		t.Fatal("applications should encode as an empty list")
	}
}

func TestComputeStats(t *testing.T) {
	mk := func(state, stream, year string, status Status, month time.Month) *Application {
		return &Application{
			Kind: KindPG, State: state, Stream: stream, GraduationStream: stream,
			PassingYear: year, PaymentStatus: status,
			ApplicationDate: time.Date(2025, month, 5, 0, 0, 0, 0, time.UTC),
		}
	}
	apps := []*Application{
		mk("Kerala", "Arts", "2022", StatusCompleted, time.March),
		mk("Kerala", "Arts", "2024", StatusPending, time.January),
		mk("Goa", "Science", "2023", StatusPending, time.March),
	}
	s := ComputeStats(KindPG, apps)
	if s.TotalApplications != 3 || s.CompletedPayments != 1 || s.PendingPayments != 2 {
		t.Fatalf("counts wrong: %+v", s)
	}
	if s.StateStats[0].Key != "Kerala" || s.StateStats[0].Count != 2 {
		t.Fatalf("state stats not sorted by count: %+v", s.StateStats)
	}
	if len(s.MonthlyStats) != 2 || s.MonthlyStats[0].Month != 1 {
		t.Fatalf("monthly stats not ascending: %+v", s.MonthlyStats)
	}
	if s.PassingYearStats[0].Key != "2024" {
		t.Fatalf("passing years not descending: %+v", s.PassingYearStats)
	}

	ug := ComputeStats(KindUG, apps)
	if ug.GraduationStreamStats != nil || ug.PassingYearStats != nil {
		t.Fatal("UG stats must not include PG breakdowns")
	}
}
