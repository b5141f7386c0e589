package application

import "sort"

// CountStat is a group-by bucket.
type CountStat struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

// MonthStat counts applications per calendar month.
type MonthStat struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// Stats is the admin overview for one kind of application.
type Stats struct {
	TotalApplications     int         `json:"totalApplications"`
	CompletedPayments     int         `json:"completedPayments"`
	PendingPayments       int         `json:"pendingPayments"`
	StreamStats           []CountStat `json:"streamStats"`
	StateStats            []CountStat `json:"stateStats"`
	MonthlyStats          []MonthStat `json:"monthlyStats"`
	GraduationStreamStats []CountStat `json:"graduationStreamStats,omitempty"`
	PassingYearStats      []CountStat `json:"passingYearStats,omitempty"`
}

const (
	topStates   = 10
	statsMonths = 12
)

// ComputeStats aggregates a full set of applications of one kind.
func ComputeStats(kind Kind, apps []*Application) Stats {
	var s Stats
	streams := map[string]int{}
	states := map[string]int{}
	gradStreams := map[string]int{}
	years := map[string]int{}
	months := map[[2]int]int{}

	for _, a := range apps {
		s.TotalApplications++
		if a.PaymentStatus == StatusCompleted {
			s.CompletedPayments++
		} else {
			s.PendingPayments++
		}
		streams[a.Stream]++
		states[a.State]++
		d := a.ApplicationDate
		months[[2]int{d.Year(), int(d.Month())}]++
		if kind == KindPG {
			gradStreams[a.GraduationStream]++
			years[a.PassingYear]++
		}
	}

	s.StreamStats = byCountDesc(streams)
	s.StateStats = byCountDesc(states)
	if len(s.StateStats) > topStates {
		s.StateStats = s.StateStats[:topStates]
	}

	s.MonthlyStats = make([]MonthStat, 0, len(months))
	for k, n := range months {
		s.MonthlyStats = append(s.MonthlyStats, MonthStat{Year: k[0], Month: k[1], Count: n})
	}
	sort.Slice(s.MonthlyStats, func(i, j int) bool {
		a, b := s.MonthlyStats[i], s.MonthlyStats[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	if len(s.MonthlyStats) > statsMonths {
		s.MonthlyStats = s.MonthlyStats[:statsMonths]
	}

	if kind == KindPG {
		s.GraduationStreamStats = byCountDesc(gradStreams)
		s.PassingYearStats = byKeyDesc(years)
	}
	return s
}

func byCountDesc(m map[string]int) []CountStat {
	out := toStats(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func byKeyDesc(m map[string]int) []CountStat {
	out := toStats(m)
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out
}

func toStats(m map[string]int) []CountStat {
	out := make([]CountStat, 0, len(m))
	for k, n := range m {
		out = append(out, CountStat{Key: k, Count: n})
	}
	return out
}
