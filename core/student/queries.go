package student

import (
	"sort"
	"strings"
)

// Sort keys accepted by QueryFilter.SortBy.
const (
	SortByName        = "name"
	SortByGrade       = "grade"
	SortByAttendance  = "attendance"
	SortByPerformance = "performance"
)

// QueryFilter narrows and orders a roster view.
// Search does a case-insensitive match on name or email.
type QueryFilter struct {
	Search string `json:"search" query:"search"`
	Grade  string `json:"grade" query:"grade"`
	SortBy string `json:"sort" query:"sort"`
}

func (f *QueryFilter) Clean() {
	f.Search = strings.TrimSpace(f.Search)
	f.Grade = strings.TrimSpace(f.Grade)
	f.SortBy = strings.TrimSpace(strings.ToLower(f.SortBy))
}

// Filter applies f to a roster snapshot and returns the narrowed, ordered
// view. The input slice is not modified.
func Filter(roster []Student, f QueryFilter) []Student {
	search := strings.ToLower(f.Search)

	out := make([]Student, 0, len(roster))
	for _, s := range roster {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			continue
		}
		if f.Grade != "" && f.Grade != "all" && s.Grade != f.Grade {
			continue
		}
		out = append(out, s)
	}

	switch f.SortBy {
	case SortByGrade:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Grade < out[j].Grade })
	case SortByAttendance: // highest first
		sort.SliceStable(out, func(i, j int) bool { return out[i].Attendance > out[j].Attendance })
	case SortByPerformance: // best average first
		sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore() > out[j].AverageScore() })
	case SortByName, "":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

// RankedStudent decorates a Student with its overall average for dashboard
// listings.
type RankedStudent struct {
	Student
	AverageScore float64 `json:"avgScore"`
}

// Summary is the dashboard aggregate over a roster snapshot.
type Summary struct {
	TotalStudents     int             `json:"totalStudents"`
	AverageAttendance int             `json:"averageAttendance"`
	TopPerformers     []RankedStudent `json:"topPerformers"` // top 3 by average, best first
	NeedAttention     []RankedStudent `json:"needAttention"` // averaging below 80, worst first
	NewStudents       []Student       `json:"newStudents"`   // no scores recorded yet
}

// Summarize computes the dashboard stats over a roster snapshot.
func Summarize(roster []Student) Summary {
	sum := Summary{
		TotalStudents: len(roster),
		TopPerformers: []RankedStudent{},
		NeedAttention: []RankedStudent{},
		NewStudents:   []Student{},
	}

	var attendanceSum int
	scored := make([]RankedStudent, 0, len(roster))
	for _, s := range roster {
		attendanceSum += s.Attendance
		if !s.HasScores() {
			sum.NewStudents = append(sum.NewStudents, s)
			continue
		}
		// a zero average (all recorded scores are 0) ranks nowhere
		if avg := s.AverageScore(); avg > 0 {
			scored = append(scored, RankedStudent{Student: s, AverageScore: avg})
		}
	}
	if len(roster) > 0 {
		sum.AverageAttendance = RoundedAverage(float64(attendanceSum) / float64(len(roster)))
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].AverageScore > scored[j].AverageScore })
	top := scored
	if len(top) > 3 {
		top = top[:3]
	}
	sum.TopPerformers = append(sum.TopPerformers, top...)

	for i := len(scored) - 1; i >= 0; i-- { // worst first
		if scored[i].AverageScore < 80 {
			sum.NeedAttention = append(sum.NeedAttention, scored[i])
		}
	}
	return sum
}
