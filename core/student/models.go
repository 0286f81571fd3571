package student

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Grades
const (
	Grade9th  = "9th Grade"
	Grade10th = "10th Grade"
	Grade11th = "11th Grade"
	Grade12th = "12th Grade"
)

// Subjects
const (
	SubjectMath    = "math"
	SubjectScience = "science"
	SubjectEnglish = "english"
	SubjectHistory = "history"
)

var (
	Grades   = []string{Grade9th, Grade10th, Grade11th, Grade12th}
	Subjects = []string{SubjectMath, SubjectScience, SubjectEnglish, SubjectHistory}
)

// maxScoresPerSubject caps each subject sequence: a recency window,
// not a full history. The oldest score is dropped on overflow.
const maxScoresPerSubject = 10

// Performance maps a subject to its recent scores, most-recent-first.
// A roster record always carries all of Subjects as keys, possibly with
// empty sequences.
type Performance map[string][]int

// NewPerformance returns an empty Performance carrying all subject keys.
func NewPerformance() Performance {
	perf := make(Performance, len(Subjects))
	for _, subj := range Subjects {
		perf[subj] = []int{}
	}
	return perf
}

// normalize ensures exactly the fixed subject keys are present: missing
// subjects get empty sequences, unknown subjects are dropped.
func (p Performance) normalize() Performance {
	norm := make(Performance, len(Subjects))
	for _, subj := range Subjects {
		if scores, ok := p[subj]; ok && scores != nil {
			norm[subj] = scores
		} else {
			norm[subj] = []int{}
		}
	}
	return norm
}

// add prepends score to the subject sequence and drops the oldest entry
// beyond maxScoresPerSubject.
func (p Performance) add(subject string, score int) {
	scores := append([]int{score}, p[subject]...)
	if len(scores) > maxScoresPerSubject {
		scores = scores[:maxScoresPerSubject]
	}
	p[subject] = scores
}

// Student is the roster record. JSON field names match the persisted slot
// and export file format; changing them breaks round-trips with existing data.
type Student struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Grade       string      `json:"grade"`
	DateOfBirth string      `json:"dateOfBirth,omitempty"` // YYYY-MM-DD; required for self-login
	Performance Performance `json:"performance"`
	Attendance  int         `json:"attendance"`
	LastUpdated string      `json:"lastUpdated"` // YYYY-MM-DD, set on every mutation
}

// AverageScore averages all scores across all subjects; 0 when unscored.
func (s Student) AverageScore() float64 {
	var sum, n int
	for _, scores := range s.Performance {
		for _, score := range scores {
			sum += score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// SubjectAverage averages the scores of one subject; 0 when unscored.
func (s Student) SubjectAverage(subject string) float64 {
	scores := s.Performance[subject]
	if len(scores) == 0 {
		return 0
	}
	var sum int
	for _, score := range scores {
		sum += score
	}
	return float64(sum) / float64(len(scores))
}

// HasScores reports whether any subject has at least one score.
func (s Student) HasScores() bool {
	for _, scores := range s.Performance {
		if len(scores) > 0 {
			return true
		}
	}
	return false
}

// RoundedAverage rounds to the nearest integer the way the dashboards
// display averages.
func RoundedAverage(avg float64) int {
	return int(math.Round(avg))
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,basicemail"`
	Grade       string `json:"grade" validate:"required,grade"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,isodate"`
	Attendance  int    `json:"attendance" validate:"min=0,max=100"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Empty fields keep their current values; ID is immutable.
type UpdateStudent struct {
	Name        string `json:"name" validate:"omitempty,min=2"`
	Email       string `json:"email" validate:"omitempty,basicemail"`
	Grade       string `json:"grade" validate:"omitempty,grade"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,isodate"`
	Attendance  *int   `json:"attendance" validate:"omitempty,min=0,max=100"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	return validate.Struct(us)
}
