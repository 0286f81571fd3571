package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// RosterSlot is the persisted slot holding the whole roster as one JSON
// array. The key predates this codebase; renaming it orphans existing data.
const RosterSlot = "studentPerformanceData"

const dateLayout = "2006-01-02"

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound     = errors.New("student not found")
	ErrImportFormat = errors.New("invalid data format: expected a JSON array of students")
	ErrNoData       = errors.New("no student data to export")
)

// Service owns the canonical roster: every read goes through the persisted
// slot and every mutation rewrites it entirely (full replace, no merge).
// A single mutex serializes read-modify-write cycles within this process;
// independent processes sharing a backend remain last-writer-wins.
type Service struct {
	kv core.KVStore
	mu sync.Mutex
}

func NewService(kv core.KVStore) *Service {
	return &Service{kv: kv}
}

// Load reads the persisted roster. A never-written slot yields (nil, nil);
// content that does not deserialize yields a StorageReadError.
func (svc *Service) Load(ctx context.Context) ([]Student, error) {
	return svc.load(ctx)
}

func (svc *Service) load(ctx context.Context) ([]Student, error) {
	data, err := svc.kv.Get(ctx, RosterSlot)
	if err != nil {
		if err == core.ErrSlotNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "getting roster slot")
	}

	var roster []Student
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, core.NewStorageReadError(RosterSlot, err)
	}
	for i := range roster {
		roster[i].Performance = roster[i].Performance.normalize()
	}
	return roster, nil
}

// LoadOrSeed loads the roster, initializing a never-written slot with the
// sample roster (which is also persisted). Corrupt content is NOT recovered
// this way; the StorageReadError surfaces.
func (svc *Service) LoadOrSeed(ctx context.Context) ([]Student, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.load(ctx)
	if err != nil {
		return nil, err
	}
	if roster != nil {
		return roster, nil
	}

	roster = SampleRoster()
	if err := svc.save(ctx, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// Save serializes and overwrites the persisted slot entirely.
func (svc *Service) Save(ctx context.Context, roster []Student) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.save(ctx, roster)
}

func (svc *Service) save(ctx context.Context, roster []Student) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return pkgerrors.Wrap(err, "marshalling roster")
	}
	return pkgerrors.Wrap(svc.kv.Set(ctx, RosterSlot, data), "setting roster slot")
}

// Clear removes the persisted slot; a subsequent Load is absent.
func (svc *Service) Clear(ctx context.Context) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return pkgerrors.Wrap(svc.kv.Delete(ctx, RosterSlot), "deleting roster slot")
}

// Seed resets the roster to the sample data unconditionally.
func (svc *Service) Seed(ctx context.Context) ([]Student, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster := SampleRoster()
	if err := svc.save(ctx, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// Info summarizes the persisted slot.
type Info struct {
	Exists      bool   `json:"exists"`
	Count       int    `json:"count"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// Info reports whether the slot exists, how many records it holds and the
// lastUpdated of the FIRST record in storage order. The positional
// convention is deliberate, kept for compatibility: it is not a scan for
// the most recently modified record.
func (svc *Service) Info(ctx context.Context) (Info, error) {
	roster, err := svc.load(ctx)
	if err != nil {
		return Info{}, err
	}
	if roster == nil {
		return Info{}, nil
	}
	info := Info{Exists: true, Count: len(roster)}
	if len(roster) > 0 {
		info.LastUpdated = roster[0].LastUpdated
	}
	return info, nil
}

// ExportSnapshot renders a roster as the pretty-printed JSON array the
// import side accepts; structurally identical to what Load/Save round-trip.
func ExportSnapshot(roster []Student) ([]byte, error) {
	if roster == nil {
		return nil, ErrNoData
	}
	data, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshalling snapshot")
	}
	return data, nil
}

// ExportFilename returns the conventional snapshot filename for the given day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("student-performance-data-%s.json", now.UTC().Format(dateLayout))
}

// ImportSnapshot parses a snapshot and replaces the persisted roster with
// it. Any top-level value other than an array (object, scalar or malformed
// JSON) fails identically with ErrImportFormat and leaves the roster
// unchanged.
func (svc *Service) ImportSnapshot(ctx context.Context, data []byte) ([]Student, error) {
	var roster []Student
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, ErrImportFormat
	}
	if roster == nil { // "null" parses fine but is not an array
		return nil, ErrImportFormat
	}
	for i := range roster {
		roster[i].Performance = roster[i].Performance.normalize()
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if err := svc.save(ctx, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// GetByID finds one student in the persisted roster.
func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	roster, err := svc.load(ctx)
	if err != nil {
		return Student{}, err
	}
	for _, s := range roster {
		if s.ID == id {
			return s, nil
		}
	}
	return Student{}, ErrNotFound
}

// Create appends a new student to the roster and persists it. Inputs are
// assumed validated (NewStudent.Validate).
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.load(ctx)
	if err != nil {
		return Student{}, err
	}

	s := Student{
		ID:          newID(),
		Name:        ns.Name,
		Email:       ns.Email,
		Grade:       ns.Grade,
		DateOfBirth: ns.DateOfBirth,
		Performance: NewPerformance(),
		Attendance:  ns.Attendance,
		LastUpdated: today(),
	}
	roster = append(roster, s)
	if err := svc.save(ctx, roster); err != nil {
		return Student{}, err
	}
	return s, nil
}

// Update modifies an existing student in place; empty input fields keep
// their current values. The id is the immutable identity key.
func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.load(ctx)
	if err != nil {
		return Student{}, err
	}
	for i := range roster {
		if roster[i].ID != id {
			continue
		}
		if us.Name != "" {
			roster[i].Name = us.Name
		}
		if us.Email != "" {
			roster[i].Email = us.Email
		}
		if us.Grade != "" {
			roster[i].Grade = us.Grade
		}
		if us.DateOfBirth != "" {
			roster[i].DateOfBirth = us.DateOfBirth
		}
		if us.Attendance != nil {
			roster[i].Attendance = *us.Attendance
		}
		roster[i].LastUpdated = today()
		if err := svc.save(ctx, roster); err != nil {
			return Student{}, err
		}
		return roster[i], nil
	}
	return Student{}, ErrNotFound
}

// Delete removes a student from the roster.
func (svc *Service) Delete(ctx context.Context, id int) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.load(ctx)
	if err != nil {
		return err
	}
	kept := roster[:0]
	var found bool
	for _, s := range roster {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return ErrNotFound
	}
	return svc.save(ctx, kept)
}

// AddScore records a new score for one subject: prepended to the sequence,
// oldest dropped beyond the recency window.
func (svc *Service) AddScore(ctx context.Context, id int, subject string, score int) (Student, error) {
	if !isSubject(subject) {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "subject", Error: subjectText})
	}
	if score < 0 || score > 100 {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score must be between 0 and 100"})
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.load(ctx)
	if err != nil {
		return Student{}, err
	}
	for i := range roster {
		if roster[i].ID != id {
			continue
		}
		roster[i].Performance.add(subject, score)
		roster[i].LastUpdated = today()
		if err := svc.save(ctx, roster); err != nil {
			return Student{}, err
		}
		return roster[i], nil
	}
	return Student{}, ErrNotFound
}

// BulkAddScores applies "name, subject, score" lines against the roster,
// matching student names case-insensitively. Rows that match nothing (or
// name an unknown subject) are skipped; the number of applied rows is
// returned.
func (svc *Service) BulkAddScores(ctx context.Context, lines string) (int, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.load(ctx)
	if err != nil {
		return 0, err
	}

	var applied int
	for _, line := range strings.Split(strings.TrimSpace(lines), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 4)
		if len(parts) < 3 {
			continue
		}
		name := core.CleanString(parts[0], true /* lower */)
		subject := core.CleanString(parts[1], true /* lower */)
		var score int
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[2]), "%d", &score); err != nil {
			continue
		}
		if !isSubject(subject) || score < 0 || score > 100 {
			continue
		}
		for i := range roster {
			if strings.ToLower(roster[i].Name) == name {
				roster[i].Performance.add(subject, score)
				roster[i].LastUpdated = today()
				applied++
				break
			}
		}
	}
	if applied == 0 {
		return 0, nil
	}
	if err := svc.save(ctx, roster); err != nil {
		return 0, err
	}
	return applied, nil
}

func isSubject(subject string) bool {
	for _, subj := range Subjects {
		if subject == subj {
			return true
		}
	}
	return false
}

func today() string {
	return nowFunc().UTC().Format(dateLayout)
}

// newID derives a roster-unique id from the current time (millisecond
// timestamp plus a small random offset). Imported records keep their
// explicit ids.
func newID() int {
	return int(nowFunc().UnixNano()/int64(time.Millisecond)) + rand.Intn(1000)
}
