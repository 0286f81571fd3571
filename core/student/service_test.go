package student

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/storage/kv/inmem"
)

func newTestService() (*Service, *memkv.Store) {
	kv := memkv.NewStore()
	return NewService(kv), kv
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestService_loadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	// never-written slot is absent, not an error
	roster, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, roster)

	want := SampleRoster()
	require.NoError(t, svc.Save(ctx, want))
	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, svc.Clear(ctx))
	roster, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, roster)
}

func TestService_corruptSlot(t *testing.T) {
	ctx := context.Background()
	svc, kv := newTestService()

	require.NoError(t, kv.Set(ctx, RosterSlot, []byte("{not json")))

	_, err := svc.Load(ctx)
	require.Error(t, err)
	assert.True(t, core.IsStorageRead(err))

	// LoadOrSeed must not mask corruption with sample data
	_, err = svc.LoadOrSeed(ctx)
	require.Error(t, err)
	assert.True(t, core.IsStorageRead(err))
}

func TestService_LoadOrSeed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	// first call seeds and persists
	roster, err := svc.LoadOrSeed(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 3)

	// mutations survive; the sample fallback only applies to an absent slot
	require.NoError(t, svc.Save(ctx, roster[:1]))
	roster, err = svc.LoadOrSeed(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 1)

	// an imported empty roster stays empty
	_, err = svc.ImportSnapshot(ctx, []byte(`[]`))
	require.NoError(t, err)
	roster, err = svc.LoadOrSeed(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 0)
}

func TestService_Info(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	info, err := svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, Info{}, info)

	// lastUpdated comes from the FIRST record in storage order, no scan
	roster := SampleRoster()
	roster[0].LastUpdated = "2023-06-01"
	roster[2].LastUpdated = "2024-05-01" // more recent but not first
	require.NoError(t, svc.Save(ctx, roster))

	info, err = svc.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, Info{Exists: true, Count: 3, LastUpdated: "2023-06-01"}, info)
}

func TestExportSnapshot(t *testing.T) {
	_, err := ExportSnapshot(nil)
	assert.Equal(t, ErrNoData, err)

	// empty is exportable; only absence is not
	data, err := ExportSnapshot([]Student{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = ExportSnapshot(SampleRoster())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "snapshot should be indented")

	var back []Student
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SampleRoster(), back)
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "student-performance-data-2024-03-07.json", ExportFilename(now))
}

func TestService_ImportSnapshot(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		data    string
		wantLen int
		wantErr error
	}{
		{name: "array of students", data: `[{"id": 1, "name": "John Doe", "attendance": 95}]`, wantLen: 1},
		{name: "empty array", data: `[]`, wantLen: 0},
		{name: "object", data: `{"students": []}`, wantErr: ErrImportFormat},
		{name: "scalar", data: `42`, wantErr: ErrImportFormat},
		{name: "null", data: `null`, wantErr: ErrImportFormat},
		{name: "malformed", data: `[{`, wantErr: ErrImportFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			seeded, err := svc.Seed(ctx)
			require.NoError(t, err)

			got, err := svc.ImportSnapshot(ctx, []byte(tt.data))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				// failed import leaves the roster untouched
				roster, lerr := svc.Load(ctx)
				require.NoError(t, lerr)
				assert.Equal(t, seeded, roster)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			roster, err := svc.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, roster, tt.wantLen)
		})
	}
}

func TestService_ImportSnapshot_normalizesPerformance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	data := `[{"id": 1, "name": "John Doe", "performance": {"math": [90], "art": [50]}}]`
	got, err := svc.ImportSnapshot(ctx, []byte(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Performance{
		SubjectMath:    {90},
		SubjectScience: {},
		SubjectEnglish: {},
		SubjectHistory: {},
	}, got[0].Performance)
}

func TestService_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	mockNow(t, time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))

	stu, err := svc.Create(ctx, NewStudent{
		Name:        "Amina Hassan",
		Email:       "amina@example.com",
		Grade:       Grade12th,
		DateOfBirth: "2006-02-11",
		Attendance:  97,
	})
	require.NoError(t, err)
	assert.NotZero(t, stu.ID)
	assert.Equal(t, NewPerformance(), stu.Performance)
	assert.Equal(t, "2024-03-07", stu.LastUpdated)

	// partial update: empty fields keep current values
	mockNow(t, time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC))
	att := 90
	updated, err := svc.Update(ctx, stu.ID, UpdateStudent{Attendance: &att})
	require.NoError(t, err)
	assert.Equal(t, stu.Name, updated.Name)
	assert.Equal(t, stu.Email, updated.Email)
	assert.Equal(t, 90, updated.Attendance)
	assert.Equal(t, "2024-03-08", updated.LastUpdated)

	_, err = svc.Update(ctx, 999, UpdateStudent{Attendance: &att})
	assert.Equal(t, ErrNotFound, err)

	// lookup
	got, err := svc.GetByID(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	_, err = svc.GetByID(ctx, 999)
	assert.Equal(t, ErrNotFound, err)

	// delete
	require.NoError(t, svc.Delete(ctx, stu.ID))
	_, err = svc.GetByID(ctx, stu.ID)
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, ErrNotFound, svc.Delete(ctx, stu.ID))
}

func TestService_AddScore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	mockNow(t, time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))

	roster, err := svc.Seed(ctx)
	require.NoError(t, err)
	john := roster[0]

	stu, err := svc.AddScore(ctx, john.ID, SubjectMath, 99)
	require.NoError(t, err)
	// newest first
	assert.Equal(t, 99, stu.Performance[SubjectMath][0])
	assert.Equal(t, "2024-03-07", stu.LastUpdated)

	// validation
	_, err = svc.AddScore(ctx, john.ID, "art", 99)
	var vErr *core.ValidationError
	require.IsType(t, vErr, err)
	_, err = svc.AddScore(ctx, john.ID, SubjectMath, 101)
	require.IsType(t, vErr, err)
	_, err = svc.AddScore(ctx, john.ID, SubjectMath, -1)
	require.IsType(t, vErr, err)

	_, err = svc.AddScore(ctx, 999, SubjectMath, 50)
	assert.Equal(t, ErrNotFound, err)
}

func TestService_AddScore_recencyWindow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	stu, err := svc.Create(ctx, NewStudent{Name: "Amina Hassan", Email: "amina@example.com", Grade: Grade12th, DateOfBirth: "2006-02-11"})
	require.NoError(t, err)

	for score := 1; score <= 12; score++ {
		stu, err = svc.AddScore(ctx, stu.ID, SubjectMath, score)
		require.NoError(t, err)
	}

	// capped at 10, newest first, oldest two dropped
	assert.Equal(t, []int{12, 11, 10, 9, 8, 7, 6, 5, 4, 3}, stu.Performance[SubjectMath])
}

func TestService_BulkAddScores(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Seed(ctx)
	require.NoError(t, err)

	lines := strings.Join([]string{
		"John Doe, math, 91",
		"JANE SMITH, science, 88", // names match case-insensitively
		"",                        // blank rows skipped
		"Nobody, math, 50",        // unknown student skipped
		"John Doe, art, 70",       // unknown subject skipped
		"John Doe, math, lol",     // bad score skipped
		"John Doe, math",          // too few columns skipped
	}, "\n")

	applied, err := svc.BulkAddScores(ctx, lines)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	roster, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 91, roster[0].Performance[SubjectMath][0])
	assert.Equal(t, 88, roster[1].Performance[SubjectScience][0])
}
