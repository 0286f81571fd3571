package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/student"
)

func TestDataApi_gating(t *testing.T) {
	e := setup(t)

	paths := []httpTest{
		{method: http.MethodGet, path: "/v1/data/info"},
		{method: http.MethodGet, path: "/v1/data/export"},
		{method: http.MethodPost, path: "/v1/data/import"},
		{method: http.MethodPost, path: "/v1/data/seed"},
		{method: http.MethodPost, path: "/v1/data/clear"},
	}
	for _, tt := range paths {
		t.Run(tt.path, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			e.server.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthed)}, rec)
		})
	}
}

func TestDataApi_info(t *testing.T) {
	e := setup(t)
	e.activateAdmin(t)

	// never-written slot
	req, rec := newRequest(http.MethodGet, "/v1/data/info")
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, student.Info{}),
	}, rec)

	// seeded slot: count and the FIRST record's lastUpdated
	e.seed(t)
	req, rec = newRequest(http.MethodGet, "/v1/data/info")
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, student.Info{Exists: true, Count: 3, LastUpdated: "2024-01-15"}),
	}, rec)
}

func TestDataApi_export(t *testing.T) {
	e := setup(t)
	e.activateAdmin(t)

	// nothing to export
	req, rec := newRequest(http.MethodGet, "/v1/data/export")
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "no student data to export"}),
	}, rec)

	roster := e.seed(t)
	req, rec = newRequest(http.MethodGet, "/v1/data/export")
	e.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// attachment with the dated filename convention
	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="student-performance-data-`), disposition)
	assert.True(t, strings.HasSuffix(disposition, `.json"`), disposition)

	// pretty-printed and re-importable
	assert.True(t, strings.HasPrefix(rec.Body.String(), "[\n  {"), "export should be indented")
	var got []student.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, roster, got)
}

func TestDataApi_importData(t *testing.T) {
	e := setup(t)
	e.activateAdmin(t)

	wantFormatErr := marchallObj(t, httpErr{Error: "invalid data format: expected a JSON array of students"})

	tests := []httpTest{
		{
			name:     "array body replaces the roster",
			body:     []byte(`[{"id": 7, "name": "Amina Hassan", "email": "amina@example.com", "grade": "12th Grade", "performance": {"math": [90]}, "attendance": 97, "lastUpdated": "2024-02-01"}]`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]int{"count": 1}),
		},
		{
			name:     "empty array is valid",
			body:     []byte(`[]`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]int{"count": 0}),
		},
		{
			name:     "object body is rejected",
			body:     []byte(`{"students": []}`),
			wantCode: http.StatusBadRequest,
			wantData: wantFormatErr,
		},
		{
			name:     "null body is rejected",
			body:     []byte(`null`),
			wantCode: http.StatusBadRequest,
			wantData: wantFormatErr,
		},
		{
			name:     "malformed JSON is rejected",
			body:     []byte(`[{`),
			wantCode: http.StatusBadRequest,
			wantData: wantFormatErr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/data/import", tt.body)
			e.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the last successful import ([]) is what persists
	roster, err := e.studentSvc.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestDataApi_importNormalizesPerformance(t *testing.T) {
	e := setup(t)
	e.activateAdmin(t)

	body := []byte(`[{"id": 7, "name": "Amina Hassan", "email": "amina@example.com", "grade": "12th Grade", "performance": {"math": [90], "art": [50]}, "attendance": 97, "lastUpdated": "2024-02-01"}]`)
	req, rec := newRequest(http.MethodPost, "/v1/data/import", body)
	e.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	stu, err := e.studentSvc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	// unknown subjects dropped, missing subjects filled in
	assert.Equal(t, student.Performance{
		"math":    {90},
		"science": {},
		"english": {},
		"history": {},
	}, stu.Performance)
}

func TestDataApi_corruptRosterSlot(t *testing.T) {
	e := setup(t)
	e.activateAdmin(t)

	require.NoError(t, e.kv.Set(context.Background(), student.RosterSlot, []byte(`{not json`)))

	req, rec := newRequest(http.MethodGet, "/v1/data/info")
	e.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "reading slot")
}

func TestDataApi_seedAndClear(t *testing.T) {
	e := setup(t)
	e.activateAdmin(t)
	ctx := context.Background()

	req, rec := newRequest(http.MethodPost, "/v1/data/seed")
	e.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var got []student.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3)

	req, rec = newRequest(http.MethodPost, "/v1/data/clear")
	e.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	roster, err := e.studentSvc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, roster)
}
