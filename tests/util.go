package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/shule/core/student"
)

// CreateStudent persists a minimal roster record via the service, failing the
// test on any error.
func CreateStudent(
	t *testing.T,
	svc *student.Service,
	name, email, grade, dob string,
	attendance int,
) student.Student {
	stu, err := svc.Create(context.Background(), student.NewStudent{
		Name:        name,
		Email:       email,
		Grade:       grade,
		DateOfBirth: dob,
		Attendance:  attendance,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

// JSONDiff renders a readable unified diff of two JSON documents, both
// pretty-printed first so the diff lines up field by field.
func JSONDiff(t *testing.T, want, got []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prettyJSON(t, want)),
		B:        difflib.SplitLines(prettyJSON(t, got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("JSONDiff() failed: %v", err)
	}
	return diff
}

func prettyJSON(t *testing.T, data []byte) string {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		// not JSON; diff it as-is
		return strings.TrimSpace(string(data)) + "\n"
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("prettyJSON() failed: %v", err)
	}
	return string(pretty) + "\n"
}
