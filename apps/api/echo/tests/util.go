package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/kv/inmem"
	"github.com/trezcool/shule/tests"
)

var errNotAuthed = httpErr{Error: "not authenticated"}

type env struct {
	server     Server
	kv         *memkv.Store
	studentSvc *student.Service
	sessions   *session.Store
}

func setup(t *testing.T) *env {
	conf := &core.Config{
		AppName:           "Shule",
		Env:               "TEST",
		TestMode:          true,
		SecretKey:         "test-secret",
		AdminSessionTTL:   24 * time.Hour,
		StudentSessionTTL: 8 * time.Hour,
	}

	kv := memkv.NewStore()
	studentSvc := student.NewService(kv)
	sessions := session.NewStore(kv, conf)

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)

	server := NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0)),
			StudentSvc:     studentSvc,
			SessionStore:   sessions,
			Auth:           auth.NewAuthenticator(conf),
			Validate:       validate,
			Translator:     translator,
		},
	)
	return &env{
		server:     server,
		kv:         kv,
		studentSvc: studentSvc,
		sessions:   sessions,
	}
}

// activateAdmin stores a live admin session, bypassing the login endpoint.
func (e *env) activateAdmin(t *testing.T) {
	err := e.sessions.SetAdmin(context.Background(), session.Admin{
		IsAuthenticated: true,
		Username:        "admin",
		Name:            "System Administrator",
		LoginTime:       time.Now().UTC(),
		Token:           "test-token",
	})
	if err != nil {
		t.Fatalf("activateAdmin() failed: %v", err)
	}
}

// activateStudent stores a live session for the given roster record.
func (e *env) activateStudent(t *testing.T, stu student.Student) {
	err := e.sessions.SetStudent(context.Background(), session.Student{
		IsAuthenticated: true,
		StudentID:       stu.ID,
		Name:            stu.Name,
		LoginTime:       time.Now().UTC(),
		Token:           "test-token",
	})
	if err != nil {
		t.Fatalf("activateStudent() failed: %v", err)
	}
}

func (e *env) seed(t *testing.T) []student.Student {
	roster, err := e.studentSvc.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed() failed: %v", err)
	}
	return roster
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	asAdmin  bool
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data mismatch:\n%s", testutil.JSONDiff(t, tt.wantData, rec.Body.Bytes()))
	}
}
