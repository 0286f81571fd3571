package session

import "time"

// Persisted slots. One per session kind; both may be live at once, the
// two roles are not mutually exclusive.
const (
	AdminSlot   = "adminSession"
	StudentSlot = "studentSession"
)

// User types reported by CurrentUser.
const (
	TypeAdmin   = "admin"
	TypeStudent = "student"
)

// Admin is the administrator session record. Sessions are only ever stored
// valid: absence of a record means logged out.
type Admin struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	LoginTime       time.Time `json:"loginTime"`
	Token           string    `json:"token"` // opaque, informational only
}

// Student is the student session record, keyed by the roster record's
// typed id rather than the login form's string.
type Student struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	StudentID       int       `json:"studentId"`
	Name            string    `json:"name"`
	LoginTime       time.Time `json:"loginTime"`
	Token           string    `json:"token"`
}

// UserInfo describes whoever is currently signed in, for display and
// logging.
type UserInfo struct {
	Type      string    `json:"type"` // TypeAdmin | TypeStudent
	Username  string    `json:"username,omitempty"`
	StudentID int       `json:"studentId,omitempty"`
	Name      string    `json:"name"`
	LoginTime time.Time `json:"loginTime"`
}
