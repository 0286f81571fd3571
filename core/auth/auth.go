package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

// The single administrator account. Fixed at build time; there is no
// account management of any kind.
const (
	AdminUsername = "admin"
	adminPassword = "admin123"
	AdminName     = "System Administrator"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrStudentNotFound      = errors.New("student ID not found")
	ErrAccountNotConfigured = errors.New("student account not properly configured")
)

var nowFunc = time.Now // mockable

// Authenticator checks credentials and mints session tokens. It holds no
// state of its own; session persistence is the session store's job.
type Authenticator struct {
	conf *core.Config
}

func NewAuthenticator(conf *core.Config) *Authenticator {
	return &Authenticator{conf: conf}
}

// AuthenticateAdmin checks the fixed administrator credentials. Exact
// string match; no trimming, no case folding.
func (a *Authenticator) AuthenticateAdmin(username, password string) (name, token string, err error) {
	if username != AdminUsername || password != adminPassword {
		return "", "", ErrInvalidCredentials
	}
	token, err = a.makeToken(AdminUsername)
	if err != nil {
		return "", "", err
	}
	return AdminName, token, nil
}

// AuthenticateStudent matches the submitted id against each record's
// stringified numeric id. The comparison is raw: "007" or " 7" never
// matches a record with id 7, and the date of birth must match the stored
// string exactly.
func (a *Authenticator) AuthenticateStudent(studentID, dateOfBirth string, roster []student.Student) (student.Student, string, error) {
	var match *student.Student
	for i := range roster {
		if studentID == strconv.Itoa(roster[i].ID) {
			match = &roster[i]
			break
		}
	}
	if match == nil {
		return student.Student{}, "", ErrStudentNotFound
	}
	if match.DateOfBirth == "" {
		return student.Student{}, "", ErrAccountNotConfigured
	}
	if dateOfBirth != match.DateOfBirth {
		return student.Student{}, "", ErrInvalidCredentials
	}
	token, err := a.makeToken(studentID)
	if err != nil {
		return student.Student{}, "", err
	}
	return *match, token, nil
}

// makeToken mints the opaque token stored alongside a session. It is signed
// for the sake of being well-formed but nothing ever verifies it; sessions
// live and die by the store's slot contents alone.
func (a *Authenticator) makeToken(subject string) (string, error) {
	claims := jwt.StandardClaims{
		Issuer:   a.conf.AppName,
		Subject:  subject,
		IssuedAt: nowFunc().Unix(),
		Id:       uuid.New().String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.conf.SecretKey))
	return token, pkgerrors.Wrap(err, "signing session token")
}
