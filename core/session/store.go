package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var nowFunc = time.Now // mockable

// Store owns the (at most one admin, at most one student) session pair.
// Expiry is lazy: a stale slot is detected and deleted on the read that
// finds it; no background timer ever clears a slot that is not being read.
type Store struct {
	kv         core.KVStore
	adminTTL   time.Duration
	studentTTL time.Duration
	mu         sync.Mutex
}

func NewStore(kv core.KVStore, conf *core.Config) *Store {
	return &Store{
		kv:         kv,
		adminTTL:   conf.AdminSessionTTL,
		studentTTL: conf.StudentSessionTTL,
	}
}

// LoadAdmin reads the persisted admin session. Returns nil (no error) when
// the slot is absent, expired or unreadable; the latter two clear the slot
// as a side effect.
func (st *Store) LoadAdmin(ctx context.Context) (*Admin, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var sess Admin
	ok, err := st.loadSlot(ctx, AdminSlot, &sess)
	if err != nil || !ok {
		return nil, err
	}
	if !st.valid(sess.IsAuthenticated, sess.LoginTime, st.adminTTL) {
		return nil, st.clearSlot(ctx, AdminSlot)
	}
	return &sess, nil
}

// LoadStudent is LoadAdmin's counterpart with the (shorter) student window.
func (st *Store) LoadStudent(ctx context.Context) (*Student, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var sess Student
	ok, err := st.loadSlot(ctx, StudentSlot, &sess)
	if err != nil || !ok {
		return nil, err
	}
	if !st.valid(sess.IsAuthenticated, sess.LoginTime, st.studentTTL) {
		return nil, st.clearSlot(ctx, StudentSlot)
	}
	return &sess, nil
}

// SetAdmin overwrites the admin slot unconditionally. There is no refresh;
// logging in again stores a new record with a new loginTime.
func (st *Store) SetAdmin(ctx context.Context, sess Admin) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.setSlot(ctx, AdminSlot, sess)
}

// SetStudent overwrites the student slot unconditionally.
func (st *Store) SetStudent(ctx context.Context, sess Student) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.setSlot(ctx, StudentSlot, sess)
}

// ClearAdmin removes the admin slot without touching the student one.
func (st *Store) ClearAdmin(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.clearSlot(ctx, AdminSlot)
}

// ClearStudent removes the student slot without touching the admin one.
func (st *Store) ClearStudent(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.clearSlot(ctx, StudentSlot)
}

// ClearAll removes both slots.
func (st *Store) ClearAll(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.clearSlot(ctx, AdminSlot); err != nil {
		return err
	}
	return st.clearSlot(ctx, StudentSlot)
}

// IsAdminActive recomputes from the current slot contents on every call:
// expiry can change the answer between two calls, so nothing is cached.
func (st *Store) IsAdminActive(ctx context.Context) bool {
	sess, err := st.LoadAdmin(ctx)
	return err == nil && sess != nil
}

func (st *Store) IsStudentActive(ctx context.Context) bool {
	sess, err := st.LoadStudent(ctx)
	return err == nil && sess != nil
}

func (st *Store) IsAnyActive(ctx context.Context) bool {
	return st.IsAdminActive(ctx) || st.IsStudentActive(ctx)
}

// CurrentUser reports whoever is signed in, the admin taking precedence
// when both sessions are live. Returns nil when no one is.
func (st *Store) CurrentUser(ctx context.Context) *UserInfo {
	if adm, err := st.LoadAdmin(ctx); err == nil && adm != nil {
		return &UserInfo{
			Type:      TypeAdmin,
			Username:  adm.Username,
			Name:      adm.Name,
			LoginTime: adm.LoginTime,
		}
	}
	if stu, err := st.LoadStudent(ctx); err == nil && stu != nil {
		return &UserInfo{
			Type:      TypeStudent,
			StudentID: stu.StudentID,
			Name:      stu.Name,
			LoginTime: stu.LoginTime,
		}
	}
	return nil
}

// loadSlot reads and deserializes one slot. Unreadable content is cleared
// and treated as absent; the caller just logs in again.
func (st *Store) loadSlot(ctx context.Context, slot string, dst interface{}) (bool, error) {
	data, err := st.kv.Get(ctx, slot)
	if err != nil {
		if err == core.ErrSlotNotFound {
			return false, nil
		}
		return false, errors.Wrapf(err, "getting slot %q", slot)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, st.clearSlot(ctx, slot)
	}
	return true, nil
}

func (st *Store) setSlot(ctx context.Context, slot string, sess interface{}) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrapf(err, "marshalling slot %q", slot)
	}
	return errors.Wrapf(st.kv.Set(ctx, slot, data), "setting slot %q", slot)
}

func (st *Store) clearSlot(ctx context.Context, slot string) error {
	return errors.Wrapf(st.kv.Delete(ctx, slot), "deleting slot %q", slot)
}

// valid applies the lazy-expiry rule: a session holds until its age reaches
// the threshold. A record stored un-authenticated is treated as stale too.
func (st *Store) valid(isAuthenticated bool, loginTime time.Time, ttl time.Duration) bool {
	return isAuthenticated && nowFunc().Sub(loginTime) < ttl
}
