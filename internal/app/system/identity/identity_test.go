package identity

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

// recorder captures auth-state callbacks.
type recorder struct {
	mu   sync.Mutex
	seen []*Admin
}

func (r *recorder) on(a *Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, a)
}

func (r *recorder) states() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.seen))
	for i, a := range r.seen {
		out[i] = a != nil
	}
	return out
}

func TestState_ImmediateCallback(t *testing.T) {
	var s state
	rec := &recorder{}
	unsub := s.OnAuthStateChange(rec.on)
	defer unsub()

	if got := rec.states(); len(got) != 1 || got[0] {
		t.Fatalf("initial callbacks = %v, want one signed-out call", got)
	}

	s.set(&Admin{ID: "1", Email: "a@example.com"})
	s.set(&Admin{ID: "1", Email: "a@example.com"}) // unchanged: no callback
	s.set(nil)

	want := []bool{false, true, false}
	got := rec.states()
	if len(got) != len(want) {
		t.Fatalf("callbacks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callback %d signed-in = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestState_Unsubscribe(t *testing.T) {
	var s state
	rec := &recorder{}
	unsub := s.OnAuthStateChange(rec.on)
	unsub()
	unsub() // idempotent

	s.set(&Admin{ID: "1"})
	if got := rec.states(); len(got) != 1 {
		t.Errorf("got %d callbacks after unsubscribe, want only the initial one", len(got))
	}
}

func TestState_CurrentIsCopy(t *testing.T) {
	var s state
	s.set(&Admin{ID: "1", Name: "Owner"})
	cur := s.Current()
	cur.Name = "changed"
	if s.Current().Name != "Owner" {
		t.Error("Current() exposes internal state")
	}
}

func newProvider(t *testing.T, limiter Limiter) *Mongo {
	t.Helper()
	db := testutil.SetupTestDB(t)
	m := NewMongo(db, limiter, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := m.EnsureAdmin(ctx, "Owner@Example.com", "Owner", "correct-horse"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	return m
}

func TestMongo_SignIn(t *testing.T) {
	m := newProvider(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := &recorder{}
	defer m.OnAuthStateChange(rec.on)()

	a, err := m.SignIn(ctx, " owner@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if a.Email != "owner@example.com" || a.Name != "Owner" || a.ID == "" {
		t.Errorf("SignIn() = %+v", a)
	}
	if m.Current() == nil {
		t.Error("Current() is nil after SignIn")
	}

	if err := m.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if m.Current() != nil {
		t.Error("Current() is set after SignOut")
	}

	want := []bool{false, true, false}
	got := rec.states()
	if len(got) != len(want) {
		t.Fatalf("callbacks = %v, want %v", got, want)
	}
}

func TestMongo_SignIn_Invalid(t *testing.T) {
	m := newProvider(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "owner@example.com", "wrong-password"},
		{"unknown email", "wrong@x.com", "bad"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := m.SignIn(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
			}
			if a != nil {
				t.Errorf("SignIn() returned admin %+v", a)
			}
		})
	}
	if m.Current() != nil {
		t.Error("failed sign-ins changed the auth state")
	}
}

func TestMongo_SignIn_Lockout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	limiter := loginlimit.New(db, loginlimit.Policy{MaxAttempts: 2, Window: time.Minute, Lockout: time.Minute})
	m := NewMongo(db, limiter, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := m.EnsureAdmin(ctx, "owner@example.com", "Owner", "correct-horse"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if _, err := m.SignIn(ctx, "owner@example.com", "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v", i+1, err)
		}
	}
	if _, err := m.SignIn(ctx, "owner@example.com", "correct-horse"); !errors.Is(err, ErrLockedOut) {
		t.Errorf("SignIn() while locked error = %v, want ErrLockedOut", err)
	}
}

func TestMongo_EnsureAdmin(t *testing.T) {
	m := newProvider(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := m.EnsureAdmin(ctx, "owner@example.com", "Someone Else", "another-pass")
	if err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	if created {
		t.Error("EnsureAdmin() created a duplicate account")
	}
	// The original password still works.
	if _, err := m.SignIn(ctx, "owner@example.com", "correct-horse"); err != nil {
		t.Errorf("SignIn() with original password error = %v", err)
	}

	if _, err := m.EnsureAdmin(ctx, "not-an-email", "x", "correct-horse"); err == nil {
		t.Error("EnsureAdmin() accepted an invalid email")
	}
	if _, err := m.EnsureAdmin(ctx, "b@example.com", "x", "short"); err == nil {
		t.Error("EnsureAdmin() accepted a short password")
	}
}

func TestMongo_SetPassword(t *testing.T) {
	m := newProvider(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := m.SetPassword(ctx, "owner@example.com", "brand-new-pass"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if _, err := m.SignIn(ctx, "owner@example.com", "brand-new-pass"); err != nil {
		t.Errorf("SignIn() with new password error = %v", err)
	}
	if err := m.SetPassword(ctx, "missing@example.com", "brand-new-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("SetPassword() for unknown admin error = %v", err)
	}
}

func TestMongo_Lookup(t *testing.T) {
	m := newProvider(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := m.SignIn(ctx, "owner@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	got, err := m.Lookup(ctx, a.ID)
	if err != nil || got == nil || got.Email != "owner@example.com" {
		t.Errorf("Lookup() = %+v, %v", got, err)
	}

	for _, id := range []string{"not-hex", "507f1f77bcf86cd799439011"} {
		if got, err := m.Lookup(ctx, id); got != nil || err != nil {
			t.Errorf("Lookup(%q) = %+v, %v; want nil, nil", id, got, err)
		}
	}
}
