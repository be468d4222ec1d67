package loginlimit

import (
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/testutil"
)

// fakeClock is a settable clock for lockout expiry tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T, p Policy) (*Store, *fakeClock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(db, p).WithClock(clock.now), clock
}

func TestNew_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db, Policy{})
	if s.policy != DefaultPolicy {
		t.Errorf("policy = %+v, want %+v", s.policy, DefaultPolicy)
	}
}

func TestStore_Check_NoRecord(t *testing.T) {
	s, _ := newTestStore(t, Policy{MaxAttempts: 3})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st, err := s.Check(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !st.Allowed || st.Remaining != 3 || st.LockedUntil != nil {
		t.Errorf("Check() = %+v, want allowed with 3 remaining", st)
	}
}

func TestStore_LocksAfterMaxAttempts(t *testing.T) {
	s, clock := newTestStore(t, Policy{MaxAttempts: 3, Window: 15 * time.Minute, Lockout: 10 * time.Minute})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i, wantRemaining := range []int{2, 1} {
		st, err := s.Fail(ctx, "Admin@Example.com")
		if err != nil {
			t.Fatalf("Fail() #%d error = %v", i+1, err)
		}
		if !st.Allowed || st.Remaining != wantRemaining {
			t.Errorf("Fail() #%d = %+v, want %d remaining", i+1, st, wantRemaining)
		}
	}

	st, err := s.Fail(ctx, "admin@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if st.Allowed || st.LockedUntil == nil {
		t.Fatalf("third Fail() = %+v, want locked", st)
	}

	// Case and whitespace do not matter.
	st, _ = s.Check(ctx, "  ADMIN@example.com ")
	if st.Allowed {
		t.Error("Check() allowed a locked account")
	}

	clock.advance(11 * time.Minute)
	st, _ = s.Check(ctx, "admin@example.com")
	if !st.Allowed || st.Remaining != 3 {
		t.Errorf("Check() after lockout = %+v, want allowed with full attempts", st)
	}

	// The first failure after an expired lockout starts a fresh window.
	st, _ = s.Fail(ctx, "admin@example.com")
	if !st.Allowed || st.Remaining != 2 {
		t.Errorf("Fail() after lockout = %+v, want 2 remaining", st)
	}
}

func TestStore_WindowExpiry(t *testing.T) {
	s, clock := newTestStore(t, Policy{MaxAttempts: 3, Window: time.Minute, Lockout: time.Hour})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s.Fail(ctx, "a@example.com")
	s.Fail(ctx, "a@example.com")
	clock.advance(2 * time.Minute)

	st, err := s.Fail(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Allowed || st.Remaining != 2 {
		t.Errorf("Fail() after window = %+v, want counter restarted", st)
	}
}

func TestStore_Reset(t *testing.T) {
	s, _ := newTestStore(t, Policy{MaxAttempts: 2})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s.Fail(ctx, "a@example.com")
	if err := s.Reset(ctx, "A@example.com"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	a, err := s.Get(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if a != nil {
		t.Errorf("record survived Reset: %+v", a)
	}
}

func TestStore_Purge(t *testing.T) {
	s, clock := newTestStore(t, DefaultPolicy)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s.Fail(ctx, "old@example.com")
	clock.advance(48 * time.Hour)
	s.Fail(ctx, "new@example.com")

	n, err := s.Purge(ctx, clock.t.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Purge() removed %d, want 1", n)
	}
	if a, _ := s.Get(ctx, "new@example.com"); a == nil {
		t.Error("recent record was purged")
	}
}
