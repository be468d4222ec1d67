// internal/app/store/loginlimit/store.go
package loginlimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Policy controls when repeated sign-in failures lock an account.
type Policy struct {
	MaxAttempts int           // failures allowed inside Window before lockout
	Window      time.Duration // counting window, started by the first failure
	Lockout     time.Duration // how long a lockout lasts
}

// DefaultPolicy is five failures in 15 minutes, then a 15 minute lockout.
var DefaultPolicy = Policy{MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 15 * time.Minute}

// Attempt tracks failed sign-ins for one email address.
type Attempt struct {
	Email        string     `bson:"_id"` // normalized (lowercase)
	AttemptCount int        `bson:"attempt_count"`
	WindowStart  time.Time  `bson:"window_start"`
	LockedUntil  *time.Time `bson:"locked_until"`
	LastAttempt  time.Time  `bson:"last_attempt"`
}

// Status is the outcome of a check or a recorded failure.
type Status struct {
	Allowed     bool
	Remaining   int        // attempts left before lockout; 0 when locked
	LockedUntil *time.Time // nil unless locked
}

// Store persists failed sign-in counts in the login_attempts collection.
type Store struct {
	c      *mongo.Collection
	policy Policy
	now    func() time.Time
}

// New creates a Store with the given policy. Zero fields take DefaultPolicy values.
func New(db *mongo.Database, policy Policy) *Store {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if policy.Window <= 0 {
		policy.Window = DefaultPolicy.Window
	}
	if policy.Lockout <= 0 {
		policy.Lockout = DefaultPolicy.Lockout
	}
	return &Store{
		c:      db.Collection("login_attempts"),
		policy: policy,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that reads time from now. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check reports whether email may attempt to sign in now.
func (s *Store) Check(ctx context.Context, email string) (Status, error) {
	a, err := s.get(ctx, normalize(email))
	if err != nil {
		return Status{Allowed: true, Remaining: s.policy.MaxAttempts}, err
	}
	return s.status(a), nil
}

// Fail records a failed sign-in and returns the resulting status.
func (s *Store) Fail(ctx context.Context, email string) (Status, error) {
	key := normalize(email)
	now := s.now()

	a, err := s.get(ctx, key)
	if err != nil {
		return Status{Allowed: true, Remaining: s.policy.MaxAttempts}, err
	}
	expired := a != nil && a.LockedUntil != nil && !now.Before(*a.LockedUntil)
	if a == nil || expired || now.After(a.WindowStart.Add(s.policy.Window)) {
		a = &Attempt{Email: key, WindowStart: now}
	}
	a.AttemptCount++
	a.LastAttempt = now
	a.LockedUntil = nil
	if a.AttemptCount >= s.policy.MaxAttempts {
		until := now.Add(s.policy.Lockout)
		a.LockedUntil = &until
	}

	_, err = s.c.ReplaceOne(ctx, bson.M{"_id": key}, a, options.Replace().SetUpsert(true))
	if err != nil {
		return Status{Allowed: true, Remaining: s.policy.MaxAttempts}, err
	}
	return s.status(a), nil
}

// Reset clears the failure count for email after a successful sign-in.
func (s *Store) Reset(ctx context.Context, email string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": normalize(email)})
	return err
}

// Purge deletes records whose last attempt is older than cutoff and returns
// how many were removed.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"last_attempt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Get returns the record for email, or nil if there is none.
func (s *Store) Get(ctx context.Context, email string) (*Attempt, error) {
	return s.get(ctx, normalize(email))
}

func (s *Store) get(ctx context.Context, key string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) status(a *Attempt) Status {
	now := s.now()
	if a == nil {
		return Status{Allowed: true, Remaining: s.policy.MaxAttempts}
	}
	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return Status{Allowed: false, LockedUntil: a.LockedUntil}
	}
	if a.LockedUntil != nil || now.After(a.WindowStart.Add(s.policy.Window)) {
		// Lockout served or window expired.
		return Status{Allowed: true, Remaining: s.policy.MaxAttempts}
	}
	return Status{Allowed: true, Remaining: s.policy.MaxAttempts - a.AttemptCount}
}
