// internal/app/system/identity/mongo.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/system/authutil"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Limiter throttles repeated sign-in failures. *loginlimit.Store implements it.
type Limiter interface {
	Check(ctx context.Context, email string) (loginlimit.Status, error)
	Fail(ctx context.Context, email string) (loginlimit.Status, error)
	Reset(ctx context.Context, email string) error
}

// Mongo is a Provider backed by the admins collection.
type Mongo struct {
	state

	c       *mongo.Collection
	limiter Limiter
	log     *zap.Logger
}

// NewMongo returns a provider over db. limiter may be nil to disable lockout.
func NewMongo(db *mongo.Database, limiter Limiter, logger *zap.Logger) *Mongo {
	return &Mongo{
		c:       db.Collection("admins"),
		limiter: limiter,
		log:     logger,
	}
}

// SignIn implements Provider.
func (m *Mongo) SignIn(ctx context.Context, email, password string) (*Admin, error) {
	email = authutil.NormalizeEmail(email)

	if m.limiter != nil {
		st, err := m.limiter.Check(ctx, email)
		if err != nil {
			// Fail open: a limiter outage must not lock the owner out.
			m.log.Warn("login limiter check failed", zap.Error(err))
		} else if !st.Allowed {
			return nil, ErrLockedOut
		}
	}

	var acct models.AdminAccount
	err := m.c.FindOne(ctx, bson.M{"email": email}).Decode(&acct)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		authutil.BurnCompare(password)
		m.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if !authutil.CheckPassword(password, acct.PasswordHash) {
		m.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if m.limiter != nil {
		if err := m.limiter.Reset(ctx, email); err != nil {
			m.log.Warn("login limiter reset failed", zap.Error(err))
		}
	}
	now := time.Now()
	if _, err := m.c.UpdateOne(ctx, bson.M{"_id": acct.ID}, bson.M{"$set": bson.M{"last_login_at": now}}); err != nil {
		m.log.Warn("failed to record last login", zap.Error(err))
	}

	a := &Admin{ID: acct.ID.Hex(), Email: acct.Email, Name: acct.Name}
	m.set(a)
	m.log.Info("admin signed in", zap.String("email", a.Email))
	return cloneAdmin(a), nil
}

func (m *Mongo) recordFailure(ctx context.Context, email string) {
	if m.limiter == nil {
		return
	}
	st, err := m.limiter.Fail(ctx, email)
	if err != nil {
		m.log.Warn("login limiter update failed", zap.Error(err))
		return
	}
	if !st.Allowed {
		m.log.Warn("admin sign-in locked after repeated failures",
			zap.String("email", email),
			zap.Timep("locked_until", st.LockedUntil))
	}
}

// SignOut implements Provider.
func (m *Mongo) SignOut(ctx context.Context) error {
	if cur := m.Current(); cur != nil {
		m.log.Info("admin signed out", zap.String("email", cur.Email))
	}
	m.set(nil)
	return nil
}

// EnsureAdmin creates an admin account if none exists for email. An existing
// account is left untouched, password included. It reports whether an
// account was created.
func (m *Mongo) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	email = authutil.NormalizeEmail(email)
	if !authutil.ValidEmail(email) {
		return false, fmt.Errorf("admin email %q is not valid", email)
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	res, err := m.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$setOnInsert": models.AdminAccount{
			ID:           primitive.NewObjectID(),
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			CreatedAt:    time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

// SetPassword replaces the password of an existing admin.
func (m *Mongo) SetPassword(ctx context.Context, email, password string) error {
	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	res, err := m.c.UpdateOne(ctx,
		bson.M{"email": authutil.NormalizeEmail(email)},
		bson.M{"$set": bson.M{"password_hash": hash}},
	)
	if err != nil {
		return fmt.Errorf("set admin password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrInvalidCredentials
	}
	return nil
}

// Lookup returns the admin with the given id, or nil if none exists. It backs
// the per-request session refresh, so a deleted account loses access at once.
func (m *Mongo) Lookup(ctx context.Context, id string) (*Admin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var acct models.AdminAccount
	err = m.c.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"email": 1, "name": 1})).Decode(&acct)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	return &Admin{ID: acct.ID.Hex(), Email: acct.Email, Name: acct.Name}, nil
}
