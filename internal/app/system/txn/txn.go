// Package txn runs groups of MongoDB writes atomically where the deployment
// allows it.
//
// Multi-document transactions need a replica set or mongos. A Runner tries a
// transaction first; when the server reports that transactions are not
// supported it runs the same function without one and remembers the outcome,
// so later calls skip the failed session round trip.
//
//	r := txn.New(db, log)
//	err := r.Run(ctx, func(ctx context.Context) error {
//	    _, err := db.Collection("projects").UpdateOne(ctx, filter, update)
//	    return err
//	})
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func is the unit of work. The context it receives is a
// mongo.SessionContext inside a transaction and the caller's context
// otherwise; all database calls in fn must use it.
type Func func(ctx context.Context) error

// Runner executes Funcs in transactions, falling back to plain sequential
// execution on deployments without transaction support.
type Runner struct {
	client      *mongo.Client
	log         *zap.Logger
	unsupported atomic.Bool
}

// New returns a Runner for db's client. log may be nil.
func New(db *mongo.Database, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{client: db.Client(), log: log}
}

// Atomic reports whether Run is still expected to use transactions. It turns
// false after the first not-supported response and stays false.
func (r *Runner) Atomic() bool {
	return !r.unsupported.Load()
}

// Run executes fn inside a transaction if possible. When the deployment does
// not support transactions fn is run once more without one; writes from the
// aborted attempt were rolled back, so fn sees a clean slate either way.
func (r *Runner) Run(ctx context.Context, fn Func) error {
	if r.unsupported.Load() {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		r.log.Warn("failed to start session, running without transaction",
			zap.Error(err))
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return nil
	}
	if !IsNotSupported(err) {
		return err
	}

	if !r.unsupported.Swap(true) {
		r.log.Warn("transactions not supported, batches will run sequentially",
			zap.Error(err))
	}
	return fn(ctx)
}

// IsNotSupported checks if an error indicates that transactions are not supported.
// This detects:
//   - Standalone MongoDB without replica set
//   - DocumentDB with transactions disabled
//
// Known error codes:
//   - 20: "Transaction numbers are only allowed on a replica set member or mongos"
//   - 51: IllegalOperation
//   - 263: "Cannot run 'aggregate' in a multi-document transaction"
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, code := range []int{20, 51, 263} {
			if se.HasErrorCode(code) {
				return true
			}
		}
	}

	// Message matching catches driver-side errors that carry no code.
	// Require two keywords to avoid false positives.
	errStr := strings.ToLower(err.Error())
	matches := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(errStr, kw) {
			matches++
		}
	}
	return matches >= 2
}
