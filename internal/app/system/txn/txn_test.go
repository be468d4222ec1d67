package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/txn"
	"github.com/dalemusser/folio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"code 51", mongo.CommandError{Code: 51, Message: "IllegalOperation"}, true},
		{"unrelated command error", mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
		{"message only", errors.New("transaction not supported on this deployment"), true},
		{"single keyword", errors.New("session expired"), false},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunner_Run(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	r := txn.New(db, zap.NewNop())

	coll := db.Collection("txn_test")
	err := r.Run(ctx, func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"_id": "a"}); err != nil {
			return err
		}
		_, err := coll.InsertOne(ctx, bson.M{"_id": "b"})
		return err
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestRunner_PropagatesError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := txn.New(db, nil)

	boom := errors.New("boom")
	ctx, cancel := testutil.TestContext()
	defer cancel()
	err := r.Run(ctx, func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}
