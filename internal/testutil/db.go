// Package testutil holds helpers shared by the package tests: a throwaway
// MongoDB database per test and request builders for handler tests.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultMongoURI is used when FOLIO_TEST_MONGO_URI is unset.
	DefaultMongoURI = "mongodb://localhost:27017"
	// TestDBName prefixes every per-test database.
	TestDBName = "folio_test"

	// maxDBName is MongoDB's limit on database name length.
	maxDBName = 63
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

func mongoURI() string {
	if uri := os.Getenv("FOLIO_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultMongoURI
}

func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(50).
			SetServerSelectionTimeout(5 * time.Second)

		client, clientErr = mongo.Connect(ctx, opts)
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// SetupTestDB returns an empty database named after the running test, with
// the production indexes in place. The database is dropped on cleanup.
//
// Tests that need MongoDB are skipped under -short, and also when no server
// answers, unless FOLIO_TEST_MONGO_REQUIRED is set (CI sets it so a missing
// server fails loudly).
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in -short mode")
	}

	c, err := sharedClient()
	if err != nil {
		if os.Getenv("FOLIO_TEST_MONGO_REQUIRED") != "" {
			t.Fatalf("connect test MongoDB at %s: %v", mongoURI(), err)
		}
		t.Skipf("MongoDB unavailable at %s: %v", mongoURI(), err)
	}

	db := c.Database(dbNameFor(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s on cleanup: %v", db.Name(), err)
		}
	})
	return db
}

// dbNameFor maps a test name to a legal database name. Names that would
// exceed the length limit keep a readable prefix and end in a short hash so
// sibling subtests never collide.
func dbNameFor(testName string) string {
	suffix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, testName)

	name := TestDBName + "_" + suffix
	if len(name) <= maxDBName {
		return name
	}
	sum := sha1.Sum([]byte(testName))
	tag := hex.EncodeToString(sum[:4])
	return name[:maxDBName-len(tag)-1] + "_" + tag
}

// TestContext returns a context bounded for a single test step.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
