// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/store/snapcache"
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/mediahost"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to EnsureSchema, Startup,
// BuildHandler, and Shutdown. Shutdown closes what ConnectDB opened.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Docs is the document store the content store syncs with.
	Docs *docstore.Mongo

	// SnapCache keeps the last server snapshots on disk. Nil when
	// snapshot_cache_path is blank.
	SnapCache *snapcache.Store

	// Content is the process-wide content store. Startup initializes it.
	Content *content.Store

	// Identity signs the admin in against the admins collection.
	Identity *identity.Mongo

	// LoginLimit counts failed sign-ins. Nil when rate limiting is disabled.
	LoginLimit *loginlimit.Store

	// ContactLimit counts contact-form messages per client IP.
	ContactLimit *loginlimit.Store

	// FileStorage backs Media.
	FileStorage storage.Store
	Media       *mediahost.Host

	// Mailer delivers contact-form messages.
	Mailer *mailer.Mailer
}
