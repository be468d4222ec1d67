// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/store/loginlimit"
	"github.com/dalemusser/folio/internal/app/store/snapcache"
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/identity"
	"github.com/dalemusser/folio/internal/app/system/indexes"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/mediahost"
	"github.com/dalemusser/folio/internal/app/system/seeding"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and builds the backends that hang off it:
// the document store, the identity provider, the media host, the mailer,
// and the (not yet initialized) content store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	// Offline snapshot cache
	var cache *snapcache.Store
	opts := docstore.MongoOptions{PollInterval: appCfg.PollInterval}
	if appCfg.SnapshotCachePath != "" {
		cache, err = snapcache.Open(ctx, appCfg.SnapshotCachePath)
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to open snapshot cache: %w", err)
		}
		opts.Cache = cache
		logger.Info("opened snapshot cache", zap.String("path", appCfg.SnapshotCachePath))
	}
	docs := docstore.NewMongo(db, logger, opts)

	// Identity and lockout
	var loginLimit *loginlimit.Store
	var limiter identity.Limiter
	if appCfg.RateLimitEnabled {
		loginLimit = loginlimit.New(db, loginlimit.Policy{
			MaxAttempts: appCfg.RateLimitLoginAttempts,
			Window:      appCfg.RateLimitLoginWindow,
			Lockout:     appCfg.RateLimitLoginLockout,
		})
		limiter = loginLimit
	}
	idp := identity.NewMongo(db, limiter, logger)

	contactLimit := loginlimit.New(db, loginlimit.Policy{
		MaxAttempts: appCfg.ContactMaxPerWindow,
		Window:      appCfg.ContactWindow,
		Lockout:     appCfg.ContactWindow,
	})

	// Default content
	defaults := seeding.Builtin()
	if appCfg.SeedFile != "" {
		defaults, err = seeding.LoadFile(appCfg.SeedFile)
		if err != nil {
			return DBDeps{}, err
		}
		logger.Info("loaded default content", zap.String("file", appCfg.SeedFile))
	}

	// Media storage
	var store storage.Store
	switch appCfg.StorageType {
	case "s3":
		store, err = storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		logger.Info("initialized S3/CloudFront media storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
		)
	case "local", "":
		store, err = storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("initialized local media storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
	default:
		return DBDeps{}, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}
	media := mediahost.New(store, int64(appCfg.MediaMaxUploadMB)<<20)

	// Contact mailer
	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	if mail.Configured() {
		logger.Info("initialized email mailer",
			zap.String("host", appCfg.MailSMTPHost),
			zap.Int("port", appCfg.MailSMTPPort),
		)
	} else {
		logger.Info("mail_smtp_host not set; contact form disabled")
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Docs:          docs,
		SnapCache:     cache,
		Content:       content.New(docs, idp, defaults, logger),
		Identity:      idp,
		LoginLimit:    loginLimit,
		ContactLimit:  contactLimit,
		FileStorage:   store,
		Media:         media,
		Mailer:        mail,
	}, nil
}

// EnsureSchema creates the indexes the admin, lockout and ordered content
// queries rely on. The context carries coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
