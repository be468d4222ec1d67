// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/folio/internal/app/system/tasks"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and indexes are ready, before the
// HTTP handler is built. It seeds the admin account, subscribes the content
// store, and starts the background jobs.
//
// Returning a non-nil error aborts startup. The context is cancelled if the
// process is asked to shut down while Startup is running.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Write:  appCfg.TimeoutWrite,
		Batch:  appCfg.TimeoutBatch,
		Upload: appCfg.TimeoutUpload,
	})

	if appCfg.AdminEmail != "" {
		created, err := deps.Identity.EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminName, appCfg.AdminPassword)
		if err != nil {
			logger.Error("failed to seed admin account", zap.Error(err))
			return err
		}
		if created {
			logger.Info("created admin account", zap.String("email", appCfg.AdminEmail))
		} else {
			logger.Debug("admin account already exists", zap.String("email", appCfg.AdminEmail))
		}
	}

	if err := deps.Content.Initialize(ctx); err != nil {
		logger.Error("content store failed to subscribe", zap.Error(err))
		return err
	}
	logger.Info("content store subscribed")

	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner registers the cleanup jobs and starts them.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Keep lockout records a day past their window; the TTL index normally
	// removes them first.
	if deps.LoginLimit != nil {
		taskRunner.Register(tasks.PurgeJob("login-attempt-cleanup", deps.LoginLimit, logger,
			appCfg.RateLimitLoginWindow+appCfg.RateLimitLoginLockout+24*time.Hour))
	}
	if deps.ContactLimit != nil {
		taskRunner.Register(tasks.PurgeJob("contact-throttle-cleanup", deps.ContactLimit, logger,
			2*appCfg.ContactWindow+24*time.Hour))
	}

	taskRunner.Start()
}
