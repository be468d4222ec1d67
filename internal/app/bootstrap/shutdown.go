// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs after the HTTP server has stopped accepting requests. It
// stops the background jobs, unsubscribes the content store, and closes the
// document store, snapshot cache and MongoDB client, in that order.
//
// The context has a timeout; the first error is returned after every step
// has been attempted.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	// Stop background task runner with context timeout
	if taskRunner != nil {
		logger.Info("stopping background task runner")
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("background task runner did not stop cleanly", zap.Error(err))
			keep(err)
		}
	}

	if deps.Content != nil {
		logger.Info("closing content store")
		if err := deps.Content.Close(ctx); err != nil {
			logger.Warn("content store did not close cleanly", zap.Error(err))
			keep(err)
		}
	}

	if deps.Docs != nil {
		if err := deps.Docs.Close(ctx); err != nil {
			logger.Warn("document store did not close cleanly", zap.Error(err))
			keep(err)
		}
	}

	if deps.SnapCache != nil {
		if err := deps.SnapCache.Close(); err != nil {
			logger.Warn("snapshot cache close failed", zap.Error(err))
			keep(err)
		}
	}

	// Disconnect MongoDB client
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			keep(err)
		}
	}

	return firstErr
}
