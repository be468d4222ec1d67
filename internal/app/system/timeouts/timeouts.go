// Package timeouts holds the deadlines applied to store and backend calls
// made on behalf of a request.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults, used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultWrite  = 10 * time.Second
	DefaultBatch  = 60 * time.Second
	DefaultUpload = 2 * time.Minute
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	write  = DefaultWrite
	batch  = DefaultBatch
	upload = DefaultUpload
)

// Ping is the deadline for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Write is the deadline for a single-document write.
func Write() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return write
}

// Batch is the deadline for reorder, reset and seeding batches.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Upload is the deadline for storing one media file.
func Upload() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upload
}

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Write  time.Duration
	Batch  time.Duration
	Upload time.Duration
}

// Configure sets custom timeout values.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Write > 0 {
		write = cfg.Write
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
	if cfg.Upload > 0 {
		upload = cfg.Upload
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, write, batch, upload = DefaultPing, DefaultWrite, DefaultBatch, DefaultUpload
}

// Current returns the timeouts in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Write: write, Batch: batch, Upload: upload}
}

// WithTimeout derives a context with the given deadline. The returned
// cancel func logs a warning when the deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
