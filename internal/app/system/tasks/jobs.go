// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes records last touched before a cutoff.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeJob returns an hourly job that deletes records older than maxAge from
// p. MongoDB's TTL index normally gets there first; the job covers
// deployments with the TTL monitor disabled.
func PurgeJob(name string, p Purger, logger *zap.Logger, maxAge time.Duration) Job {
	return Job{
		Name:     name,
		Interval: time.Hour,
		Delay:    time.Minute,
		Run: func(ctx context.Context) error {
			n, err := p.Purge(ctx, time.Now().Add(-maxAge))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged throttle records", zap.String("job", name), zap.Int64("deleted", n))
			}
			return nil
		},
	}
}
