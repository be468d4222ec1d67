// Package tasks runs periodic background jobs: throttle record cleanup and
// the document store's polling fallback.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name that was never registered.
var ErrUnknownJob = errors.New("tasks: unknown job")

// Job is a unit of periodic work. Run is called once when the job starts,
// after Delay if one is set, and then every Interval until the job stops.
type Job struct {
	Name     string
	Interval time.Duration
	Delay    time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns a set of jobs. Jobs registered before Start launch together;
// Go launches one on demand with its own stop function.
type Runner struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    []Job
	stopped bool
	active  map[string]int
}

// New returns an idle Runner.
func New(logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		active: make(map[string]int),
	}
}

// Register queues job for Start.
func (r *Runner) Register(job Job) {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
}

// Start launches every registered job. It does nothing after Stop.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(r.ctx, job)
	}
	r.logger.Info("task runner started", zap.Int("jobs", len(r.jobs)))
}

// Go launches job now. The returned stop cancels the job and waits for an
// in-flight run to return; calling it again is a no-op. After Stop, Go
// returns a no-op and the job never runs.
func (r *Runner) Go(job Job) (stop func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return func() {}
	}

	ctx, cancel := context.WithCancel(r.ctx)
	done := make(chan struct{})
	r.wg.Add(1)
	go func() {
		defer close(done)
		r.loop(ctx, job)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Stop cancels every job and waits for them to return. If ctx ends first the
// names of the jobs still running are logged and ctx.Err() is returned.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("task runner stop timed out", zap.Strings("running", r.activeNames()))
		return ctx.Err()
	}
}

// Running returns how many job runs are executing right now.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.active {
		n += c
	}
	return n
}

// RunOnce runs the registered job called name in the caller's goroutine.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	r.mu.Lock()
	var (
		job   Job
		found bool
	)
	for _, j := range r.jobs {
		if j.Name == name {
			job, found = j, true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return r.execute(ctx, job)
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	if job.Delay > 0 {
		t := time.NewTimer(job.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
	if ctx.Err() != nil {
		return
	}
	r.report(ctx, job, r.execute(ctx, job))

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			r.report(ctx, job, r.execute(ctx, job))
		}
	}
}

// execute runs job once. A panic in Run is turned into an error so one bad
// run does not take the process down.
func (r *Runner) execute(ctx context.Context, job Job) (err error) {
	r.mu.Lock()
	r.active[job.Name]++
	r.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, p)
		}
		r.mu.Lock()
		if r.active[job.Name]--; r.active[job.Name] <= 0 {
			delete(r.active, job.Name)
		}
		r.mu.Unlock()
	}()
	return job.Run(ctx)
}

func (r *Runner) report(ctx context.Context, job Job, err error) {
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		r.logger.Debug("job cancelled", zap.String("job", job.Name))
		return
	}
	r.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
}

func (r *Runner) activeNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
