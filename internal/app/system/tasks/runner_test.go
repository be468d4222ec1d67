package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/tasks"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func stop(t *testing.T, r *tasks.Runner, within time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	return r.Stop(ctx)
}

func TestRunner_RunsImmediatelyThenOnInterval(t *testing.T) {
	r := tasks.New(zap.NewNop())
	ticks := make(chan struct{}, 10)
	r.Register(tasks.Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			ticks <- struct{}{}
			return nil
		},
	})
	r.Start()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d never happened", i+1)
		}
	}
	if err := stop(t, r, 2*time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestRunner_DelayDefersFirstRun(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var runs atomic.Int32
	r.Register(tasks.Job{
		Name:     "delayed",
		Interval: time.Hour,
		Delay:    time.Hour,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	r.Start()
	time.Sleep(20 * time.Millisecond)

	if err := stop(t, r, time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if n := runs.Load(); n != 0 {
		t.Errorf("runs = %d, want 0 before the delay elapses", n)
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	r := tasks.New(zap.NewNop())
	entered := make(chan struct{})
	release := make(chan struct{})
	r.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(context.Context) error {
			close(entered)
			<-release
			return nil
		},
	})
	r.Start()
	<-entered

	if got := r.Running(); got != 1 {
		t.Errorf("Running() = %d, want 1", got)
	}
	if err := stop(t, r, 30*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop() = %v, want DeadlineExceeded", err)
	}

	close(release)
	if err := stop(t, r, 2*time.Second); err != nil {
		t.Errorf("second Stop() = %v", err)
	}
}

func TestRunner_CancelsJobContext(t *testing.T) {
	r := tasks.New(zap.NewNop())
	started := make(chan struct{})
	r.Register(tasks.Job{
		Name:     "waits",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	})
	r.Start()
	<-started

	if err := stop(t, r, 2*time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if got := r.Running(); got != 0 {
		t.Errorf("Running() after stop = %d", got)
	}
}

func TestRunner_PanicDoesNotKillLoop(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var runs atomic.Int32
	done := make(chan struct{})
	r.Register(tasks.Job{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			if runs.Add(1) == 1 {
				panic("boom")
			}
			select {
			case <-done:
			default:
				close(done)
			}
			return nil
		},
	})
	r.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run again after panicking")
	}
	if err := stop(t, r, 2*time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestRunner_RunOnce(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var runs atomic.Int32
	r.Register(tasks.Job{
		Name:     "manual",
		Interval: time.Hour,
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("nope")
		},
	})

	if err := r.RunOnce(context.Background(), "manual"); err == nil || err.Error() != "nope" {
		t.Errorf("RunOnce() = %v, want the job's error", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if err := r.RunOnce(context.Background(), "missing"); !errors.Is(err, tasks.ErrUnknownJob) {
		t.Errorf("RunOnce(missing) = %v, want ErrUnknownJob", err)
	}
	if err := stop(t, r, time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestRunner_Go(t *testing.T) {
	r := tasks.New(zap.NewNop())
	ticks := make(chan struct{}, 10)
	halt := r.Go(tasks.Job{
		Name:     "poll",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			select {
			case ticks <- struct{}{}:
			default:
			}
			return nil
		},
	})

	<-ticks
	<-ticks
	halt()
	halt()

	for len(ticks) > 0 {
		<-ticks
	}
	time.Sleep(20 * time.Millisecond)
	if len(ticks) != 0 {
		t.Error("job kept running after its stop func returned")
	}
	if err := stop(t, r, time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestRunner_GoAfterStop(t *testing.T) {
	r := tasks.New(zap.NewNop())
	if err := stop(t, r, time.Second); err != nil {
		t.Fatal(err)
	}

	var runs atomic.Int32
	halt := r.Go(tasks.Job{
		Name:     "late",
		Interval: time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	halt()
	time.Sleep(10 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("job launched after Stop ran %d times", runs.Load())
	}
}

func TestRunner_StopEndsGoJobs(t *testing.T) {
	r := tasks.New(zap.NewNop())
	started := make(chan struct{})
	r.Go(tasks.Job{
		Name:     "poll",
		Interval: time.Hour,
		Run: func(context.Context) error {
			close(started)
			return nil
		},
	})
	<-started
	if err := stop(t, r, 2*time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

type fakePurger struct {
	cutoff time.Time
	n      int64
	err    error
}

func (p *fakePurger) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return p.n, p.err
}

func TestPurgeJob(t *testing.T) {
	p := &fakePurger{n: 3}
	job := tasks.PurgeJob("contact-throttle-cleanup", p, zap.NewNop(), 24*time.Hour)

	if job.Name != "contact-throttle-cleanup" || job.Interval != time.Hour {
		t.Errorf("job = %s every %v", job.Name, job.Interval)
	}
	before := time.Now()
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	want := before.Add(-24 * time.Hour)
	if d := p.cutoff.Sub(want); d < 0 || d > time.Second {
		t.Errorf("cutoff = %v, want about %v", p.cutoff, want)
	}

	p.err = errors.New("db down")
	if err := job.Run(context.Background()); err == nil {
		t.Error("Run() swallowed the purge error")
	}
}
