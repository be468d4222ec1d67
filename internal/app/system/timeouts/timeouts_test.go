package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Ping: time.Second, Batch: 5 * time.Minute})

	got := Current()
	want := Config{Ping: time.Second, Write: DefaultWrite, Batch: 5 * time.Minute, Upload: DefaultUpload}
	if got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
	if Ping() != time.Second || Batch() != 5*time.Minute {
		t.Errorf("accessors disagree with Current(): ping=%v batch=%v", Ping(), Batch())
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Write: time.Millisecond, Upload: time.Millisecond})
	Reset()
	if Write() != DefaultWrite || Upload() != DefaultUpload {
		t.Errorf("Reset() left write=%v upload=%v", Write(), Upload())
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	<-ctx.Done()
	cancel()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
