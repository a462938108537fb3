package utils

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSeenSetNoDuplicates(t *testing.T) {
	s := NewSeenSet()

	if !s.Add("Sunny 2br near campus") {
		t.Error("first Add should return true")
	}
	if s.Add("Sunny 2br near campus") {
		t.Error("second Add of same value should return false")
	}
	if !s.Contains("Sunny 2br near campus") {
		t.Error("Contains should report an added value")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestThrottleStaysInRange(t *testing.T) {
	th := NewThrottle(1, 5).WithSeed(42)

	seen := map[time.Duration]bool{}
	for i := 0; i < 500; i++ {
		d := th.Next()
		if d < time.Second || d > 5*time.Second {
			t.Fatalf("delay %v outside [1s, 5s]", d)
		}
		if d%time.Second != 0 {
			t.Fatalf("delay %v is not a whole number of seconds", d)
		}
		seen[d] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected all 5 delays to be drawn, got %d distinct", len(seen))
	}
}

func TestThrottleFixedDelay(t *testing.T) {
	th := NewThrottle(3, 3)
	if d := th.Next(); d != 3*time.Second {
		t.Errorf("Next() = %v; want 3s", d)
	}
}

func TestThrottleWaitUsesSleep(t *testing.T) {
	var slept []time.Duration
	th := NewThrottle(2, 2).WithSleep(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})

	d, err := th.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 2*time.Second || len(slept) != 1 || slept[0] != 2*time.Second {
		t.Errorf("Wait slept %v, returned %v; want one 2s sleep", slept, d)
	}
}

func TestThrottleWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	th := NewThrottle(1, 1)
	th.Unit = time.Hour
	if _, err := th.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait on cancelled context: got %v, want context.Canceled", err)
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLoggerTo(&bytes.Buffer{})}

	calls := 0
	err := r.Do(context.Background(), "ping", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}
	sentinel := errors.New("boom")

	err := r.Do(context.Background(), "ping", func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}

func TestLoggerDebugGated(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf)

	l.Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("debug output written while not verbose: %q", buf.String())
	}

	l.SetVerbose(true)
	l.Debug("shown %d", 2)
	l.Warn("page %d returned %d", 3, 503)

	out := buf.String()
	if !strings.Contains(out, "DEBUG shown 2") {
		t.Errorf("missing debug line in %q", out)
	}
	if !strings.Contains(out, "WARN  page 3 returned 503") {
		t.Errorf("missing warn line in %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("NewLoggerTo output should be uncolored: %q", out)
	}
}
