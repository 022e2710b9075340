// Tests for the real and fake [Clock] implementations.
package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRealSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Real().Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancelled Sleep took %v", elapsed)
	}
}

func TestRealSleep_Completes(t *testing.T) {
	if err := Real().Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Sleep returned %v", err)
	}
}

func TestFakeSleep_RecordsAndAdvances(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fake(base)

	if err := c.Sleep(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("Sleep returned %v", err)
	}
	c.Advance(time.Second)

	if got := c.Now().Sub(base); got != 11*time.Second {
		t.Fatalf("elapsed = %v, want 11s", got)
	}
	sleeps := c.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != 10*time.Second {
		t.Fatalf("Sleeps() = %v, want [10s]", sleeps)
	}
}

func TestFakeSleep_CancelledContext(t *testing.T) {
	c := Fake(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep error = %v, want context.Canceled", err)
	}
	if len(c.Sleeps()) != 0 {
		t.Fatal("cancelled Sleep should not be recorded")
	}
}
