package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunImmediatelyFiresBeforeFirstInterval(t *testing.T) {
	sched := New(Options{Interval: time.Hour, RunImmediately: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			fired <- struct{}{}
			return nil
		})
	}()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("cycle zero did not run")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestRunRepeatsAndSurvivesTickErrors(t *testing.T) {
	sched := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var calls atomic.Int32
	err := sched.Run(ctx, func(ctx context.Context, at time.Time) error {
		if calls.Add(1) >= 3 {
			cancel()
		}
		return errors.New("boom")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", calls.Load())
	}
}

func TestRunWithoutImmediateWaitsForInterval(t *testing.T) {
	sched := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	err := sched.Run(ctx, func(ctx context.Context, at time.Time) error {
		calls.Add(1)
		return nil
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("no tick expected before interval elapsed, got %d", calls.Load())
	}
}

func TestNextTickAlignment(t *testing.T) {
	sched := New(Options{Interval: 20 * time.Minute, AlignToStart: true}, zerolog.Nop())
	now := time.Date(2024, 5, 1, 10, 7, 30, 0, time.UTC)

	got := sched.nextTick(now)
	want := time.Date(2024, 5, 1, 10, 20, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("aligned next tick = %s, want %s", got, want)
	}

	sched = New(Options{Interval: 20 * time.Minute}, zerolog.Nop())
	if got := sched.nextTick(now); !got.Equal(now.Add(20 * time.Minute)) {
		t.Fatalf("unaligned next tick = %s", got)
	}
}

func TestNewPanicsOnZeroInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero interval")
		}
	}()
	New(Options{}, zerolog.Nop())
}
