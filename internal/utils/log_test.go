package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestHead(t *testing.T) {
	t.Parallel()

	if got := Head("résumé text", 6); got != "résumé" {
		t.Fatalf("unexpected head: %q", got)
	}
	if got := Head("short", 100); got != "short" {
		t.Fatalf("unexpected head: %q", got)
	}
	if got := Head("anything", 0); got != "" {
		t.Fatalf("expected empty head, got %q", got)
	}
}

func TestWaitForReturnsOnCancel(t *testing.T) {
	prev := newTimer
	var timer *time.Timer
	newTimer = func(d time.Duration) *time.Timer {
		timer = prev(d)
		return timer
	}
	defer func() { newTimer = prev }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if timer == nil {
		t.Fatalf("expected a timer to be created")
	}
	if timer.Stop() {
		t.Fatalf("expected the timer to be stopped on cancel")
	}
}

func TestWaitForWaits(t *testing.T) {
	prev := newTimer
	var requested time.Duration
	newTimer = func(d time.Duration) *time.Timer {
		requested = d
		return prev(time.Millisecond)
	}
	defer func() { newTimer = prev }()

	if err := WaitFor(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != 10*time.Second {
		t.Fatalf("expected a 10s timer, got %s", requested)
	}

	requested = 0
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero duration: %v", err)
	}
	if requested != 0 {
		t.Fatalf("expected no timer for zero duration, got %s", requested)
	}
}
