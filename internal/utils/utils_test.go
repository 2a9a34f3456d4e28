package utils

import (
	"context"
	"testing"
	"time"
)

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForCompletes(t *testing.T) {
	original := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = original }()

	if err := WaitFor(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForCancelled(t *testing.T) {
	original := sleep
	blocked := make(chan struct{})
	sleep = func(time.Duration) { <-blocked }
	defer func() {
		close(blocked)
		sleep = original
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Second); err == nil {
		t.Fatal("expected context error")
	}
}
