package ocrengine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCloseWaitsForCheckedOutSession(t *testing.T) {
	e := NewExtractor("eng", 2, quietLogger())

	client, err := e.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Close returned while a session was still checked out")
	case <-time.After(50 * time.Millisecond):
	}

	// Must not panic and must unblock Close.
	e.release(client)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not finish after the session was released")
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	e := NewExtractor("eng", 1, quietLogger())
	defer e.Close()

	client, err := e.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer e.release(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := e.acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("acquire on an exhausted pool = %v, want DeadlineExceeded", err)
	}
}
