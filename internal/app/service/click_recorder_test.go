package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/linklite/linklite/internal/app/model"
)

func TestDBClickRecorder_AppliesIncrement(t *testing.T) {
	done := make(chan string, 1)
	repo := &mockLinkRepository{
		incrementFn: func(ctx context.Context, code string, clickedAt time.Time) error {
			if clickedAt.IsZero() {
				t.Error("expected clickedAt to be set")
			}
			done <- code
			return nil
		},
	}

	NewDBClickRecorder(repo, nil).Record("abc123", "1.2.3.4", "agent")

	select {
	case code := <-done:
		if code != "abc123" {
			t.Fatalf("expected abc123, got %s", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("increment was never applied")
	}
}

func TestResolver_DBRecorderFallback(t *testing.T) {
	// Without a message broker the resolver applies the click straight to the
	// store; the redirect itself must still resolve immediately.
	done := make(chan string, 1)
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{Code: code, URL: "https://example.com", IsActive: true}, nil
		},
		incrementFn: func(ctx context.Context, code string, clickedAt time.Time) error {
			done <- code
			return nil
		},
	}
	r := NewResolver(repo, nil, NewDBClickRecorder(repo, nil), nil)

	target, err := r.Resolve(context.Background(), "abc123", "1.2.3.4", "agent")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if target != "https://example.com" {
		t.Fatalf("expected https://example.com, got %s", target)
	}

	select {
	case code := <-done:
		if code != "abc123" {
			t.Fatalf("expected abc123, got %s", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fallback recorder never applied the click")
	}
}

func TestDBClickRecorder_ConcurrentClicksAllLand(t *testing.T) {
	const clicks = 32

	var (
		mu    sync.Mutex
		count int
	)
	var wg sync.WaitGroup
	wg.Add(clicks)

	repo := &mockLinkRepository{
		incrementFn: func(ctx context.Context, code string, clickedAt time.Time) error {
			mu.Lock()
			count++
			mu.Unlock()
			wg.Done()
			return nil
		},
	}

	recorder := NewDBClickRecorder(repo, nil)
	for i := 0; i < clicks; i++ {
		go recorder.Record("abc123", "", "")
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for increments")
	}

	mu.Lock()
	defer mu.Unlock()
	if count != clicks {
		t.Fatalf("expected %d increments, got %d", clicks, count)
	}
}
