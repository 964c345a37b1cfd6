package service

import (
	"context"
	"errors"
	"testing"
)

func TestAllocator_CustomCode(t *testing.T) {
	repo := &mockLinkRepository{}
	alloc := NewAllocator(repo, nil)

	code, err := alloc.Allocate(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if code != "abc123" {
		t.Fatalf("expected abc123, got %s", code)
	}
}

func TestAllocator_CustomCode_InvalidFormat(t *testing.T) {
	alloc := NewAllocator(&mockLinkRepository{}, nil)

	for _, bad := range []string{"ab", "waytoolongcode", "has space", "semi;colon", "dash-ed"} {
		if _, err := alloc.Allocate(context.Background(), bad); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("code %q: expected ErrInvalidCode, got %v", bad, err)
		}
	}
}

func TestAllocator_CustomCode_Taken(t *testing.T) {
	repo := &mockLinkRepository{
		existsFn: func(ctx context.Context, code string) (bool, error) {
			return code == "abc123", nil
		},
	}
	alloc := NewAllocator(repo, nil)

	if _, err := alloc.Allocate(context.Background(), "abc123"); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestAllocator_NeverReissuesSeenCode(t *testing.T) {
	// The store no longer has the row (hard delete), but the allocator saw
	// the code issued earlier in the process lifetime.
	repo := &mockLinkRepository{
		existsFn: func(ctx context.Context, code string) (bool, error) {
			return false, nil
		},
	}
	alloc := NewAllocator(repo, nil)
	alloc.MarkIssued("gone99")

	if _, err := alloc.Allocate(context.Background(), "gone99"); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken for previously issued code, got %v", err)
	}
}

func TestAllocator_Seed(t *testing.T) {
	repo := &mockLinkRepository{
		allCodesFn: func(ctx context.Context) ([]string, error) {
			return []string{"seeded1"}, nil
		},
		existsFn: func(ctx context.Context, code string) (bool, error) {
			return false, nil
		},
	}
	alloc := NewAllocator(repo, nil)
	if err := alloc.Seed(context.Background()); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}

	if _, err := alloc.Allocate(context.Background(), "seeded1"); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken for seeded code, got %v", err)
	}
}

func TestAllocator_GeneratedCode(t *testing.T) {
	repo := &mockLinkRepository{}
	alloc := NewAllocator(repo, NewRandomGenerator(DefaultCodeLength))

	code, err := alloc.Allocate(context.Background(), "")
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if !codePattern.MatchString(code) {
		t.Fatalf("generated code %q does not match accepted format", code)
	}
	if len(code) != DefaultCodeLength {
		t.Fatalf("expected %d-char code, got %q", DefaultCodeLength, code)
	}
}

func TestAllocator_RetriesOnCollision(t *testing.T) {
	gen := &sequenceGenerator{codes: []string{"taken1", "taken2", "fresh3"}}
	repo := &mockLinkRepository{
		existsFn: func(ctx context.Context, code string) (bool, error) {
			return code != "fresh3", nil
		},
	}
	alloc := NewAllocator(repo, gen)

	code, err := alloc.Allocate(context.Background(), "")
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if code != "fresh3" {
		t.Fatalf("expected fresh3 after collisions, got %s", code)
	}
}

func TestAllocator_Exhaustion(t *testing.T) {
	gen := &sequenceGenerator{codes: []string{"taken1"}}
	repo := &mockLinkRepository{
		existsFn: func(ctx context.Context, code string) (bool, error) {
			return true, nil
		},
	}
	alloc := NewAllocator(repo, gen)

	if _, err := alloc.Allocate(context.Background(), ""); !errors.Is(err, ErrAllocationExhausted) {
		t.Fatalf("expected ErrAllocationExhausted, got %v", err)
	}
}

func TestRandomGenerator_Uniqueish(t *testing.T) {
	gen := NewRandomGenerator(DefaultCodeLength)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := gen.Next()
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		seen[code] = true
	}
	// 50 draws from 62^6 candidates colliding would mean a broken generator.
	if len(seen) < 50 {
		t.Fatalf("expected 50 distinct codes, got %d", len(seen))
	}
}
