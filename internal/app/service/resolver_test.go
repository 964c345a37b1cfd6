package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/linklite/linklite/internal/app/model"
	"github.com/linklite/linklite/internal/app/repository"
)

type mockClickRecorder struct {
	mu    sync.Mutex
	codes []string
}

func (m *mockClickRecorder) Record(code, _, _ string) {
	m.mu.Lock()
	m.codes = append(m.codes, code)
	m.mu.Unlock()
}

func (m *mockClickRecorder) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes...)
}

func TestResolver_ActiveLink(t *testing.T) {
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{Code: code, URL: "https://example.com", IsActive: true}, nil
		},
	}
	recorder := &mockClickRecorder{}
	r := NewResolver(repo, nil, recorder, nil)

	target, err := r.Resolve(context.Background(), "abc123", "1.2.3.4", "test-agent")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if target != "https://example.com" {
		t.Fatalf("expected https://example.com, got %s", target)
	}
	if got := recorder.recorded(); len(got) != 1 || got[0] != "abc123" {
		t.Fatalf("expected one recorded click for abc123, got %v", got)
	}
}

func TestResolver_NormalizesLegacyTarget(t *testing.T) {
	// Rows written before normalization-at-create may lack a scheme.
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{Code: code, URL: "example.com/page", IsActive: true}, nil
		},
	}
	r := NewResolver(repo, nil, &mockClickRecorder{}, nil)

	target, err := r.Resolve(context.Background(), "abc123", "", "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if target != "https://example.com/page" {
		t.Fatalf("expected scheme-normalized target, got %s", target)
	}
}

func TestResolver_MissingLink(t *testing.T) {
	recorder := &mockClickRecorder{}
	r := NewResolver(&mockLinkRepository{}, nil, recorder, nil)

	_, err := r.Resolve(context.Background(), "missing", "", "")
	if !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
	if len(recorder.recorded()) != 0 {
		t.Fatal("missing link must not record a click")
	}
}

func TestResolver_InactiveLink(t *testing.T) {
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{Code: code, URL: "https://example.com", IsActive: false}, nil
		},
	}
	recorder := &mockClickRecorder{}
	r := NewResolver(repo, nil, recorder, nil)

	_, err := r.Resolve(context.Background(), "abc123", "", "")
	if !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound for inactive link, got %v", err)
	}
	if len(recorder.recorded()) != 0 {
		t.Fatal("inactive link must not record a click")
	}
}

func TestResolver_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, code string) (*model.Link, error) {
			return nil, storeErr
		},
	}
	r := NewResolver(repo, nil, &mockClickRecorder{}, nil)

	_, err := r.Resolve(context.Background(), "abc123", "", "")
	if err == nil || errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error in chain, got %v", err)
	}
}
