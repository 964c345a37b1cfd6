package service

import (
	"context"
	"sync"
	"time"

	"github.com/linklite/linklite/internal/app/model"
	"github.com/linklite/linklite/internal/app/repository"
)

// mockLinkRepository implements repository.LinkRepository with overridable
// function fields.
type mockLinkRepository struct {
	createFn    func(ctx context.Context, link *model.Link) error
	getFn       func(ctx context.Context, code string) (*model.Link, error)
	listFn      func(ctx context.Context) ([]model.Link, error)
	existsFn    func(ctx context.Context, code string) (bool, error)
	setActiveFn func(ctx context.Context, code string, active bool) (*model.Link, error)
	incrementFn func(ctx context.Context, code string, clickedAt time.Time) error
	deleteFn    func(ctx context.Context, code string) error
	allCodesFn  func(ctx context.Context) ([]string, error)
}

func (m *mockLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	if m.getFn != nil {
		return m.getFn(ctx, code)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) List(ctx context.Context) ([]model.Link, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockLinkRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, code)
	}
	return false, nil
}

func (m *mockLinkRepository) SetActive(ctx context.Context, code string, active bool) (*model.Link, error) {
	if m.setActiveFn != nil {
		return m.setActiveFn(ctx, code, active)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) IncrementClicks(ctx context.Context, code string, clickedAt time.Time) error {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, code, clickedAt)
	}
	return nil
}

func (m *mockLinkRepository) Delete(ctx context.Context, code string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, code)
	}
	return repository.ErrLinkNotFound
}

func (m *mockLinkRepository) AllCodes(ctx context.Context) ([]string, error) {
	if m.allCodesFn != nil {
		return m.allCodesFn(ctx)
	}
	return nil, nil
}

// fakeTargetCache is a map-backed TargetCache.
type fakeTargetCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeTargetCache() *fakeTargetCache {
	return &fakeTargetCache{m: map[string]string{}}
}

func (c *fakeTargetCache) Get(_ context.Context, code string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, ok := c.m[code]
	return target, ok
}

func (c *fakeTargetCache) Set(_ context.Context, code, target string) {
	c.mu.Lock()
	c.m[code] = target
	c.mu.Unlock()
}

func (c *fakeTargetCache) Invalidate(_ context.Context, code string) {
	c.mu.Lock()
	delete(c.m, code)
	c.mu.Unlock()
}

// sequenceGenerator returns canned codes in order.
type sequenceGenerator struct {
	codes []string
	next  int
}

func (g *sequenceGenerator) Next() (string, error) {
	if g.next >= len(g.codes) {
		g.next = len(g.codes) - 1
	}
	code := g.codes[g.next]
	g.next++
	return code, nil
}
