package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linklite/linklite/internal/app/model"
	"github.com/linklite/linklite/internal/app/repository"
)

// cacheInvalidateLag is how long after a visibility mutation the cache entry
// is deleted a second time. A resolve racing the mutation can re-insert the
// target it read before the commit; the delayed delete clears it.
const cacheInvalidateLag = 3 * time.Second

// LinkService defines behaviour-level operations on links.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	GetLink(ctx context.Context, code string) (*model.Link, error)
	ListLinks(ctx context.Context) ([]model.Link, error)
	SetActive(ctx context.Context, code string, active bool) (*model.Link, error)
	DeleteLink(ctx context.Context, code string, mode model.DeleteMode) error
}

type linkService struct {
	repo  repository.LinkRepository
	alloc *Allocator
	cache TargetCache

	invalidateLag time.Duration
}

// NewLinkService returns a service implementation backed by the given
// repository and allocator. cache may be nil.
func NewLinkService(repo repository.LinkRepository, alloc *Allocator, cache TargetCache) LinkService {
	if cache == nil {
		cache = nopTargetCache{}
	}
	return &linkService{
		repo:          repo,
		alloc:         alloc,
		cache:         cache,
		invalidateLag: cacheInvalidateLag,
	}
}

// CreateLinkInput captures data required to create a link. Code is optional;
// when empty the allocator generates one.
type CreateLinkInput struct {
	URL  string
	Code string
}

func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	target, err := NormalizeURL(input.URL)
	if err != nil {
		return nil, err
	}

	code, err := s.alloc.Allocate(ctx, input.Code)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		Code:     code,
		URL:      target,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, link); err != nil {
		// Two creations raced past the allocator's pre-check; the unique
		// index decided. Treated as a normal conflict, not a server fault.
		if errors.Is(err, repository.ErrDuplicateCode) {
			s.alloc.MarkIssued(code)
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("create link: %w", err)
	}

	s.alloc.MarkIssued(code)
	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context) ([]model.Link, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) SetActive(ctx context.Context, code string, active bool) (*model.Link, error) {
	link, err := s.repo.SetActive(ctx, code, active)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update link: %w", err)
	}

	s.invalidate(code)
	return link, nil
}

// DeleteLink applies the deletion contract selected by the route: SoftDelete
// flips the record inactive and keeps its stats, HardDelete removes the row.
// Either way the code is never reissued (the allocator remembers it).
func (s *linkService) DeleteLink(ctx context.Context, code string, mode model.DeleteMode) error {
	var err error
	switch mode {
	case model.HardDelete:
		err = s.repo.Delete(ctx, code)
	default:
		_, err = s.repo.SetActive(ctx, code, false)
	}

	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return err
		}
		return fmt.Errorf("%s delete link: %w", mode, err)
	}

	s.invalidate(code)
	return nil
}

// invalidate deletes the cached target immediately and once more after
// invalidateLag, so a resolve that read the pre-mutation row and re-populated
// the cache never leaves a deactivated link resolvable.
func (s *linkService) invalidate(code string) {
	s.cache.Invalidate(context.Background(), code)
	time.AfterFunc(s.invalidateLag, func() {
		s.cache.Invalidate(context.Background(), code)
	})
}
