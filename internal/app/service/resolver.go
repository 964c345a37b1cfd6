package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/linklite/linklite/internal/app/repository"
	"go.uber.org/zap"
)

// Resolver maps a short code to its redirect target and records the click.
type Resolver interface {
	// Resolve returns the target URL for an active code. It returns
	// repository.ErrLinkNotFound when the code is absent or inactive; the
	// two cases are indistinguishable to callers on purpose.
	Resolve(ctx context.Context, code, ip, userAgent string) (string, error)
}

// ClickRecorder records a successful redirect. Implementations must return
// immediately; the redirect response is never delayed by click accounting,
// and a recording failure is logged, not surfaced.
type ClickRecorder interface {
	Record(code, ip, userAgent string)
}

type resolver struct {
	repo     repository.LinkRepository
	cache    TargetCache
	recorder ClickRecorder
	logger   *zap.Logger
}

// NewResolver builds the redirect resolver. cache may be nil; recorder must
// not be.
func NewResolver(repo repository.LinkRepository, cache TargetCache, recorder ClickRecorder, logger *zap.Logger) Resolver {
	if cache == nil {
		cache = nopTargetCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resolver{
		repo:     repo,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

func (r *resolver) Resolve(ctx context.Context, code, ip, userAgent string) (string, error) {
	if target, ok := r.cache.Get(ctx, code); ok {
		r.recorder.Record(code, ip, userAgent)
		return target, nil
	}

	link, err := r.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return "", err
		}
		return "", fmt.Errorf("resolve %q: %w", code, err)
	}

	// Soft-deleted links must never resolve.
	if !link.IsActive {
		return "", repository.ErrLinkNotFound
	}

	// Stored URLs are normalized at creation; older rows may predate that,
	// so guarantee an explicit scheme before redirecting.
	target, err := NormalizeURL(link.URL)
	if err != nil {
		r.logger.Error("stored URL failed normalization",
			zap.String("code", code), zap.String("url", link.URL))
		return "", fmt.Errorf("resolve %q: %w", code, err)
	}

	r.cache.Set(ctx, code, target)
	r.recorder.Record(code, ip, userAgent)

	r.logger.Debug("resolved short link",
		zap.String("code", code), zap.String("target", target))
	return target, nil
}
