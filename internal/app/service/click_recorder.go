package service

import (
	"context"
	"errors"
	"time"

	"github.com/linklite/linklite/internal/app/repository"
	"go.uber.org/zap"
)

const recordTimeout = 5 * time.Second

// DBClickRecorder applies the click increment directly against the store.
// Used when NATS is not configured.
type DBClickRecorder struct {
	repo   repository.LinkRepository
	logger *zap.Logger
}

// NewDBClickRecorder creates a store-backed ClickRecorder.
func NewDBClickRecorder(repo repository.LinkRepository, logger *zap.Logger) *DBClickRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBClickRecorder{repo: repo, logger: logger}
}

// Record increments the click counter in a background goroutine. Failures
// are logged and swallowed.
func (r *DBClickRecorder) Record(code, _, _ string) {
	clickedAt := time.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		err := r.repo.IncrementClicks(ctx, code, clickedAt)
		if err != nil && !errors.Is(err, repository.ErrLinkNotFound) {
			r.logger.Error("failed to increment clicks",
				zap.String("code", code), zap.Error(err))
		}
	}()
}
