package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/linklite/linklite/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrDuplicateCode signals that the unique index on links.code rejected
	// an insert. This is the authoritative uniqueness check; any pre-check
	// done by the allocator is advisory only.
	ErrDuplicateCode = errors.New("code already exists")
)

// LinkRepository defines the data access contract for short links.
//
// Every mutation is a single atomic statement so that concurrent requests
// never read-modify-write the same record at the caller.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	List(ctx context.Context) ([]model.Link, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	SetActive(ctx context.Context, code string, active bool) (*model.Link, error)
	IncrementClicks(ctx context.Context, code string, clickedAt time.Time) error
	Delete(ctx context.Context, code string) error
	AllCodes(ctx context.Context) ([]string, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) List(ctx context.Context) ([]model.Link, error) {
	var result []model.Link
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *linkRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *linkRepository) SetActive(ctx context.Context, code string, active bool) (*model.Link, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("code = ?", code).
		Update("is_active", active)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}

	var link model.Link
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// IncrementClicks applies "clicks = clicks + 1, last_clicked_at = clickedAt"
// as one statement. Two redirects racing on the same code both land.
func (r *linkRepository) IncrementClicks(ctx context.Context, code string, clickedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"clicks":          gorm.Expr("clicks + 1"),
			"last_clicked_at": clickedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) Delete(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Where("code = ?", code).
		Delete(&model.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// AllCodes returns every code currently in the store. Used once at startup
// to seed the allocator's issued-code filter.
func (r *linkRepository) AllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
