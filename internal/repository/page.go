package repository

import (
	"context"
	"errors"

	"guildhall/internal/cache"
	"guildhall/internal/models"

	"gorm.io/gorm"
)

// PageRepository defines persistence operations for pages, their content
// blocks, and the append-only revision log.
type PageRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
	GetByID(ctx context.Context, id uint) (*models.Page, error)
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.Page, error)
	Create(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id uint) error

	CreateBlock(ctx context.Context, block *models.ContentBlock) error
	GetBlock(ctx context.Context, id uint) (*models.ContentBlock, error)
	UpdateBlock(ctx context.Context, block *models.ContentBlock) error
	DeleteBlock(ctx context.Context, id uint) error

	AppendRevision(ctx context.Context, rev *models.ContentRevision) error
	ListRevisions(ctx context.Context, pageID uint, limit, offset int) ([]models.ContentRevision, error)
}

type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository returns a new PageRepository implementation.
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	key := cache.PageKey(slug)

	err := cache.Aside(ctx, key, &page, cache.PageTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Blocks", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC, id ASC")
			}).
			Where("slug = ?", slug).
			First(&page).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Page", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Page", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &page, nil
}

func (r *pageRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.Page, error) {
	var pages []models.Page
	q := r.db.WithContext(ctx).Order("slug ASC").Limit(limit).Offset(offset)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if err := q.Find(&pages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pages, nil
}

func (r *pageRepository) Create(ctx context.Context, page *models.Page) error {
	if err := r.db.WithContext(ctx).Create(page).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Page slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pageRepository) Update(ctx context.Context, page *models.Page) error {
	// Omit Blocks so a stale preloaded association never writes back.
	if err := r.db.WithContext(ctx).Omit("Blocks").Save(page).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePage(ctx, page.Slug)
	return nil
}

func (r *pageRepository) Delete(ctx context.Context, id uint) error {
	page, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Page{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePage(ctx, page.Slug)
	return nil
}

func (r *pageRepository) CreateBlock(ctx context.Context, block *models.ContentBlock) error {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateBlockPage(ctx, block.PageID)
	return nil
}

func (r *pageRepository) GetBlock(ctx context.Context, id uint) (*models.ContentBlock, error) {
	var block models.ContentBlock
	if err := r.db.WithContext(ctx).First(&block, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Block", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &block, nil
}

func (r *pageRepository) UpdateBlock(ctx context.Context, block *models.ContentBlock) error {
	if err := r.db.WithContext(ctx).Save(block).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateBlockPage(ctx, block.PageID)
	return nil
}

func (r *pageRepository) DeleteBlock(ctx context.Context, id uint) error {
	block, err := r.GetBlock(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.ContentBlock{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateBlockPage(ctx, block.PageID)
	return nil
}

// invalidateBlockPage drops the owning page's cache entry after a block write.
func (r *pageRepository) invalidateBlockPage(ctx context.Context, pageID uint) {
	var slug string
	if err := r.db.WithContext(ctx).
		Model(&models.Page{}).
		Where("id = ?", pageID).
		Pluck("slug", &slug).Error; err == nil && slug != "" {
		cache.InvalidatePage(ctx, slug)
	}
}

func (r *pageRepository) AppendRevision(ctx context.Context, rev *models.ContentRevision) error {
	if err := r.db.WithContext(ctx).Create(rev).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pageRepository) ListRevisions(ctx context.Context, pageID uint, limit, offset int) ([]models.ContentRevision, error) {
	var revs []models.ContentRevision
	if err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&revs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return revs, nil
}
