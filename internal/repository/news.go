package repository

import (
	"context"
	"errors"

	"guildhall/internal/models"

	"gorm.io/gorm"
)

// NewsRepository defines persistence operations for news articles.
type NewsRepository interface {
	GetByID(ctx context.Context, id uint) (*models.NewsArticle, error)
	GetBySlug(ctx context.Context, slug string) (*models.NewsArticle, error)
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.NewsArticle, error)
	Create(ctx context.Context, article *models.NewsArticle) error
	Update(ctx context.Context, article *models.NewsArticle) error
	Delete(ctx context.Context, id uint) error
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository returns a new NewsRepository implementation.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) GetByID(ctx context.Context, id uint) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := r.db.WithContext(ctx).Preload("Author").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &article, nil
}

func (r *newsRepository) GetBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("slug = ?", slug).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &article, nil
}

func (r *newsRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.NewsArticle, error) {
	var articles []models.NewsArticle
	q := r.db.WithContext(ctx).
		Preload("Author").
		Order("COALESCE(published_at, created_at) DESC").
		Limit(limit).
		Offset(offset)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if err := q.Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *newsRepository) Create(ctx context.Context, article *models.NewsArticle) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Article slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *newsRepository) Update(ctx context.Context, article *models.NewsArticle) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.NewsArticle{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
