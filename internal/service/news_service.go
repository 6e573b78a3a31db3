package service

import (
	"context"
	"strings"
	"time"

	"guildhall/internal/models"
	"guildhall/internal/permissions"
	"guildhall/internal/repository"
	"guildhall/internal/slug"
)

// NewsService handles editorial news articles.
type NewsService struct {
	newsRepo repository.NewsRepository
	now      func() time.Time
}

type SaveArticleInput struct {
	ArticleID uint // zero for create
	AuthorID  uint
	Role      models.Role

	Title   string
	Summary string
	Body    string
	Publish *bool
}

// NewNewsService creates a new news service.
func NewNewsService(newsRepo repository.NewsRepository) *NewsService {
	return &NewsService{newsRepo: newsRepo, now: time.Now}
}

// ListArticles returns news; drafts are only visible to news managers.
func (s *NewsService) ListArticles(ctx context.Context, role models.Role, limit, offset int) ([]models.NewsArticle, error) {
	publishedOnly := !permissions.Allows(role, permissions.ActionManageNews)
	return s.newsRepo.List(ctx, publishedOnly, limit, offset)
}

func (s *NewsService) GetArticle(ctx context.Context, articleSlug string, role models.Role) (*models.NewsArticle, error) {
	article, err := s.newsRepo.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished && !permissions.Allows(role, permissions.ActionManageNews) {
		return nil, models.NewNotFoundError("Article", articleSlug)
	}
	return article, nil
}

// SaveArticle creates or updates an article. Publishing stamps PublishedAt
// once; unpublishing keeps the original timestamp.
func (s *NewsService) SaveArticle(ctx context.Context, in SaveArticleInput) (*models.NewsArticle, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageNews) {
		return nil, models.NewForbiddenError("Managing news requires the moderator role")
	}

	var article *models.NewsArticle
	if in.ArticleID == 0 {
		if strings.TrimSpace(in.Title) == "" {
			return nil, models.NewValidationError("Title is required")
		}
		article = &models.NewsArticle{
			AuthorID: in.AuthorID,
			Title:    in.Title,
			Slug:     slug.Make(in.Title),
			Summary:  in.Summary,
			Body:     in.Body,
		}
	} else {
		var err error
		article, err = s.newsRepo.GetByID(ctx, in.ArticleID)
		if err != nil {
			return nil, err
		}
		if in.Title != "" {
			article.Title = in.Title
			article.Slug = slug.Make(in.Title)
		}
		if in.Summary != "" {
			article.Summary = in.Summary
		}
		if in.Body != "" {
			article.Body = in.Body
		}
	}

	if in.Publish != nil {
		article.IsPublished = *in.Publish
		if *in.Publish && article.PublishedAt == nil {
			now := s.now()
			article.PublishedAt = &now
		}
	}

	if in.ArticleID == 0 {
		if err := s.newsRepo.Create(ctx, article); err != nil {
			return nil, err
		}
	} else {
		if err := s.newsRepo.Update(ctx, article); err != nil {
			return nil, err
		}
	}
	return article, nil
}

func (s *NewsService) DeleteArticle(ctx context.Context, id uint, role models.Role) error {
	if !permissions.Allows(role, permissions.ActionManageNews) {
		return models.NewForbiddenError("Managing news requires the moderator role")
	}
	if _, err := s.newsRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.newsRepo.Delete(ctx, id)
}
