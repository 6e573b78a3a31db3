package repository

import (
	"context"
	"errors"

	"guildhall/internal/cache"
	"guildhall/internal/models"

	"gorm.io/gorm"
)

// ForumRepository defines persistence operations for categories, threads,
// posts, comments, and thread votes.
type ForumRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
	CountThreadsInCategory(ctx context.Context, categoryID uint) (int64, error)

	GetThread(ctx context.Context, id uint) (*models.Thread, error)
	ListThreads(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Thread, error)
	CreateThread(ctx context.Context, thread *models.Thread) error
	UpdateThread(ctx context.Context, thread *models.Thread) error
	DeleteThread(ctx context.Context, id uint) error
	ReplaceThreadTags(ctx context.Context, thread *models.Thread, tags []models.Tag) error

	GetPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, threadID uint, limit, offset int) ([]*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error

	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error

	Vote(ctx context.Context, userID, threadID uint, value int) error
	Unvote(ctx context.Context, userID, threadID uint) error
	GetVote(ctx context.Context, userID, threadID uint) (int, error)
}

type forumRepository struct {
	db *gorm.DB
}

// NewForumRepository returns a new ForumRepository implementation.
func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := cache.Aside(ctx, cache.CategoriesListKey, &categories, cache.CategoriesTTL, func() error {
		if err := r.db.WithContext(ctx).
			Select("categories.*, " +
				"(SELECT COUNT(*) FROM threads WHERE threads.category_id = categories.id AND threads.deleted_at IS NULL) as thread_count").
			Order("position ASC, name ASC").
			Find(&categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *forumRepository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Select("categories.*, "+
			"(SELECT COUNT(*) FROM threads WHERE threads.category_id = categories.id AND threads.deleted_at IS NULL) as thread_count").
		First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *forumRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Category slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *forumRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *forumRepository) DeleteCategory(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Category{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *forumRepository) CountThreadsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Thread{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// applyThreadDetails adds subqueries to fetch vote score and post count in a
// single query.
func (r *forumRepository) applyThreadDetails(db *gorm.DB) *gorm.DB {
	return db.Select("threads.*, " +
		"(SELECT COALESCE(SUM(value), 0) FROM thread_votes WHERE thread_votes.thread_id = threads.id) as score, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.thread_id = threads.id AND posts.deleted_at IS NULL) as post_count")
}

// GetThread reads through the thread cache. The cached copy carries Author
// through the public JSON shape, which strips the password hash; thread
// writes omit the Author association so that copy is never written back.
func (r *forumRepository) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	err := cache.Aside(ctx, cache.ThreadKey(id), &thread, cache.ThreadTTL, func() error {
		if err := r.applyThreadDetails(r.db.WithContext(ctx)).
			Preload("Author").
			Preload("Tags").
			First(&thread, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Thread", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *forumRepository) ListThreads(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Thread, error) {
	var threads []*models.Thread
	base := r.applyThreadDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Tags")
	if categoryID != 0 {
		base = base.Where("category_id = ?", categoryID)
	}
	// Pinned threads always sort first within a category listing.
	switch sort {
	case "top":
		base = base.Order("is_pinned DESC, score DESC, threads.created_at DESC")
	case "active":
		base = base.Order("is_pinned DESC, threads.updated_at DESC")
	default: // "new" and anything unrecognized
		base = base.Order("is_pinned DESC, threads.created_at DESC")
	}
	if err := base.Limit(limit).Offset(offset).Find(&threads).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return threads, nil
}

func (r *forumRepository) CreateThread(ctx context.Context, thread *models.Thread) error {
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *forumRepository) UpdateThread(ctx context.Context, thread *models.Thread) error {
	// Omit Tags so Save never rewrites the join table, and Author so a
	// cache-restored author copy is never written back.
	if err := r.db.WithContext(ctx).Omit("Tags", "Author").Save(thread).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, thread.ID)
	return nil
}

func (r *forumRepository) DeleteThread(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Thread{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, id)
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *forumRepository) ReplaceThreadTags(ctx context.Context, thread *models.Thread, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(thread).Association("Tags").Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, thread.ID)
	return nil
}

func (r *forumRepository) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *forumRepository) ListPosts(ctx context.Context, threadID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *forumRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, post.ThreadID)
	return nil
}

func (r *forumRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author").Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, post.ThreadID)
	return nil
}

func (r *forumRepository) DeletePost(ctx context.Context, id uint) error {
	post, err := r.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, post.ThreadID)
	return nil
}

func (r *forumRepository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *forumRepository) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *forumRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *forumRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author").Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *forumRepository) DeleteComment(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *forumRepository) Vote(ctx context.Context, userID, threadID uint, value int) error {
	// Upsert so re-voting overwrites the previous value atomically.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO thread_votes (user_id, thread_id, value, created_at, updated_at)
		 VALUES (?, ?, ?, NOW(), NOW())
		 ON CONFLICT (user_id, thread_id) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		userID, threadID, value,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	cache.InvalidateThread(ctx, threadID)
	return nil
}

func (r *forumRepository) Unvote(ctx context.Context, userID, threadID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		Delete(&models.ThreadVote{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateThread(ctx, threadID)
	return nil
}

func (r *forumRepository) GetVote(ctx context.Context, userID, threadID uint) (int, error) {
	var vote models.ThreadVote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, models.NewInternalError(err)
	}
	return vote.Value, nil
}
