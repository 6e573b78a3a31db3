package service

import (
	"context"
	"strings"

	"guildhall/internal/models"
	"guildhall/internal/observability"
	"guildhall/internal/permissions"
	"guildhall/internal/repository"
	"guildhall/internal/slug"
)

// ForumService implements the forum rules: category lifecycle, thread and
// post authorship, moderation, and voting.
type ForumService struct {
	forumRepo repository.ForumRepository
	tagRepo   repository.TagRepository
}

type CreateCategoryInput struct {
	Name        string
	Description string
	Position    int
	Role        models.Role
}

type CreateThreadInput struct {
	CategoryID uint
	AuthorID   uint
	Title      string
	Body       string
	TagSlugs   []string
	Role       models.Role
}

type UpdateThreadInput struct {
	ThreadID uint
	UserID   uint
	Role     models.Role
	Title    string
	Body     string
	TagSlugs []string
}

type CreatePostInput struct {
	ThreadID uint
	AuthorID uint
	Body     string
	Role     models.Role
}

type CreateCommentInput struct {
	PostID   uint
	AuthorID uint
	Body     string
	Role     models.Role
}

type VoteInput struct {
	ThreadID uint
	UserID   uint
	Value    int
	Role     models.Role
}

// NewForumService creates a new forum service.
func NewForumService(forumRepo repository.ForumRepository, tagRepo repository.TagRepository) *ForumService {
	return &ForumService{forumRepo: forumRepo, tagRepo: tagRepo}
}

func (s *ForumService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.forumRepo.ListCategories(ctx)
}

func (s *ForumService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageCategories) {
		return nil, models.NewForbiddenError("Managing categories requires the admin role")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Category name is required")
	}

	category := &models.Category{
		Name:        in.Name,
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		Position:    in.Position,
	}
	if err := s.forumRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *ForumService) UpdateCategory(ctx context.Context, id uint, name, description string, position *int, role models.Role) (*models.Category, error) {
	if !permissions.Allows(role, permissions.ActionManageCategories) {
		return nil, models.NewForbiddenError("Managing categories requires the admin role")
	}
	category, err := s.forumRepo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		category.Name = name
		category.Slug = slug.Make(name)
	}
	if description != "" {
		category.Description = description
	}
	if position != nil {
		category.Position = *position
	}
	if err := s.forumRepo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses to delete a category that still has threads.
func (s *ForumService) DeleteCategory(ctx context.Context, id uint, role models.Role) error {
	if !permissions.Allows(role, permissions.ActionManageCategories) {
		return models.NewForbiddenError("Managing categories requires the admin role")
	}
	if _, err := s.forumRepo.GetCategory(ctx, id); err != nil {
		return err
	}
	count, err := s.forumRepo.CountThreadsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return models.NewConflictError("Category still has threads")
	}
	return s.forumRepo.DeleteCategory(ctx, id)
}

func (s *ForumService) GetThread(ctx context.Context, id uint, role models.Role) (*models.Thread, error) {
	thread, err := s.forumRepo.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	s.filterHiddenTags(thread, role)
	return thread, nil
}

func (s *ForumService) ListThreads(ctx context.Context, categoryID uint, limit, offset int, sort string, role models.Role) ([]*models.Thread, error) {
	threads, err := s.forumRepo.ListThreads(ctx, categoryID, limit, offset, sort)
	if err != nil {
		return nil, err
	}
	for _, t := range threads {
		s.filterHiddenTags(t, role)
	}
	return threads, nil
}

// filterHiddenTags strips hidden tags from a thread unless the caller can
// manage tags.
func (s *ForumService) filterHiddenTags(thread *models.Thread, role models.Role) {
	if permissions.Allows(role, permissions.ActionManageTags) {
		return
	}
	visible := thread.Tags[:0]
	for _, tag := range thread.Tags {
		if !tag.IsHidden {
			visible = append(visible, tag)
		}
	}
	thread.Tags = visible
}

func (s *ForumService) CreateThread(ctx context.Context, in CreateThreadInput) (*models.Thread, error) {
	if !permissions.Allows(in.Role, permissions.ActionCreateOwn) {
		return nil, models.NewForbiddenError("Posting requires an account")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if _, err := s.forumRepo.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	thread := &models.Thread{
		CategoryID: in.CategoryID,
		AuthorID:   in.AuthorID,
		Title:      in.Title,
		Slug:       slug.Make(in.Title),
		Body:       in.Body,
	}
	if err := s.forumRepo.CreateThread(ctx, thread); err != nil {
		return nil, err
	}

	if len(in.TagSlugs) > 0 {
		tags, err := s.resolveTags(ctx, in.TagSlugs, in.Role)
		if err != nil {
			return nil, err
		}
		if err := s.forumRepo.ReplaceThreadTags(ctx, thread, tags); err != nil {
			return nil, err
		}
	}

	observability.ForumMutations.WithLabelValues("thread_create").Inc()
	return s.GetThread(ctx, thread.ID, in.Role)
}

// resolveTags looks up tags by slug; hidden tags are only attachable by
// callers who manage tags.
func (s *ForumService) resolveTags(ctx context.Context, slugs []string, role models.Role) ([]models.Tag, error) {
	tags, err := s.tagRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if permissions.Allows(role, permissions.ActionManageTags) {
		return tags, nil
	}
	visible := tags[:0]
	for _, tag := range tags {
		if !tag.IsHidden {
			visible = append(visible, tag)
		}
	}
	return visible, nil
}

func (s *ForumService) UpdateThread(ctx context.Context, in UpdateThreadInput) (*models.Thread, error) {
	thread, err := s.forumRepo.GetThread(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}
	if thread.AuthorID != in.UserID && !permissions.Allows(in.Role, permissions.ActionModerateForum) {
		return nil, models.NewForbiddenError("You can only edit your own threads")
	}

	if in.Title != "" {
		thread.Title = in.Title
		thread.Slug = slug.Make(in.Title)
	}
	if in.Body != "" {
		thread.Body = in.Body
	}
	if err := s.forumRepo.UpdateThread(ctx, thread); err != nil {
		return nil, err
	}

	if in.TagSlugs != nil {
		tags, err := s.resolveTags(ctx, in.TagSlugs, in.Role)
		if err != nil {
			return nil, err
		}
		if err := s.forumRepo.ReplaceThreadTags(ctx, thread, tags); err != nil {
			return nil, err
		}
	}
	return s.GetThread(ctx, thread.ID, in.Role)
}

func (s *ForumService) DeleteThread(ctx context.Context, threadID, userID uint, role models.Role) error {
	thread, err := s.forumRepo.GetThread(ctx, threadID)
	if err != nil {
		return err
	}
	if thread.AuthorID != userID && !permissions.Allows(role, permissions.ActionModerateForum) {
		return models.NewForbiddenError("You can only delete your own threads")
	}
	observability.ForumMutations.WithLabelValues("thread_delete").Inc()
	return s.forumRepo.DeleteThread(ctx, threadID)
}

// SetPinned pins or unpins a thread. Moderation only.
func (s *ForumService) SetPinned(ctx context.Context, threadID uint, pinned bool, role models.Role) (*models.Thread, error) {
	return s.setModerationFlag(ctx, threadID, role, func(t *models.Thread) { t.IsPinned = pinned })
}

// SetLocked locks or unlocks a thread. Moderation only.
func (s *ForumService) SetLocked(ctx context.Context, threadID uint, locked bool, role models.Role) (*models.Thread, error) {
	return s.setModerationFlag(ctx, threadID, role, func(t *models.Thread) { t.IsLocked = locked })
}

func (s *ForumService) setModerationFlag(ctx context.Context, threadID uint, role models.Role, apply func(*models.Thread)) (*models.Thread, error) {
	if !permissions.Allows(role, permissions.ActionModerateForum) {
		return nil, models.NewForbiddenError("Moderating threads requires the moderator role")
	}
	thread, err := s.forumRepo.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	apply(thread)
	if err := s.forumRepo.UpdateThread(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *ForumService) ListPosts(ctx context.Context, threadID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.forumRepo.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	return s.forumRepo.ListPosts(ctx, threadID, limit, offset)
}

// CreatePost replies to a thread. A locked thread only accepts replies from
// moderators and admins.
func (s *ForumService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if !permissions.Allows(in.Role, permissions.ActionCreateOwn) {
		return nil, models.NewForbiddenError("Posting requires an account")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}

	thread, err := s.forumRepo.GetThread(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}
	if thread.IsLocked && !in.Role.AtLeast(models.RoleModerator) {
		return nil, models.NewForbiddenError("Thread is locked")
	}

	post := &models.Post{
		ThreadID: in.ThreadID,
		AuthorID: in.AuthorID,
		Body:     in.Body,
	}
	if err := s.forumRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	observability.ForumMutations.WithLabelValues("post_create").Inc()
	return post, nil
}

func (s *ForumService) UpdatePost(ctx context.Context, postID, userID uint, role models.Role, body string) (*models.Post, error) {
	post, err := s.forumRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID && !permissions.Allows(role, permissions.ActionModerateForum) {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	post.Body = body
	if err := s.forumRepo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ForumService) DeletePost(ctx context.Context, postID, userID uint, role models.Role) error {
	post, err := s.forumRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID && !permissions.Allows(role, permissions.ActionModerateForum) {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	observability.ForumMutations.WithLabelValues("post_delete").Inc()
	return s.forumRepo.DeletePost(ctx, postID)
}

func (s *ForumService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.forumRepo.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.forumRepo.ListComments(ctx, postID, limit, offset)
}

func (s *ForumService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if !permissions.Allows(in.Role, permissions.ActionCreateOwn) {
		return nil, models.NewForbiddenError("Commenting requires an account")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}

	post, err := s.forumRepo.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	// Comments inherit the thread's lock state.
	thread, err := s.forumRepo.GetThread(ctx, post.ThreadID)
	if err != nil {
		return nil, err
	}
	if thread.IsLocked && !in.Role.AtLeast(models.RoleModerator) {
		return nil, models.NewForbiddenError("Thread is locked")
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
		Body:     in.Body,
	}
	if err := s.forumRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ForumService) DeleteComment(ctx context.Context, commentID, userID uint, role models.Role) error {
	comment, err := s.forumRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID && !permissions.Allows(role, permissions.ActionModerateForum) {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.forumRepo.DeleteComment(ctx, commentID)
}

// Vote records an up or down vote on a thread; re-voting overwrites, value 0
// removes the vote.
func (s *ForumService) Vote(ctx context.Context, in VoteInput) (*models.Thread, error) {
	if !permissions.Allows(in.Role, permissions.ActionVote) {
		return nil, models.NewForbiddenError("Voting requires an account")
	}
	if _, err := s.forumRepo.GetThread(ctx, in.ThreadID); err != nil {
		return nil, err
	}

	switch in.Value {
	case 1, -1:
		if err := s.forumRepo.Vote(ctx, in.UserID, in.ThreadID, in.Value); err != nil {
			return nil, err
		}
	case 0:
		if err := s.forumRepo.Unvote(ctx, in.UserID, in.ThreadID); err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError("Vote value must be 1, -1, or 0")
	}

	observability.ForumMutations.WithLabelValues("vote").Inc()
	return s.GetThread(ctx, in.ThreadID, in.Role)
}
