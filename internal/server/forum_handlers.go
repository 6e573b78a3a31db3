package server

import (
	"context"

	"guildhall/internal/models"
	"guildhall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CategoryRequest is the payload for creating or updating a forum category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    *int   `json:"position"`
}

// ThreadRequest is the payload for creating or editing a thread.
type ThreadRequest struct {
	CategoryID uint     `json:"category_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
}

// PostRequest is the payload for posts and comments.
type PostRequest struct {
	Body string `json:"body"`
}

// VoteRequest carries a vote value: 1, -1, or 0 to clear.
type VoteRequest struct {
	Value int `json:"value"`
}

// FlagRequest toggles a moderation flag on a thread.
type FlagRequest struct {
	Enabled bool `json:"enabled"`
}

// ListCategories returns all categories with live thread counts.
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.forumService.ListCategories(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// CreateCategory creates a forum category.
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	}
	category, err := s.forumService.CreateCategory(c.UserContext(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Position:    position,
		Role:        s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory edits a category's name, description, or ordering.
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.forumService.UpdateCategory(
		c.UserContext(), id, req.Name, req.Description, req.Position, s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory removes an empty category.
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.forumService.DeleteCategory(c.UserContext(), id, s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// ListThreads returns threads, pinned first, with optional category filter
// and sort=top|active.
func (s *Server) ListThreads(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	categoryID := uint(c.QueryInt("category_id", 0))
	sort := c.Query("sort")

	threads, err := s.forumService.ListThreads(
		c.UserContext(), categoryID, limit, offset, sort, s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads})
}

// GetThread returns one thread with its score, tags, and author.
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	thread, err := s.forumService.GetThread(c.UserContext(), id, s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// CreateThread starts a new thread.
func (s *Server) CreateThread(c *fiber.Ctx) error {
	var req ThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	thread, err := s.forumService.CreateThread(c.UserContext(), service.CreateThreadInput{
		CategoryID: req.CategoryID,
		AuthorID:   s.currentUserID(c),
		Title:      req.Title,
		Body:       req.Body,
		TagSlugs:   req.Tags,
		Role:       s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(thread)
}

// UpdateThread edits a thread. Owners edit their own; moderators edit any.
func (s *Server) UpdateThread(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req ThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	thread, err := s.forumService.UpdateThread(c.UserContext(), service.UpdateThreadInput{
		ThreadID: id,
		UserID:   s.currentUserID(c),
		Role:     s.currentRole(c),
		Title:    req.Title,
		Body:     req.Body,
		TagSlugs: req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// DeleteThread removes a thread.
func (s *Server) DeleteThread(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.forumService.DeleteThread(c.UserContext(), id, s.currentUserID(c), s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thread deleted"})
}

// PinThread toggles a thread's pinned flag.
func (s *Server) PinThread(c *fiber.Ctx) error {
	return s.setThreadFlag(c, s.forumService.SetPinned)
}

// LockThread toggles a thread's locked flag.
func (s *Server) LockThread(c *fiber.Ctx) error {
	return s.setThreadFlag(c, s.forumService.SetLocked)
}

func (s *Server) setThreadFlag(c *fiber.Ctx,
	set func(ctx context.Context, id uint, enabled bool, role models.Role) (*models.Thread, error)) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req FlagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	thread, err := set(c.UserContext(), id, req.Enabled, s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// VoteThread records, changes, or clears the caller's vote on a thread.
func (s *Server) VoteThread(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	thread, err := s.forumService.Vote(c.UserContext(), service.VoteInput{
		ThreadID: id,
		UserID:   s.currentUserID(c),
		Value:    req.Value,
		Role:     s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// ListPosts returns a thread's posts in chronological order.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	limit, offset := parsePagination(c)
	posts, err := s.forumService.ListPosts(c.UserContext(), id, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// CreatePost replies to a thread.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.forumService.CreatePost(c.UserContext(), service.CreatePostInput{
		ThreadID: id,
		AuthorID: s.currentUserID(c),
		Body:     req.Body,
		Role:     s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost edits a post's body.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.forumService.UpdatePost(
		c.UserContext(), id, s.currentUserID(c), s.currentRole(c), req.Body)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes a post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.forumService.DeletePost(c.UserContext(), id, s.currentUserID(c), s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ListComments returns a post's comments in chronological order.
func (s *Server) ListComments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	limit, offset := parsePagination(c)
	comments, err := s.forumService.ListComments(c.UserContext(), id, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment replies to a post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.forumService.CreateComment(c.UserContext(), service.CreateCommentInput{
		PostID:   id,
		AuthorID: s.currentUserID(c),
		Body:     req.Body,
		Role:     s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment removes a comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.forumService.DeleteComment(c.UserContext(), id, s.currentUserID(c), s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
