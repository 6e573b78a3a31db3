package server

import (
	"guildhall/internal/models"
	"guildhall/internal/service"
	"guildhall/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreatePageRequest is the payload for creating a CMS page.
type CreatePageRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
	ParentID    *uint  `json:"parent_id"`
}

// SavePageRequest carries a partial content document for a page. Only the
// top-level keys present are replaced; omitted keys keep their stored value.
type SavePageRequest struct {
	Content map[string]interface{} `json:"content"`
}

// BlockRequest is the payload for creating a content block.
type BlockRequest struct {
	PageID      uint   `json:"page_id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Settings    string `json:"settings"`
	Position    int    `json:"position"`
	IsPublished bool   `json:"is_published"`
}

// UpdateBlockRequest updates a block; absent fields stay untouched.
type UpdateBlockRequest struct {
	Content     *string `json:"content"`
	Settings    *string `json:"settings"`
	Position    *int    `json:"position"`
	IsPublished *bool   `json:"is_published"`
}

// ListPages returns pages visible to the caller.
func (s *Server) ListPages(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	pages, err := s.pageService.ListPages(c.UserContext(), s.currentRole(c), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"pages": pages})
}

// GetPage returns a rendered page by slug. Well-known pages are created with
// their defaults on first access.
func (s *Server) GetPage(c *fiber.Ctx) error {
	slug := c.Params("slug")
	page, err := s.pageService.GetPage(c.UserContext(), slug, false)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPageDraft returns a page including unpublished blocks, for editors.
func (s *Server) GetPageDraft(c *fiber.Ctx) error {
	slug := c.Params("slug")
	page, err := s.pageService.GetPage(c.UserContext(), slug, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// CreatePage creates an empty CMS page.
func (s *Server) CreatePage(c *fiber.Ctx) error {
	var req CreatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidatePageSlug(req.Slug); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	page, err := s.pageService.CreatePage(c.UserContext(), service.CreatePageInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		IsPublished: req.IsPublished,
		ParentID:    req.ParentID,
		Role:        s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(page)
}

// SavePage merges a content edit into the page and records a revision.
func (s *Server) SavePage(c *fiber.Ctx) error {
	var req SavePageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Content == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content document required"))
	}

	page, err := s.pageService.SavePage(c.UserContext(), service.SavePageInput{
		Slug:     c.Params("slug"),
		Content:  req.Content,
		EditorID: s.currentUserID(c),
		Role:     s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// ListRevisions returns a page's edit history, newest first.
func (s *Server) ListRevisions(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	revisions, err := s.pageService.ListRevisions(
		c.UserContext(), c.Params("slug"), s.currentRole(c), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"revisions": revisions})
}

// DeletePage removes a page and its blocks.
func (s *Server) DeletePage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.pageService.DeletePage(c.UserContext(), id, s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Page deleted"})
}

// CreateBlock adds a content block to a page.
func (s *Server) CreateBlock(c *fiber.Ctx) error {
	var req BlockRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	block, err := s.pageService.CreateBlock(c.UserContext(), service.BlockInput{
		PageID:      req.PageID,
		Type:        models.BlockType(req.Type),
		Content:     req.Content,
		Settings:    req.Settings,
		Position:    req.Position,
		IsPublished: req.IsPublished,
		Role:        s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(block)
}

// UpdateBlock applies a partial update to a content block.
func (s *Server) UpdateBlock(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req UpdateBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	block, err := s.pageService.UpdateBlock(c.UserContext(), service.UpdateBlockInput{
		BlockID:     id,
		Content:     req.Content,
		Settings:    req.Settings,
		Position:    req.Position,
		IsPublished: req.IsPublished,
		Role:        s.currentRole(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(block)
}

// DeleteBlock removes a content block.
func (s *Server) DeleteBlock(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.pageService.DeleteBlock(c.UserContext(), id, s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Block deleted"})
}
