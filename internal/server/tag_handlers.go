package server

import (
	"strconv"

	"guildhall/internal/models"
	"guildhall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TagRequest is the payload for creating or updating a tag.
type TagRequest struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Hidden *bool  `json:"hidden"`
}

// ListTags returns tags; hidden tags appear only for tag managers.
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.tagService.ListTags(c.UserContext(), s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// SaveTag creates a tag on POST and updates one when the route carries an ID.
func (s *Server) SaveTag(c *fiber.Ctx) error {
	var req TagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var tagID uint
	if raw := c.Params("id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid id parameter"))
		}
		tagID = uint(parsed)
	}

	tag, err := s.tagService.SaveTag(c.UserContext(), service.SaveTagInput{
		TagID:  tagID,
		Role:   s.currentRole(c),
		Name:   req.Name,
		Color:  req.Color,
		Hidden: req.Hidden,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	if tagID == 0 {
		return c.Status(fiber.StatusCreated).JSON(tag)
	}
	return c.JSON(tag)
}

// DeleteTag removes a tag and detaches it from threads.
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.tagService.DeleteTag(c.UserContext(), id, s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted"})
}
