package server

import (
	"strconv"
	"time"

	"guildhall/internal/models"
	"guildhall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// EventRequest is the payload for creating or updating a community event.
type EventRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	StartsAt             *time.Time `json:"starts_at"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	MaxParticipants      *int       `json:"max_participants"`
}

// ListEvents returns events; ?upcoming=true hides past ones.
func (s *Server) ListEvents(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	upcoming := c.QueryBool("upcoming", false)
	events, err := s.eventService.ListEvents(c.UserContext(), upcoming, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// GetEvent returns one event by slug.
func (s *Server) GetEvent(c *fiber.Ctx) error {
	event, err := s.eventService.GetEvent(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// SaveEvent creates an event on POST and updates one when the route carries
// an ID.
func (s *Server) SaveEvent(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var eventID uint
	if raw := c.Params("id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid id parameter"))
		}
		eventID = uint(parsed)
	}

	event, err := s.eventService.SaveEvent(c.UserContext(), service.SaveEventInput{
		EventID:              eventID,
		CreatedByID:          s.currentUserID(c),
		Role:                 s.currentRole(c),
		Title:                req.Title,
		Description:          req.Description,
		StartsAt:             req.StartsAt,
		RegistrationDeadline: req.RegistrationDeadline,
		MaxParticipants:      req.MaxParticipants,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	if eventID == 0 {
		return c.Status(fiber.StatusCreated).JSON(event)
	}
	return c.JSON(event)
}

// DeleteEvent removes an event.
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.eventService.DeleteEvent(c.UserContext(), id, s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Event deleted"})
}

// RegisterForEvent signs the caller up for an event.
func (s *Server) RegisterForEvent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	event, err := s.eventService.Register(c.UserContext(), id, s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}
