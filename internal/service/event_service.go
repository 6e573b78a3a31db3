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

// EventService handles community events and registration.
type EventService struct {
	eventRepo repository.EventRepository
	now       func() time.Time
}

type SaveEventInput struct {
	EventID     uint // zero for create
	CreatedByID uint
	Role        models.Role

	Title                string
	Description          string
	StartsAt             *time.Time
	RegistrationDeadline *time.Time
	MaxParticipants      *int
}

// NewEventService creates a new event service.
func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo, now: time.Now}
}

func (s *EventService) ListEvents(ctx context.Context, upcomingOnly bool, limit, offset int) ([]models.Event, error) {
	return s.eventRepo.List(ctx, upcomingOnly, limit, offset)
}

func (s *EventService) GetEvent(ctx context.Context, eventSlug string) (*models.Event, error) {
	return s.eventRepo.GetBySlug(ctx, eventSlug)
}

// SaveEvent creates or updates an event.
func (s *EventService) SaveEvent(ctx context.Context, in SaveEventInput) (*models.Event, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageEvents) {
		return nil, models.NewForbiddenError("Managing events requires the moderator role")
	}

	var event *models.Event
	if in.EventID == 0 {
		if strings.TrimSpace(in.Title) == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if in.StartsAt == nil {
			return nil, models.NewValidationError("starts_at is required")
		}
		event = &models.Event{
			Title:       in.Title,
			Slug:        slug.Make(in.Title),
			Description: in.Description,
			StartsAt:    *in.StartsAt,
			CreatedByID: in.CreatedByID,
		}
	} else {
		var err error
		event, err = s.eventRepo.GetByID(ctx, in.EventID)
		if err != nil {
			return nil, err
		}
		if in.Title != "" {
			event.Title = in.Title
			event.Slug = slug.Make(in.Title)
		}
		if in.Description != "" {
			event.Description = in.Description
		}
		if in.StartsAt != nil {
			event.StartsAt = *in.StartsAt
		}
	}

	if in.RegistrationDeadline != nil {
		event.RegistrationDeadline = in.RegistrationDeadline
	}
	if in.MaxParticipants != nil {
		if *in.MaxParticipants < 0 {
			return nil, models.NewValidationError("max_participants cannot be negative")
		}
		event.MaxParticipants = *in.MaxParticipants
	}

	if in.EventID == 0 {
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return nil, err
		}
	} else {
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// Register bumps the event's participant counter. The counter is a plain
// column; concurrent registrations race and the last write wins.
func (s *EventService) Register(ctx context.Context, eventID uint, role models.Role) (*models.Event, error) {
	if !permissions.Allows(role, permissions.ActionCreateOwn) {
		return nil, models.NewForbiddenError("Registering requires an account")
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if event.RegistrationDeadline != nil && now.After(*event.RegistrationDeadline) {
		return nil, models.NewConflictError("Registration deadline has passed")
	}
	if event.MaxParticipants > 0 && event.ParticipantCount >= event.MaxParticipants {
		return nil, models.NewConflictError("Event is full")
	}

	event.ParticipantCount++
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint, role models.Role) error {
	if !permissions.Allows(role, permissions.ActionManageEvents) {
		return models.NewForbiddenError("Managing events requires the moderator role")
	}
	if _, err := s.eventRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}
