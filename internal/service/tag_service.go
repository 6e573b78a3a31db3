package service

import (
	"context"
	"strings"

	"guildhall/internal/models"
	"guildhall/internal/permissions"
	"guildhall/internal/repository"
	"guildhall/internal/slug"
)

// TagService handles forum tag management.
type TagService struct {
	tagRepo repository.TagRepository
}

type SaveTagInput struct {
	TagID uint // zero for create
	Role  models.Role

	Name   string
	Color  string
	Hidden *bool
}

// NewTagService creates a new tag service.
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// ListTags returns tags; hidden tags only appear for tag managers.
func (s *TagService) ListTags(ctx context.Context, role models.Role) ([]models.Tag, error) {
	includeHidden := permissions.Allows(role, permissions.ActionManageTags)
	return s.tagRepo.List(ctx, includeHidden)
}

// SaveTag creates or updates a tag.
func (s *TagService) SaveTag(ctx context.Context, in SaveTagInput) (*models.Tag, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageTags) {
		return nil, models.NewForbiddenError("Managing tags requires the moderator role")
	}

	var tag *models.Tag
	if in.TagID == 0 {
		if strings.TrimSpace(in.Name) == "" {
			return nil, models.NewValidationError("Tag name is required")
		}
		tag = &models.Tag{
			Name:  in.Name,
			Slug:  slug.Make(in.Name),
			Color: in.Color,
		}
	} else {
		var err error
		tag, err = s.tagRepo.GetByID(ctx, in.TagID)
		if err != nil {
			return nil, err
		}
		if in.Name != "" {
			tag.Name = in.Name
			tag.Slug = slug.Make(in.Name)
		}
		if in.Color != "" {
			tag.Color = in.Color
		}
	}

	if in.Hidden != nil {
		tag.IsHidden = *in.Hidden
	}

	if in.TagID == 0 {
		if err := s.tagRepo.Create(ctx, tag); err != nil {
			return nil, err
		}
	} else {
		if err := s.tagRepo.Update(ctx, tag); err != nil {
			return nil, err
		}
	}
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id uint, role models.Role) error {
	if !permissions.Allows(role, permissions.ActionManageTags) {
		return models.NewForbiddenError("Managing tags requires the moderator role")
	}
	if _, err := s.tagRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tagRepo.Delete(ctx, id)
}
