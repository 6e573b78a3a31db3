// Package service contains the application's business logic.
package service

import (
	"context"
	"encoding/json"
	"strings"

	"guildhall/internal/models"
	"guildhall/internal/observability"
	"guildhall/internal/permissions"
	"guildhall/internal/render"
	"guildhall/internal/repository"
	"guildhall/internal/validation"
)

// PageService resolves, renders, and edits CMS pages and their blocks.
type PageService struct {
	pageRepo repository.PageRepository
	renderer *render.Renderer
}

// RenderedPage is a page plus its rendered block list.
type RenderedPage struct {
	Page   *models.Page           `json:"page"`
	Blocks []render.RenderedBlock `json:"blocks"`
}

type SavePageInput struct {
	Slug     string
	Content  map[string]interface{}
	EditorID uint
	Role     models.Role
}

type CreatePageInput struct {
	Slug        string
	Title       string
	Description string
	IsPublished bool
	ParentID    *uint
	Role        models.Role
}

type BlockInput struct {
	PageID      uint
	Type        models.BlockType
	Content     string
	Settings    string
	Position    int
	IsPublished bool
	Role        models.Role
}

type UpdateBlockInput struct {
	BlockID     uint
	Content     *string
	Settings    *string
	Position    *int
	IsPublished *bool
	Role        models.Role
}

// NewPageService creates a new page service.
func NewPageService(pageRepo repository.PageRepository, renderer *render.Renderer) *PageService {
	return &PageService{pageRepo: pageRepo, renderer: renderer}
}

// pageDefaults describes a page the site synthesizes on first access.
type pageDefaults struct {
	Title       string
	Description string
	Blocks      []models.ContentBlock
}

// wellKnownPages are the site's structural pages. Requesting one of these
// slugs before it exists creates it with its default blocks.
var wellKnownPages = map[string]pageDefaults{
	"home": {
		Title:       "Home",
		Description: "Community landing page",
		Blocks: []models.ContentBlock{
			{Type: models.BlockTypeHero, Content: `{"title":"Welcome to the community","body":"Find your squad, join events, and jump into the forum."}`, Position: 0, IsPublished: true},
			{Type: models.BlockTypeGrid, Content: `[{"title":"Forum"},{"title":"Events"},{"title":"News"}]`, Settings: `{"columns":3}`, Position: 1, IsPublished: true},
		},
	},
	"about": {
		Title:       "About",
		Description: "Who we are",
		Blocks: []models.ContentBlock{
			{Type: models.BlockTypeText, Content: `{"body":"## About us\n\nA community of players, for players."}`, Position: 0, IsPublished: true},
		},
	},
	"contact": {
		Title:       "Contact",
		Description: "How to reach the staff",
		Blocks: []models.ContentBlock{
			{Type: models.BlockTypeText, Content: `{"body":"## Contact\n\nReach the staff on our Discord or by email."}`, Position: 0, IsPublished: true},
			{Type: models.BlockTypeButton, Content: `{"label":"Join our Discord"}`, Settings: `{"buttonUrl":"https://discord.gg/example"}`, Position: 1, IsPublished: true},
		},
	},
	"servers": {
		Title:       "Game Servers",
		Description: "Our hosted servers",
		Blocks: []models.ContentBlock{
			{Type: models.BlockTypeText, Content: `{"body":"## Servers\n\nConnection details for our hosted game servers."}`, Position: 0, IsPublished: true},
			{Type: models.BlockTypeDivider, Position: 1, IsPublished: true},
		},
	},
}

// WellKnownSlugs lists the slugs that are synthesized on demand.
func WellKnownSlugs() []string {
	out := make([]string, 0, len(wellKnownPages))
	for slug := range wellKnownPages {
		out = append(out, slug)
	}
	return out
}

// DefaultPage builds the default page and blocks for a well-known slug.
// The second return is false for slugs that have no defaults.
func DefaultPage(slug string) (*models.Page, bool) {
	def, ok := wellKnownPages[slug]
	if !ok {
		return nil, false
	}
	blocks := make([]models.ContentBlock, len(def.Blocks))
	copy(blocks, def.Blocks)
	return &models.Page{
		Slug:        slug,
		Title:       def.Title,
		Description: def.Description,
		IsPublished: true,
		Content:     "{}",
		Blocks:      blocks,
	}, true
}

// GetPage resolves a page by slug and renders its published blocks. A
// well-known slug that does not exist yet is created with its defaults first,
// so the structural pages always resolve.
func (s *PageService) GetPage(ctx context.Context, slug string, includeUnpublished bool) (*RenderedPage, error) {
	page, err := s.pageRepo.GetBySlug(ctx, slug)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		page, err = s.synthesizeWellKnown(ctx, slug)
		if err != nil {
			return nil, err
		}
	}

	if !page.IsPublished && !includeUnpublished {
		return nil, models.NewNotFoundError("Page", slug)
	}

	blocks := page.Blocks
	if !includeUnpublished {
		published := make([]models.ContentBlock, 0, len(blocks))
		for _, b := range blocks {
			if b.IsPublished {
				published = append(published, b)
			}
		}
		blocks = published
	}

	observability.PageRenders.WithLabelValues(page.Slug).Inc()
	return &RenderedPage{
		Page:   page,
		Blocks: s.renderer.RenderPage(blocks),
	}, nil
}

// synthesizeWellKnown creates a well-known page with its default blocks. A
// concurrent create racing on the slug's unique index resolves by re-reading.
func (s *PageService) synthesizeWellKnown(ctx context.Context, slug string) (*models.Page, error) {
	def, ok := DefaultPage(slug)
	if !ok {
		return nil, models.NewNotFoundError("Page", slug)
	}
	if err := s.pageRepo.Create(ctx, def); err != nil {
		if appErr, isApp := err.(*models.AppError); isApp && appErr.Code == "CONFLICT" {
			return s.pageRepo.GetBySlug(ctx, slug)
		}
		return nil, err
	}
	return def, nil
}

// CreatePage creates a new page shell without blocks.
func (s *PageService) CreatePage(ctx context.Context, in CreatePageInput) (*models.Page, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageContent) {
		return nil, models.NewForbiddenError("Managing pages requires the admin role")
	}
	if err := validation.ValidatePageSlug(in.Slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}

	page := &models.Page{
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		IsPublished: in.IsPublished,
		ParentID:    in.ParentID,
		Content:     "{}",
	}
	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// SavePage merges the partial content payload into the page's content at key
// level (values are overwritten whole, untouched keys survive) and appends
// exactly one revision carrying the merged result.
func (s *PageService) SavePage(ctx context.Context, in SavePageInput) (*models.Page, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageContent) {
		return nil, models.NewForbiddenError("Editing pages requires the admin role")
	}
	if in.Content == nil {
		return nil, models.NewValidationError("Content payload is required")
	}

	page, err := s.pageRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}

	merged := map[string]interface{}{}
	if page.Content != "" {
		if err := json.Unmarshal([]byte(page.Content), &merged); err != nil {
			// A corrupt stored payload is replaced rather than blocking edits.
			merged = map[string]interface{}{}
		}
	}
	for k, v := range in.Content {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	page.Content = string(raw)

	if err := s.pageRepo.Update(ctx, page); err != nil {
		return nil, err
	}

	rev := &models.ContentRevision{
		PageID:   page.ID,
		Content:  page.Content,
		EditorID: in.EditorID,
	}
	if err := s.pageRepo.AppendRevision(ctx, rev); err != nil {
		return nil, err
	}
	observability.RevisionsWritten.Inc()

	return page, nil
}

// ListRevisions returns a page's revision history, newest first.
func (s *PageService) ListRevisions(ctx context.Context, slug string, role models.Role, limit, offset int) ([]models.ContentRevision, error) {
	if !permissions.Allows(role, permissions.ActionManageContent) {
		return nil, models.NewForbiddenError("Revision history requires the admin role")
	}
	page, err := s.pageRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.pageRepo.ListRevisions(ctx, page.ID, limit, offset)
}

// CreateBlock adds a block to a page.
func (s *PageService) CreateBlock(ctx context.Context, in BlockInput) (*models.ContentBlock, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageContent) {
		return nil, models.NewForbiddenError("Managing blocks requires the admin role")
	}
	if in.PageID == 0 {
		return nil, models.NewValidationError("page_id is required")
	}
	if in.Type == "" {
		return nil, models.NewValidationError("Block type is required")
	}
	if _, err := s.pageRepo.GetByID(ctx, in.PageID); err != nil {
		return nil, err
	}

	block := &models.ContentBlock{
		PageID:      in.PageID,
		Type:        in.Type,
		Content:     in.Content,
		Settings:    in.Settings,
		Position:    in.Position,
		IsPublished: in.IsPublished,
	}
	if err := s.pageRepo.CreateBlock(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// UpdateBlock applies a partial update to a block. Nil fields are untouched.
func (s *PageService) UpdateBlock(ctx context.Context, in UpdateBlockInput) (*models.ContentBlock, error) {
	if !permissions.Allows(in.Role, permissions.ActionManageContent) {
		return nil, models.NewForbiddenError("Managing blocks requires the admin role")
	}
	block, err := s.pageRepo.GetBlock(ctx, in.BlockID)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		block.Content = *in.Content
	}
	if in.Settings != nil {
		block.Settings = *in.Settings
	}
	if in.Position != nil {
		block.Position = *in.Position
	}
	if in.IsPublished != nil {
		block.IsPublished = *in.IsPublished
	}

	if err := s.pageRepo.UpdateBlock(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// DeleteBlock removes a block from its page.
func (s *PageService) DeleteBlock(ctx context.Context, blockID uint, role models.Role) error {
	if !permissions.Allows(role, permissions.ActionManageContent) {
		return models.NewForbiddenError("Managing blocks requires the admin role")
	}
	return s.pageRepo.DeleteBlock(ctx, blockID)
}

// DeletePage removes a page.
func (s *PageService) DeletePage(ctx context.Context, pageID uint, role models.Role) error {
	if !permissions.Allows(role, permissions.ActionManageContent) {
		return models.NewForbiddenError("Managing pages requires the admin role")
	}
	return s.pageRepo.Delete(ctx, pageID)
}

// ListPages lists pages; unpublished pages are only visible to content admins.
func (s *PageService) ListPages(ctx context.Context, role models.Role, limit, offset int) ([]models.Page, error) {
	publishedOnly := !permissions.Allows(role, permissions.ActionManageContent)
	return s.pageRepo.List(ctx, publishedOnly, limit, offset)
}

func isNotFound(err error) bool {
	appErr, ok := err.(*models.AppError)
	return ok && appErr.Code == "NOT_FOUND"
}
