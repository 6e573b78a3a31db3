package server

import (
	"strconv"

	"guildhall/internal/models"
	"guildhall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NewsRequest is the payload for creating or updating a news article.
type NewsRequest struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
	Publish *bool  `json:"publish"`
}

// ListNews returns articles; drafts appear only for news managers.
func (s *Server) ListNews(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	articles, err := s.newsService.ListArticles(c.UserContext(), s.currentRole(c), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"articles": articles})
}

// GetNewsArticle returns one article by slug.
func (s *Server) GetNewsArticle(c *fiber.Ctx) error {
	article, err := s.newsService.GetArticle(c.UserContext(), c.Params("slug"), s.currentRole(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(article)
}

// SaveNewsArticle creates an article on POST and updates one when the route
// carries an ID.
func (s *Server) SaveNewsArticle(c *fiber.Ctx) error {
	var req NewsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var articleID uint
	if raw := c.Params("id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid id parameter"))
		}
		articleID = uint(parsed)
	}

	article, err := s.newsService.SaveArticle(c.UserContext(), service.SaveArticleInput{
		ArticleID: articleID,
		AuthorID:  s.currentUserID(c),
		Role:      s.currentRole(c),
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		Publish:   req.Publish,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	if articleID == 0 {
		return c.Status(fiber.StatusCreated).JSON(article)
	}
	return c.JSON(article)
}

// DeleteNewsArticle removes an article.
func (s *Server) DeleteNewsArticle(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.newsService.DeleteArticle(c.UserContext(), id, s.currentRole(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Article deleted"})
}
