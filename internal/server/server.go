// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"guildhall/internal/bootstrap"
	"guildhall/internal/config"
	"guildhall/internal/middleware"
	"guildhall/internal/models"
	"guildhall/internal/observability"
	"guildhall/internal/permissions"
	"guildhall/internal/render"
	"guildhall/internal/repository"
	"guildhall/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo  repository.UserRepository
	pageRepo  repository.PageRepository
	forumRepo repository.ForumRepository
	tagRepo   repository.TagRepository
	newsRepo  repository.NewsRepository
	eventRepo repository.EventRepository

	pageService  *service.PageService
	forumService *service.ForumService
	userService  *service.UserService
	tagService   *service.TagService
	newsService  *service.NewsService
	eventService *service.EventService
}

// NewServer creates a new server instance and establishes its own DB and
// Redis connections. Built-in content is seeded when an initial admin
// password is configured.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		EnsureDefaults: cfg.AdminPassword != "",
	})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and the bootstrap layer use this to inject their own DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.InitHTTPMetrics("guildhall-api"),
		userRepo:       repository.NewUserRepository(db),
		pageRepo:       repository.NewPageRepository(db),
		forumRepo:      repository.NewForumRepository(db),
		tagRepo:        repository.NewTagRepository(db),
		newsRepo:       repository.NewNewsRepository(db),
		eventRepo:      repository.NewEventRepository(db),
	}

	server.pageService = service.NewPageService(server.pageRepo, render.New())
	server.forumService = service.NewForumService(server.forumRepo, server.tagRepo)
	server.userService = service.NewUserService(server.userRepo)
	server.tagService = service.NewTagService(server.tagRepo)
	server.newsService = service.NewNewsService(server.newsRepo)
	server.eventService = service.NewEventService(server.eventRepo)

	// Default content seeding is explicit (bootstrap or cmd/seed), never here.

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global per-IP limit; route-specific Redis limits come on top.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Guildhall Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Public CMS pages
	pages := api.Group("/pages")
	pages.Get("/", s.ListPages)
	pages.Get("/:slug", s.GetPage)

	// Public forum browse
	forum := api.Group("/forum")
	forum.Get("/categories", s.ListCategories)
	forum.Get("/threads", s.ListThreads)
	forum.Get("/threads/:id/posts", s.ListPosts)
	forum.Get("/threads/:id", s.GetThread)
	forum.Get("/posts/:id/comments", s.ListComments)

	// Public editorial
	api.Get("/tags", s.ListTags)
	news := api.Group("/news")
	news.Get("/", s.ListNews)
	news.Get("/:slug", s.GetNewsArticle)
	events := api.Group("/events")
	events.Get("/", s.ListEvents)
	events.Get("/:slug", s.GetEvent)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	// Protected forum routes
	pforum := protected.Group("/forum")
	pforum.Post("/threads", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_thread"), s.CreateThread)
	// Specific /:id/:resource routes before generic /:id routes.
	pforum.Post("/threads/:id/posts", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	pforum.Post("/threads/:id/vote", s.VoteThread)
	pforum.Post("/threads/:id/pin", s.RequirePermission(permissions.ActionModerateForum), s.PinThread)
	pforum.Post("/threads/:id/lock", s.RequirePermission(permissions.ActionModerateForum), s.LockThread)
	pforum.Put("/threads/:id", s.UpdateThread)
	pforum.Delete("/threads/:id", s.DeleteThread)
	pforum.Post("/posts/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	pforum.Put("/posts/:id", s.UpdatePost)
	pforum.Delete("/posts/:id", s.DeletePost)
	pforum.Delete("/comments/:id", s.DeleteComment)

	// Event registration
	protected.Post("/events/:id/register", s.RegisterForEvent)

	// Moderator editorial surfaces
	protected.Post("/tags", s.RequirePermission(permissions.ActionManageTags), s.SaveTag)
	protected.Put("/tags/:id", s.RequirePermission(permissions.ActionManageTags), s.SaveTag)
	protected.Delete("/tags/:id", s.RequirePermission(permissions.ActionManageTags), s.DeleteTag)
	protected.Post("/news", s.RequirePermission(permissions.ActionManageNews), s.SaveNewsArticle)
	protected.Put("/news/:id", s.RequirePermission(permissions.ActionManageNews), s.SaveNewsArticle)
	protected.Delete("/news/:id", s.RequirePermission(permissions.ActionManageNews), s.DeleteNewsArticle)
	protected.Post("/events", s.RequirePermission(permissions.ActionManageEvents), s.SaveEvent)
	protected.Put("/events/:id", s.RequirePermission(permissions.ActionManageEvents), s.SaveEvent)
	protected.Delete("/events/:id", s.RequirePermission(permissions.ActionManageEvents), s.DeleteEvent)

	// Admin routes
	admin := protected.Group("/admin")
	adminContent := admin.Group("", s.RequirePermission(permissions.ActionManageContent))
	adminContent.Post("/pages", s.CreatePage)
	adminContent.Put("/pages/:slug", s.SavePage)
	adminContent.Get("/pages/:slug/revisions", s.ListRevisions)
	adminContent.Get("/pages/:slug", s.GetPageDraft)
	adminContent.Delete("/pages/:id", s.DeletePage)
	adminContent.Post("/blocks", s.CreateBlock)
	adminContent.Put("/blocks/:id", s.UpdateBlock)
	adminContent.Delete("/blocks/:id", s.DeleteBlock)

	adminUsers := admin.Group("/users", s.RequirePermission(permissions.ActionManageUsers))
	adminUsers.Get("/", s.ListUsers)
	adminUsers.Post("/", s.AdminCreateUser)
	adminUsers.Put("/:id/role", s.ChangeUserRole)
	adminUsers.Put("/:id", s.AdminUpdateUser)
	adminUsers.Delete("/:id", s.AdminDeleteUser)

	adminForum := admin.Group("/forum", s.RequirePermission(permissions.ActionManageCategories))
	adminForum.Post("/categories", s.CreateCategory)
	adminForum.Put("/categories/:id", s.UpdateCategory)
	adminForum.Delete("/categories/:id", s.DeleteCategory)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Cache and rate limits degrade without Redis but the API still works.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the JWT
// and stores userID plus the role claim in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "guildhall-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "guildhall-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		role := models.RoleMember
		if roleClaim, roleOk := claims["role"].(string); roleOk && models.Role(roleClaim).Valid() {
			role = models.Role(roleClaim)
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		c.Locals("userID", uint(userID))
		c.Locals("userRole", string(role))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		ctx = context.WithValue(ctx, middleware.UserRoleKey, string(role))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequirePermission returns middleware that rejects callers whose role does
// not allow the action. Must be placed after AuthRequired.
func (s *Server) RequirePermission(action permissions.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := s.currentRole(c)
		if !permissions.Allows(role, action) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError(fmt.Sprintf("Action %q requires elevated permissions", action)))
		}
		return c.Next()
	}
}

// Shutdown releases server resources. The fiber app itself is owned and shut
// down by the caller.
func (s *Server) Shutdown() error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
