package server

import (
	"guildhall/internal/models"
	"guildhall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest carries a partial profile edit. Absent fields are left
// untouched.
type UpdateProfileRequest struct {
	Bio           *string               `json:"bio"`
	Avatar        *string               `json:"avatar"`
	SteamID       *string               `json:"steam_id"`
	DiscordID     *string               `json:"discord_id"`
	TwitchID      *string               `json:"twitch_id"`
	Settings      *models.UserSettings  `json:"settings"`
	GamingProfile *models.GamingProfile `json:"gaming_profile"`
}

// AdminCreateUserRequest is the payload for admin-side account creation.
type AdminCreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ChangeRoleRequest assigns a new role to a user.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// GetMyProfile returns the authenticated user's account.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile edits the authenticated user's own profile.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := s.currentUserID(c)
	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		TargetID:      userID,
		CallerID:      userID,
		Role:          s.currentRole(c),
		Bio:           req.Bio,
		Avatar:        req.Avatar,
		SteamID:       req.SteamID,
		DiscordID:     req.DiscordID,
		TwitchID:      req.TwitchID,
		Settings:      req.Settings,
		GamingProfile: req.GamingProfile,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// ListUsers returns all accounts for the admin panel.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	users, err := s.userService.ListUsers(c.UserContext(), s.currentRole(c), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// AdminCreateUser creates an account with an explicit role.
func (s *Server) AdminCreateUser(c *fiber.Ctx) error {
	var req AdminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.AdminCreateUser(c.UserContext(), service.AdminCreateUserInput{
		CallerRole: s.currentRole(c),
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Role:       models.Role(req.Role),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// AdminUpdateUser edits another user's profile.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		TargetID:      id,
		CallerID:      s.currentUserID(c),
		Role:          s.currentRole(c),
		Bio:           req.Bio,
		Avatar:        req.Avatar,
		SteamID:       req.SteamID,
		DiscordID:     req.DiscordID,
		TwitchID:      req.TwitchID,
		Settings:      req.Settings,
		GamingProfile: req.GamingProfile,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// ChangeUserRole assigns a new role. Demoting the last admin is rejected.
func (s *Server) ChangeUserRole(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	var req ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.ChangeRole(c.UserContext(), service.ChangeRoleInput{
		CallerID:   s.currentUserID(c),
		CallerRole: s.currentRole(c),
		TargetID:   id,
		NewRole:    models.Role(req.Role),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// AdminDeleteUser removes an account. Self-deletion and deleting the last
// admin are rejected.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.userService.DeleteUser(c.UserContext(), s.currentUserID(c), s.currentRole(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
