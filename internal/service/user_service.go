package service

import (
	"context"
	"strings"

	"guildhall/internal/models"
	"guildhall/internal/permissions"
	"guildhall/internal/repository"
	"guildhall/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles profile and account management.
type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	TargetID uint
	CallerID uint
	Role     models.Role

	Bio           *string
	Avatar        *string
	SteamID       *string
	DiscordID     *string
	TwitchID      *string
	Settings      *models.UserSettings
	GamingProfile *models.GamingProfile
}

type AdminCreateUserInput struct {
	CallerRole models.Role
	Username   string
	Email      string
	Password   string
	Role       models.Role
}

type ChangeRoleInput struct {
	CallerID   uint
	CallerRole models.Role
	TargetID   uint
	NewRole    models.Role
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile edits a user's profile. Users edit themselves; editing anyone
// else requires user management rights.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.TargetID != in.CallerID && !permissions.Allows(in.Role, permissions.ActionManageUsers) {
		return nil, models.NewForbiddenError("You can only edit your own profile")
	}

	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.SteamID != nil {
		user.SteamID = *in.SteamID
	}
	if in.DiscordID != nil {
		user.DiscordID = *in.DiscordID
	}
	if in.TwitchID != nil {
		user.TwitchID = *in.TwitchID
	}
	if in.Settings != nil {
		user.Settings = *in.Settings
	}
	if in.GamingProfile != nil {
		user.GamingProfile = *in.GamingProfile
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]models.User, error) {
	if !permissions.Allows(role, permissions.ActionManageUsers) {
		return nil, models.NewForbiddenError("Listing users requires the admin role")
	}
	return s.userRepo.List(ctx, limit, offset)
}

// AdminCreateUser creates an account with an explicit role.
func (s *UserService) AdminCreateUser(ctx context.Context, in AdminCreateUserInput) (*models.User, error) {
	if !permissions.Allows(in.CallerRole, permissions.ActionManageUsers) {
		return nil, models.NewForbiddenError("Creating users requires the admin role")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, models.NewValidationError("Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    strings.ToLower(in.Email),
		Password: string(hash),
		Role:     role,
		Settings: models.UserSettings{Theme: "dark", EmailNotifications: true, ForumNotifications: true, EventReminders: true},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole updates a user's role. Demoting the last admin is rejected so
// the site can never end up without one.
func (s *UserService) ChangeRole(ctx context.Context, in ChangeRoleInput) (*models.User, error) {
	if !permissions.Allows(in.CallerRole, permissions.ActionManageUsers) {
		return nil, models.NewForbiddenError("Changing roles requires the admin role")
	}
	if !in.NewRole.Valid() {
		return nil, models.NewValidationError("Unknown role")
	}

	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}
	if user.Role == in.NewRole {
		return user, nil
	}

	if user.Role == models.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, models.NewConflictError("Cannot demote the last admin")
		}
	}

	user.Role = in.NewRole
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Two invariants hold: a caller never deletes
// their own account through this path, and the last admin cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, callerID uint, callerRole models.Role, targetID uint) error {
	if !permissions.Allows(callerRole, permissions.ActionManageUsers) {
		return models.NewForbiddenError("Deleting users requires the admin role")
	}
	if callerID == targetID {
		return models.NewConflictError("Cannot delete your own account")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return models.NewConflictError("Cannot delete the last admin")
		}
	}

	return s.userRepo.Delete(ctx, targetID)
}
