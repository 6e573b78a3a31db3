package service

import (
	"context"
	"testing"

	"guildhall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_DeleteUser_Invariants(t *testing.T) {
	t.Parallel()

	t.Run("self-delete rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{})
		err := svc.DeleteUser(context.Background(), 1, models.RoleAdmin, 1)
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("last admin delete rejected", func(t *testing.T) {
		t.Parallel()
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleAdmin}, nil
			},
			countByRoleFn: func(_ context.Context, _ models.Role) (int64, error) {
				return 1, nil
			},
		}
		svc := NewUserService(repo)
		err := svc.DeleteUser(context.Background(), 1, models.RoleAdmin, 2)
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("non-last admin delete allowed", func(t *testing.T) {
		t.Parallel()
		deleted := false
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleAdmin}, nil
			},
			countByRoleFn: func(_ context.Context, _ models.Role) (int64, error) {
				return 2, nil
			},
			deleteFn: func(_ context.Context, _ uint) error {
				deleted = true
				return nil
			},
		}
		svc := NewUserService(repo)
		require.NoError(t, svc.DeleteUser(context.Background(), 1, models.RoleAdmin, 2))
		assert.True(t, deleted)
	})

	t.Run("member delete skips the admin count", func(t *testing.T) {
		t.Parallel()
		deleted := false
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleMember}, nil
			},
			deleteFn: func(_ context.Context, _ uint) error {
				deleted = true
				return nil
			},
		}
		svc := NewUserService(repo)
		require.NoError(t, svc.DeleteUser(context.Background(), 1, models.RoleAdmin, 5))
		assert.True(t, deleted)
	})

	t.Run("non-admin caller rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{})
		err := svc.DeleteUser(context.Background(), 1, models.RoleModerator, 2)
		assertAppErrorCode(t, err, "FORBIDDEN")
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	t.Parallel()

	t.Run("demoting the last admin rejected", func(t *testing.T) {
		t.Parallel()
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleAdmin}, nil
			},
			countByRoleFn: func(_ context.Context, _ models.Role) (int64, error) {
				return 1, nil
			},
		}
		svc := NewUserService(repo)
		_, err := svc.ChangeRole(context.Background(), ChangeRoleInput{
			CallerID: 1, CallerRole: models.RoleAdmin, TargetID: 2, NewRole: models.RoleMember,
		})
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("promotion works", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleMember}, nil
			},
			updateFn: func(_ context.Context, u *models.User) error {
				saved = u
				return nil
			},
		}
		svc := NewUserService(repo)
		user, err := svc.ChangeRole(context.Background(), ChangeRoleInput{
			CallerID: 1, CallerRole: models.RoleAdmin, TargetID: 2, NewRole: models.RoleModerator,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleModerator, user.Role)
		require.NotNil(t, saved)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{})
		_, err := svc.ChangeRole(context.Background(), ChangeRoleInput{
			CallerID: 1, CallerRole: models.RoleAdmin, TargetID: 2, NewRole: "superadmin",
		})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("member cannot edit another profile", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{})
		bio := "new bio"
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			TargetID: 2, CallerID: 1, Role: models.RoleMember, Bio: &bio,
		})
		assertAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		t.Parallel()
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Bio: "old bio", SteamID: "steam123"}, nil
			},
			updateFn: func(_ context.Context, _ *models.User) error { return nil },
		}
		svc := NewUserService(repo)
		bio := "fresh bio"
		user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			TargetID: 1, CallerID: 1, Role: models.RoleMember, Bio: &bio,
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh bio", user.Bio)
		assert.Equal(t, "steam123", user.SteamID)
	})

	t.Run("gaming profile update", func(t *testing.T) {
		t.Parallel()
		repo := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
			updateFn: func(_ context.Context, _ *models.User) error { return nil },
		}
		svc := NewUserService(repo)
		gp := models.GamingProfile{FavoriteGames: []string{"Factorio"}, PlayStyle: "casual"}
		user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			TargetID: 1, CallerID: 1, Role: models.RoleMember, GamingProfile: &gp,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Factorio"}, user.GamingProfile.FavoriteGames)
	})
}

func TestUserService_AdminCreateUser(t *testing.T) {
	t.Parallel()

	t.Run("weak password rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{})
		_, err := svc.AdminCreateUser(context.Background(), AdminCreateUserInput{
			CallerRole: models.RoleAdmin,
			Username:   "newplayer",
			Email:      "new@example.com",
			Password:   "short",
		})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("password stored hashed", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		repo := &userRepoStub{
			createFn: func(_ context.Context, u *models.User) error {
				created = u
				return nil
			},
		}
		svc := NewUserService(repo)
		_, err := svc.AdminCreateUser(context.Background(), AdminCreateUserInput{
			CallerRole: models.RoleAdmin,
			Username:   "newplayer",
			Email:      "New@Example.com",
			Password:   "Str0ng!Passw0rd",
			Role:       models.RoleModerator,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEqual(t, "Str0ng!Passw0rd", created.Password)
		assert.Equal(t, "new@example.com", created.Email, "email lowercased")
		assert.Equal(t, models.RoleModerator, created.Role)
	})
}
