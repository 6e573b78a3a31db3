package service

import (
	"context"
	"testing"

	"guildhall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumService_DeleteCategory(t *testing.T) {
	t.Parallel()

	t.Run("rejected while threads exist", func(t *testing.T) {
		t.Parallel()
		repo := &forumRepoStub{
			getCategoryFn: func(_ context.Context, id uint) (*models.Category, error) {
				return &models.Category{ID: id, Name: "General"}, nil
			},
			countThreadsInCategoryFn: func(_ context.Context, _ uint) (int64, error) {
				return 3, nil
			},
		}
		svc := NewForumService(repo, &tagRepoStub{})

		err := svc.DeleteCategory(context.Background(), 1, models.RoleAdmin)
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("empty category deletes", func(t *testing.T) {
		t.Parallel()
		deleted := false
		repo := &forumRepoStub{
			getCategoryFn: func(_ context.Context, id uint) (*models.Category, error) {
				return &models.Category{ID: id, Name: "Empty"}, nil
			},
			countThreadsInCategoryFn: func(_ context.Context, _ uint) (int64, error) {
				return 0, nil
			},
			deleteCategoryFn: func(_ context.Context, _ uint) error {
				deleted = true
				return nil
			},
		}
		svc := NewForumService(repo, &tagRepoStub{})

		require.NoError(t, svc.DeleteCategory(context.Background(), 1, models.RoleAdmin))
		assert.True(t, deleted)
	})

	t.Run("moderator cannot manage categories", func(t *testing.T) {
		t.Parallel()
		svc := NewForumService(&forumRepoStub{}, &tagRepoStub{})
		err := svc.DeleteCategory(context.Background(), 1, models.RoleModerator)
		assertAppErrorCode(t, err, "FORBIDDEN")
	})
}

func TestForumService_CreatePost_LockedThread(t *testing.T) {
	t.Parallel()

	lockedThreadRepo := func(created *bool) *forumRepoStub {
		return &forumRepoStub{
			getThreadFn: func(_ context.Context, id uint) (*models.Thread, error) {
				return &models.Thread{ID: id, IsLocked: true}, nil
			},
			createPostFn: func(_ context.Context, _ *models.Post) error {
				*created = true
				return nil
			},
		}
	}

	t.Run("member rejected", func(t *testing.T) {
		t.Parallel()
		var created bool
		svc := NewForumService(lockedThreadRepo(&created), &tagRepoStub{})
		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			ThreadID: 1, AuthorID: 2, Body: "hi", Role: models.RoleMember,
		})
		assertAppErrorCode(t, err, "FORBIDDEN")
		assert.False(t, created)
	})

	t.Run("moderator allowed", func(t *testing.T) {
		t.Parallel()
		var created bool
		svc := NewForumService(lockedThreadRepo(&created), &tagRepoStub{})
		post, err := svc.CreatePost(context.Background(), CreatePostInput{
			ThreadID: 1, AuthorID: 2, Body: "locked note", Role: models.RoleModerator,
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "locked note", post.Body)
	})

	t.Run("admin allowed", func(t *testing.T) {
		t.Parallel()
		var created bool
		svc := NewForumService(lockedThreadRepo(&created), &tagRepoStub{})
		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			ThreadID: 1, AuthorID: 2, Body: "admin note", Role: models.RoleAdmin,
		})
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestForumService_Vote(t *testing.T) {
	t.Parallel()

	t.Run("invalid value rejected", func(t *testing.T) {
		t.Parallel()
		repo := &forumRepoStub{
			getThreadFn: func(_ context.Context, id uint) (*models.Thread, error) {
				return &models.Thread{ID: id}, nil
			},
		}
		svc := NewForumService(repo, &tagRepoStub{})
		_, err := svc.Vote(context.Background(), VoteInput{ThreadID: 1, UserID: 2, Value: 5, Role: models.RoleMember})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("upvote recorded", func(t *testing.T) {
		t.Parallel()
		var gotUser, gotThread uint
		var gotValue int
		repo := &forumRepoStub{
			getThreadFn: func(_ context.Context, id uint) (*models.Thread, error) {
				return &models.Thread{ID: id}, nil
			},
			voteFn: func(_ context.Context, userID, threadID uint, value int) error {
				gotUser, gotThread, gotValue = userID, threadID, value
				return nil
			},
		}
		svc := NewForumService(repo, &tagRepoStub{})
		_, err := svc.Vote(context.Background(), VoteInput{ThreadID: 1, UserID: 2, Value: 1, Role: models.RoleMember})
		require.NoError(t, err)
		assert.Equal(t, uint(2), gotUser)
		assert.Equal(t, uint(1), gotThread)
		assert.Equal(t, 1, gotValue)
	})

	t.Run("zero removes vote", func(t *testing.T) {
		t.Parallel()
		unvoted := false
		repo := &forumRepoStub{
			getThreadFn: func(_ context.Context, id uint) (*models.Thread, error) {
				return &models.Thread{ID: id}, nil
			},
			unvoteFn: func(_ context.Context, _, _ uint) error {
				unvoted = true
				return nil
			},
		}
		svc := NewForumService(repo, &tagRepoStub{})
		_, err := svc.Vote(context.Background(), VoteInput{ThreadID: 1, UserID: 2, Value: 0, Role: models.RoleMember})
		require.NoError(t, err)
		assert.True(t, unvoted)
	})
}

func TestForumService_HiddenTagFiltering(t *testing.T) {
	t.Parallel()

	thread := func() *models.Thread {
		return &models.Thread{
			ID: 1,
			Tags: []models.Tag{
				{ID: 1, Name: "LFG", IsHidden: false},
				{ID: 2, Name: "staff-only", IsHidden: true},
			},
		}
	}

	t.Run("member sees only visible tags", func(t *testing.T) {
		t.Parallel()
		repo := &forumRepoStub{
			getThreadFn: func(_ context.Context, _ uint) (*models.Thread, error) { return thread(), nil },
		}
		svc := NewForumService(repo, &tagRepoStub{})
		got, err := svc.GetThread(context.Background(), 1, models.RoleMember)
		require.NoError(t, err)
		require.Len(t, got.Tags, 1)
		assert.Equal(t, "LFG", got.Tags[0].Name)
	})

	t.Run("moderator sees hidden tags", func(t *testing.T) {
		t.Parallel()
		repo := &forumRepoStub{
			getThreadFn: func(_ context.Context, _ uint) (*models.Thread, error) { return thread(), nil },
		}
		svc := NewForumService(repo, &tagRepoStub{})
		got, err := svc.GetThread(context.Background(), 1, models.RoleModerator)
		require.NoError(t, err)
		assert.Len(t, got.Tags, 2)
	})
}

func TestForumService_SetLocked_RequiresModerator(t *testing.T) {
	t.Parallel()

	svc := NewForumService(&forumRepoStub{}, &tagRepoStub{})
	_, err := svc.SetLocked(context.Background(), 1, true, models.RoleMember)
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestForumService_UpdateThread_Ownership(t *testing.T) {
	t.Parallel()

	repoFor := func(authorID uint) *forumRepoStub {
		stored := &models.Thread{ID: 1, AuthorID: authorID, Title: "Old", Body: "old"}
		return &forumRepoStub{
			getThreadFn: func(_ context.Context, _ uint) (*models.Thread, error) {
				return stored, nil
			},
			updateThreadFn: func(_ context.Context, t *models.Thread) error {
				stored = t
				return nil
			},
		}
	}

	t.Run("non-owner member rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewForumService(repoFor(1), &tagRepoStub{})
		_, err := svc.UpdateThread(context.Background(), UpdateThreadInput{
			ThreadID: 1, UserID: 2, Role: models.RoleMember, Body: "edit",
		})
		assertAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("moderator edits others", func(t *testing.T) {
		t.Parallel()
		svc := NewForumService(repoFor(1), &tagRepoStub{})
		got, err := svc.UpdateThread(context.Background(), UpdateThreadInput{
			ThreadID: 1, UserID: 2, Role: models.RoleModerator, Body: "moderated",
		})
		require.NoError(t, err)
		assert.Equal(t, "moderated", got.Body)
	})
}
