package service

import (
	"context"
	"testing"
	"time"

	"guildhall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_Register(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)

	newSvc := func(event *models.Event, saved **models.Event) *EventService {
		repo := &eventRepoStub{
			getByIDFn: func(_ context.Context, _ uint) (*models.Event, error) {
				return event, nil
			},
			updateFn: func(_ context.Context, e *models.Event) error {
				*saved = e
				return nil
			},
		}
		svc := NewEventService(repo)
		svc.now = func() time.Time { return base }
		return svc
	}

	t.Run("deadline passed", func(t *testing.T) {
		t.Parallel()
		deadline := base.Add(-time.Hour)
		var saved *models.Event
		svc := newSvc(&models.Event{ID: 1, RegistrationDeadline: &deadline}, &saved)

		_, err := svc.Register(context.Background(), 1, models.RoleMember)
		assertAppErrorCode(t, err, "CONFLICT")
		assert.Nil(t, saved)
	})

	t.Run("event full", func(t *testing.T) {
		t.Parallel()
		var saved *models.Event
		svc := newSvc(&models.Event{ID: 1, MaxParticipants: 10, ParticipantCount: 10}, &saved)

		_, err := svc.Register(context.Background(), 1, models.RoleMember)
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("success increments counter", func(t *testing.T) {
		t.Parallel()
		deadline := base.Add(time.Hour)
		var saved *models.Event
		svc := newSvc(&models.Event{ID: 1, RegistrationDeadline: &deadline, MaxParticipants: 10, ParticipantCount: 4}, &saved)

		event, err := svc.Register(context.Background(), 1, models.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, 5, event.ParticipantCount)
		require.NotNil(t, saved)
		assert.Equal(t, 5, saved.ParticipantCount)
	})

	t.Run("unlimited capacity never fills", func(t *testing.T) {
		t.Parallel()
		var saved *models.Event
		svc := newSvc(&models.Event{ID: 1, MaxParticipants: 0, ParticipantCount: 9999}, &saved)

		event, err := svc.Register(context.Background(), 1, models.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, 10000, event.ParticipantCount)
	})
}

func TestEventService_SaveEvent(t *testing.T) {
	t.Parallel()

	t.Run("member cannot manage events", func(t *testing.T) {
		t.Parallel()
		svc := NewEventService(&eventRepoStub{})
		starts := time.Now().Add(24 * time.Hour)
		_, err := svc.SaveEvent(context.Background(), SaveEventInput{
			Role: models.RoleMember, Title: "Game night", StartsAt: &starts,
		})
		assertAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("moderator creates with slug", func(t *testing.T) {
		t.Parallel()
		var created *models.Event
		repo := &eventRepoStub{
			createFn: func(_ context.Context, e *models.Event) error {
				created = e
				return nil
			},
		}
		svc := NewEventService(repo)
		starts := time.Now().Add(24 * time.Hour)
		_, err := svc.SaveEvent(context.Background(), SaveEventInput{
			Role: models.RoleModerator, CreatedByID: 3, Title: "Friday Game Night!", StartsAt: &starts,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "friday-game-night", created.Slug)
	})
}

func TestNewsService_Publishing(t *testing.T) {
	t.Parallel()

	t.Run("publishing stamps PublishedAt once", func(t *testing.T) {
		t.Parallel()
		stamped := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
		article := &models.NewsArticle{ID: 1, Title: "Patch", PublishedAt: &stamped, IsPublished: false}
		repo := &newsRepoStub{
			getByIDFn: func(_ context.Context, _ uint) (*models.NewsArticle, error) {
				return article, nil
			},
			updateFn: func(_ context.Context, _ *models.NewsArticle) error { return nil },
		}
		svc := NewNewsService(repo)
		svc.now = func() time.Time { return stamped.Add(48 * time.Hour) }

		publish := true
		got, err := svc.SaveArticle(context.Background(), SaveArticleInput{
			ArticleID: 1, Role: models.RoleModerator, Publish: &publish,
		})
		require.NoError(t, err)
		assert.True(t, got.IsPublished)
		assert.Equal(t, stamped, *got.PublishedAt, "original publish timestamp kept")
	})

	t.Run("draft hidden from members", func(t *testing.T) {
		t.Parallel()
		repo := &newsRepoStub{
			getBySlugFn: func(_ context.Context, s string) (*models.NewsArticle, error) {
				return &models.NewsArticle{ID: 1, Slug: s, IsPublished: false}, nil
			},
		}
		svc := NewNewsService(repo)

		_, err := svc.GetArticle(context.Background(), "draft", models.RoleMember)
		assertAppErrorCode(t, err, "NOT_FOUND")

		got, err := svc.GetArticle(context.Background(), "draft", models.RoleModerator)
		require.NoError(t, err)
		assert.False(t, got.IsPublished)
	})
}
