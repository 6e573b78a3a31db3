package repository

import (
	"context"
	"regexp"
	"testing"

	"guildhall/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestForumRepository_GetCategory(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewForumRepository(db)
	ctx := context.Background()

	t.Run("Success with thread count", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "slug", "thread_count"}).
			AddRow(1, "General", "general", 7)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT categories.*, (SELECT COUNT(*) FROM threads WHERE threads.category_id = categories.id AND threads.deleted_at IS NULL) as thread_count FROM "categories"`)).
			WithArgs(1, 1).
			WillReturnRows(rows)

		category, err := repo.GetCategory(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "General", category.Name)
		assert.Equal(t, 7, category.ThreadCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "categories"`)).
			WithArgs(42, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.GetCategory(ctx, 42)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestForumRepository_CountThreadsInCategory(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewForumRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "threads" WHERE category_id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountThreadsInCategory(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForumRepository_GetThread(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewForumRepository(db)
	ctx := context.Background()

	threadRows := sqlmock.NewRows([]string{"id", "category_id", "author_id", "title", "score", "post_count"}).
		AddRow(5, 1, 2, "Patch notes discussion", 3, 14)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT threads.*, (SELECT COALESCE(SUM(value), 0) FROM thread_votes WHERE thread_votes.thread_id = threads.id) as score`)).
		WithArgs(5, 1).
		WillReturnRows(threadRows)

	// Preloads for Author and Tags.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "fragmaster"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "thread_tags"`)).
		WillReturnRows(sqlmock.NewRows([]string{"thread_id", "tag_id"}))

	thread, err := repo.GetThread(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, thread.Score)
	assert.Equal(t, 14, thread.PostCount)
	require.NotNil(t, thread.Author)
	assert.Equal(t, "fragmaster", thread.Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForumRepository_Vote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewForumRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO thread_votes`)).
		WithArgs(2, 5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Vote(ctx, 2, 5, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForumRepository_GetVote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewForumRepository(db)
	ctx := context.Background()

	t.Run("Existing vote", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"user_id", "thread_id", "value"}).AddRow(2, 5, -1)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "thread_votes" WHERE user_id = $1 AND thread_id = $2`)).
			WithArgs(2, 5, 1).
			WillReturnRows(rows)

		value, err := repo.GetVote(ctx, 2, 5)
		assert.NoError(t, err)
		assert.Equal(t, -1, value)
	})

	t.Run("No vote yet", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "thread_votes"`)).
			WithArgs(9, 5, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		value, err := repo.GetVote(ctx, 9, 5)
		assert.NoError(t, err)
		assert.Zero(t, value)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForumRepository_CreatePost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewForumRepository(db)
	ctx := context.Background()

	post := &models.Post{ThreadID: 5, AuthorID: 2, Body: "First!"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	err := repo.CreatePost(ctx, post)
	assert.NoError(t, err)
	assert.Equal(t, uint(10), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
