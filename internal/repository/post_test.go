package repository

import (
	"context"
	"regexp"
	"testing"

	"studentconnect/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Anonymous reader gets computed counts", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "content", "author_id", "comments_count", "likes_count", "liked"}).
			AddRow(1, "First day at the hackathon!", 2, 3, 5, false)
		mock.ExpectQuery(`SELECT posts\.\*.+comments_count.+likes_count.+false as liked FROM "posts"`).
			WithArgs(1, 1).
			WillReturnRows(rows)

		authorRows := sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "amara")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
			WithArgs(2).
			WillReturnRows(authorRows)

		post, err := repo.GetByID(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, post.CommentsCount)
		assert.Equal(t, 5, post.LikesCount)
		assert.False(t, post.Liked)
	})

	t.Run("Authenticated reader gets liked flag", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "content", "author_id", "comments_count", "likes_count", "liked"}).
			AddRow(1, "First day at the hackathon!", 2, 3, 5, true)
		mock.ExpectQuery(`SELECT posts\.\*.+EXISTS\(SELECT 1 FROM likes.+\) as liked FROM "posts"`).
			WithArgs(9, 1, 1).
			WillReturnRows(rows)

		authorRows := sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "amara")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
			WithArgs(2).
			WillReturnRows(authorRows)

		post, err := repo.GetByID(ctx, 1, 9)
		require.NoError(t, err)
		assert.True(t, post.Liked)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT posts\.\*.+FROM "posts"`).
			WithArgs(404, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		post, err := repo.GetByID(ctx, 404, 0)
		assert.Nil(t, post)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like_IsIdempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	// Same insert twice; ON CONFLICT swallows the duplicate.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes`)).
		WithArgs(9, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes`)).
		WithArgs(9, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Like(ctx, 9, 1))
	assert.NoError(t, repo.Like(ctx, 9, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Unlike(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE user_id = $1 AND post_id = $2`)).
		WithArgs(9, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Unlike(ctx, 9, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CountLikes(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(5)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "likes" WHERE post_id = $1`)).
		WithArgs(1).
		WillReturnRows(rows)

	count, err := repo.CountLikes(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_FiltersByCommunity(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE community_id = $1 AND "posts"."deleted_at" IS NULL`)).
		WithArgs(4).
		WillReturnRows(countRows)

	rows := sqlmock.NewRows([]string{"id", "content", "author_id", "community_id", "comments_count", "likes_count", "liked"}).
		AddRow(1, "Study group tonight", 2, 4, 0, 2, false)
	mock.ExpectQuery(`SELECT posts\.\*.+FROM "posts" WHERE community_id = .+"posts"\."deleted_at" IS NULL`).
		WillReturnRows(rows)

	authorRows := sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "amara")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(2).
		WillReturnRows(authorRows)

	communityID := uint(4)
	posts, total, err := repo.List(ctx, &communityID, 20, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, uint(4), *posts[0].CommunityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Community post bumps activity score", func(t *testing.T) {
		communityID := uint(5)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "posts"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "communities" SET "activity_score"=activity_score + 1 WHERE id = $1`)).
			WithArgs(communityID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		post := &models.Post{AuthorID: 9, Content: "Demo day recap", CommunityID: &communityID}
		assert.NoError(t, repo.Create(ctx, post))
	})

	t.Run("Personal post touches no community", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "posts"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectCommit()

		post := &models.Post{AuthorID: 9, Content: "Looking for a study group"}
		assert.NoError(t, repo.Create(ctx, post))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
