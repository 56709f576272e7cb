package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"studentconnect/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Register(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("Deadline passed", func(t *testing.T) {
		deadline := time.Now().Add(-time.Hour)
		start := time.Now().Add(24 * time.Hour)
		rows := sqlmock.NewRows([]string{"id", "title", "start_time", "registration_deadline", "max_attendees", "registration_fee"}).
			AddRow(1, "Intro to Go Workshop", start, deadline, 50, 0.0)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE "events"."id" = $1`)).
			WithArgs(1, 1).
			WillReturnRows(rows)
		mock.ExpectRollback()

		registration, err := repo.Register(ctx, 1, 9)
		assert.Nil(t, registration)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("At capacity", func(t *testing.T) {
		start := time.Now().Add(24 * time.Hour)
		rows := sqlmock.NewRows([]string{"id", "title", "start_time", "max_attendees", "registration_fee"}).
			AddRow(1, "Intro to Go Workshop", start, 2, 0.0)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE "events"."id" = $1`)).
			WithArgs(1, 1).
			WillReturnRows(rows)
		countRows := sqlmock.NewRows([]string{"count"}).AddRow(2)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "event_registrations" WHERE event_id = $1`)).
			WithArgs(1).
			WillReturnRows(countRows)
		mock.ExpectRollback()

		registration, err := repo.Register(ctx, 1, 9)
		assert.Nil(t, registration)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Free event is confirmed immediately", func(t *testing.T) {
		start := time.Now().Add(24 * time.Hour)
		rows := sqlmock.NewRows([]string{"id", "title", "start_time", "max_attendees", "registration_fee"}).
			AddRow(1, "Intro to Go Workshop", start, 50, 0.0)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE "events"."id" = $1`)).
			WithArgs(1, 1).
			WillReturnRows(rows)
		countRows := sqlmock.NewRows([]string{"count"}).AddRow(10)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "event_registrations" WHERE event_id = $1`)).
			WithArgs(1).
			WillReturnRows(countRows)
		mock.ExpectQuery(`INSERT INTO "event_registrations"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		registration, err := repo.Register(ctx, 1, 9)
		require.NoError(t, err)
		require.NotNil(t, registration)
		assert.Equal(t, models.PaymentStatusConfirmed, registration.PaymentStatus)
		assert.Equal(t, models.AttendanceStatusRegistered, registration.AttendanceStatus)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_CheckIn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "event_registrations" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.CheckIn(ctx, 1, 9))
	})

	t.Run("Not registered", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "event_registrations" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.CheckIn(ctx, 1, 99)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
