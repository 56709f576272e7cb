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

func TestSkillRepository_GetOrCreate_ReturnsExisting(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSkillRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "category"}).
		AddRow(3, "Python", "programming")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "skills" WHERE name = $1 ORDER BY "skills"."id" LIMIT $2`)).
		WithArgs("Python", 1).
		WillReturnRows(rows)

	skill, err := repo.GetOrCreate(ctx, "Python", "programming")
	require.NoError(t, err)
	assert.Equal(t, uint(3), skill.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillRepository_RemoveEndorsement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSkillRepository(db)
	ctx := context.Background()

	t.Run("Deletes row and decrements counter", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "skill_endorsements" WHERE endorser_id = $1 AND endorsed_id = $2 AND skill_id = $3`)).
			WithArgs(9, 2, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "user_skills" SET "endorsement_count"=endorsement_count - 1 WHERE user_id = $1 AND skill_id = $2 AND endorsement_count > 0`)).
			WithArgs(2, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.RemoveEndorsement(ctx, 9, 2, 3))
	})

	t.Run("Absent endorsement is not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "skill_endorsements"`)).
			WithArgs(9, 2, 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.RemoveEndorsement(ctx, 9, 2, 3)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillRepository_Endorse_RequiresProfileSkill(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSkillRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_skills" WHERE user_id = $1 AND skill_id = $2`)).
		WithArgs(2, 3, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	err := repo.Endorse(ctx, &models.SkillEndorsement{EndorserID: 9, EndorsedID: 2, SkillID: 3})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillRepository_UserSkills(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSkillRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "user_id", "skill_id", "proficiency", "endorsement_count"}).
		AddRow(1, 9, 3, "advanced", 4).
		AddRow(2, 9, 5, "beginner", 0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_skills" WHERE user_id = $1 ORDER BY endorsement_count DESC, created_at ASC`)).
		WithArgs(9).
		WillReturnRows(rows)

	skillRows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(3, "Python").
		AddRow(5, "Figma")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "skills" WHERE "skills"."id" IN ($1,$2)`)).
		WithArgs(3, 5).
		WillReturnRows(skillRows)

	userSkills, err := repo.UserSkills(ctx, 9)
	require.NoError(t, err)
	require.Len(t, userSkills, 2)
	assert.Equal(t, models.ProficiencyAdvanced, userSkills[0].Proficiency)
	require.NotNil(t, userSkills[0].Skill)
	assert.Equal(t, "Python", userSkills[0].Skill.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
