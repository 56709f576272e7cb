package database

import (
	"testing"

	modelspkg "studentconnect/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPersistentModels_IncludesSkillEndorsement(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.SkillEndorsement); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include SkillEndorsement")
}

func TestPersistentModels_MigrateSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"users", "communities", "projects", "posts", "events", "tutorials", "messages", "skills"} {
		require.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}
