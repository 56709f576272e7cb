package seed

import (
	"studentconnect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInSkill is a permanent catalog skill available to every installation.
type BuiltInSkill struct {
	Name     string
	Category string
}

// BuiltInSkills defines the default skill catalog.
var BuiltInSkills = []BuiltInSkill{
	{Name: "Python", Category: "programming"},
	{Name: "JavaScript", Category: "programming"},
	{Name: "TypeScript", Category: "programming"},
	{Name: "Go", Category: "programming"},
	{Name: "Java", Category: "programming"},
	{Name: "C++", Category: "programming"},
	{Name: "Rust", Category: "programming"},
	{Name: "SQL", Category: "programming"},
	{Name: "React", Category: "frontend"},
	{Name: "Vue", Category: "frontend"},
	{Name: "CSS", Category: "frontend"},
	{Name: "Figma", Category: "design"},
	{Name: "UI Design", Category: "design"},
	{Name: "Node.js", Category: "backend"},
	{Name: "PostgreSQL", Category: "backend"},
	{Name: "Redis", Category: "backend"},
	{Name: "Docker", Category: "devops"},
	{Name: "Kubernetes", Category: "devops"},
	{Name: "AWS", Category: "devops"},
	{Name: "Machine Learning", Category: "data"},
	{Name: "Data Analysis", Category: "data"},
	{Name: "Deep Learning", Category: "data"},
	{Name: "Technical Writing", Category: "soft"},
	{Name: "Public Speaking", Category: "soft"},
	{Name: "Project Management", Category: "soft"},
}

// Skills seeds the built-in skill catalog. Creation is idempotent on name,
// so running it repeatedly is safe.
func Skills(db *gorm.DB) error {
	for _, item := range BuiltInSkills {
		skill := models.Skill{
			Name:     item.Name,
			Category: item.Category,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&skill).Error; err != nil {
			return err
		}
	}
	return nil
}
