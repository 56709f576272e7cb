package models

import "time"

// Proficiency defines self-reported skill levels.
type Proficiency string

const (
	// ProficiencyBeginner is the entry skill level.
	ProficiencyBeginner Proficiency = "beginner"
	// ProficiencyIntermediate is the middle skill level.
	ProficiencyIntermediate Proficiency = "intermediate"
	// ProficiencyAdvanced is the upper skill level.
	ProficiencyAdvanced Proficiency = "advanced"
	// ProficiencyExpert is the highest skill level.
	ProficiencyExpert Proficiency = "expert"
)

// ValidProficiency reports whether p is a known proficiency level.
func ValidProficiency(p Proficiency) bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

// Skill is a catalog entry (e.g. "Python", "React"). Names are unique;
// creation is idempotent on name.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Category  string    `gorm:"size:50;index" json:"category"`
	CreatedAt time.Time `json:"created_at"`

	// UserCount is not persisted; computed at query time
	UserCount int `gorm:"->" json:"user_count,omitempty"`
}

// UserSkill links a user to a skill with a proficiency level.
type UserSkill struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_user_skill" json:"user_id"`
	User        *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SkillID     uint        `gorm:"not null;uniqueIndex:idx_user_skill" json:"skill_id"`
	Skill       *Skill      `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
	Proficiency Proficiency `gorm:"type:varchar(20);not null;default:'beginner'" json:"proficiency"`
	// EndorsementCount is denormalized; endorsement writes maintain it
	// in the same transaction.
	EndorsementCount int       `gorm:"not null;default:0" json:"endorsement_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SkillEndorsement records one user vouching for another user's skill.
// The (endorser, endorsed, skill) triple must be unique.
type SkillEndorsement struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EndorserID uint      `gorm:"not null;uniqueIndex:idx_endorsement" json:"endorser_id"`
	Endorser   *User     `gorm:"foreignKey:EndorserID" json:"endorser,omitempty"`
	EndorsedID uint      `gorm:"not null;uniqueIndex:idx_endorsement" json:"endorsed_id"`
	Endorsed   *User     `gorm:"foreignKey:EndorsedID" json:"endorsed,omitempty"`
	SkillID    uint      `gorm:"not null;uniqueIndex:idx_endorsement" json:"skill_id"`
	Skill      *Skill    `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
	Message    string    `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
