package models

import "time"

// ProjectStatus defines the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectStatusPlanning indicates a project is still being scoped.
	ProjectStatusPlanning ProjectStatus = "planning"
	// ProjectStatusActive indicates a project is in progress.
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusCompleted indicates a project is finished.
	ProjectStatusCompleted ProjectStatus = "completed"
	// ProjectStatusOnHold indicates a project is paused.
	ProjectStatusOnHold ProjectStatus = "on_hold"
)

// ApplicationStatus defines lifecycle states for project applications.
type ApplicationStatus string

const (
	// ApplicationStatusPending indicates the application is awaiting review.
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusAccepted indicates the application was accepted.
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected indicates the application was declined.
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Project represents a student-led collaboration project.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:150;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	TechStack   string        `gorm:"size:255" json:"tech_stack"`
	ProjectType string        `gorm:"size:50;index" json:"project_type"`
	Difficulty  string        `gorm:"size:20;index" json:"difficulty"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'planning';index" json:"status"`
	GithubURL   string        `json:"github_url"`
	DemoURL     string        `json:"demo_url"`
	IsRecruiting bool         `gorm:"not null;default:true;index" json:"is_recruiting"`
	MaxTeamSize  int          `gorm:"not null;default:5" json:"max_team_size"`
	// CurrentTeamSize is denormalized; membership changes maintain it
	// in the same transaction.
	CurrentTeamSize int       `gorm:"not null;default:1" json:"current_team_size"`
	IsFeatured      bool      `gorm:"not null;default:false;index" json:"is_featured"`
	CreatorID       uint      `gorm:"not null;index" json:"creator_id"`
	Creator         *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Roles []ProjectRole `gorm:"foreignKey:ProjectID" json:"roles,omitempty"`
}

// ProjectRole is an open position on a project team.
type ProjectRole struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProjectID      uint      `gorm:"not null;index" json:"project_id"`
	Title          string    `gorm:"size:100;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	SkillsRequired string    `gorm:"size:255" json:"skills_required"`
	IsFilled       bool      `gorm:"not null;default:false" json:"is_filled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProjectApplication is a user's application to join a project.
// A user may apply to a given project at most once.
type ProjectApplication struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ProjectID   uint              `gorm:"not null;uniqueIndex:idx_project_applicant" json:"project_id"`
	Project     *Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ApplicantID uint              `gorm:"not null;uniqueIndex:idx_project_applicant" json:"applicant_id"`
	Applicant   *User             `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	RoleID      *uint             `json:"role_id,omitempty"`
	Role        *ProjectRole      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Message     string            `gorm:"type:text" json:"message"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProjectMember maps users to project teams.
type ProjectMember struct {
	ProjectID uint      `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RoleTitle string    `gorm:"size:100" json:"role_title"`
	CreatedAt time.Time `json:"joined_at"`
}
