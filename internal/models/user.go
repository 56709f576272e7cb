// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a student account on the platform.
// Accounts are soft-deleted by flipping IsActive; inactive users are
// excluded from listings and cannot authenticate.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:80;unique;not null" json:"username"`
	Email        string     `gorm:"size:120;unique;not null" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"size:50" json:"first_name"`
	LastName     string     `gorm:"size:50" json:"last_name"`
	Bio          string     `gorm:"type:text" json:"bio"`
	College      string     `gorm:"size:120" json:"college"`
	Major        string     `gorm:"size:100" json:"major"`
	Year         int        `json:"year"`
	AvatarURL    string     `json:"avatar_url"`
	GithubURL    string     `json:"github_url"`
	LinkedinURL  string     `json:"linkedin_url"`
	PortfolioURL string     `json:"portfolio_url"`
	IsActive     bool       `gorm:"not null;default:true;index" json:"is_active"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
