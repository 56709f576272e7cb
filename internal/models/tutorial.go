package models

import "time"

// TutorialSource identifies where a tutorial's content came from.
type TutorialSource string

const (
	// TutorialSourceManual indicates the tutorial was authored on the platform.
	TutorialSourceManual TutorialSource = "manual"
	// TutorialSourceGeeksforGeeks indicates the tutorial was imported from GeeksforGeeks.
	TutorialSourceGeeksforGeeks TutorialSource = "geeksforgeeks"
)

// Tutorial represents a learning resource, either authored locally or
// imported from an external source. Imported tutorials are deduplicated
// on SourceURL.
type Tutorial struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Content          string         `gorm:"type:text" json:"content"`
	Category         string         `gorm:"size:50;index" json:"category"`
	Difficulty       string         `gorm:"size:20;index" json:"difficulty"`
	Tags             string         `gorm:"size:255" json:"tags"`
	Source           TutorialSource `gorm:"type:varchar(20);not null;default:'manual'" json:"source"`
	SourceURL        *string        `gorm:"uniqueIndex" json:"source_url,omitempty"`
	AuthorID         *uint          `gorm:"index" json:"author_id,omitempty"`
	Author           *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ViewCount        int            `gorm:"not null;default:0" json:"view_count"`
	// BookmarkCount is denormalized; bookmark toggles maintain it
	// in the same transaction.
	BookmarkCount    int       `gorm:"not null;default:0" json:"bookmark_count"`
	EstimatedMinutes int       `gorm:"not null;default:0" json:"estimated_minutes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TutorialProgress tracks one user's progress through one tutorial.
type TutorialProgress struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TutorialID     uint      `gorm:"not null;uniqueIndex:idx_tutorial_user" json:"tutorial_id"`
	Tutorial       *Tutorial `gorm:"foreignKey:TutorialID" json:"tutorial,omitempty"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_tutorial_user" json:"user_id"`
	CompletionRate int       `gorm:"not null;default:0" json:"completion_rate"`
	IsBookmarked   bool      `gorm:"not null;default:false" json:"is_bookmarked"`
	LastAccessed   time.Time `json:"last_accessed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
