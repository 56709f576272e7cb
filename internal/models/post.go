package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a feed post, optionally scoped to a community.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ImageURL    string     `json:"image_url"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	CommunityID *uint      `gorm:"index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment represents a comment on a post. One nesting level is allowed:
// a reply's ParentID must reference a top-level comment of the same post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Replies   []Comment      `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
