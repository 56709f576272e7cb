package models

import "time"

// CommunityRole defines a member's role inside a community.
type CommunityRole string

const (
	// CommunityRoleCreator is the community creator role.
	CommunityRoleCreator CommunityRole = "creator"
	// CommunityRoleModerator is the community moderator role.
	CommunityRoleModerator CommunityRole = "moderator"
	// CommunityRoleMember is the default member role.
	CommunityRoleMember CommunityRole = "member"
)

// Community represents a topical student community.
type Community struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:50;index" json:"category"`
	Tags        string `gorm:"size:255" json:"tags"`
	Rules       string `gorm:"type:text" json:"rules"`
	IsPrivate   bool   `gorm:"not null;default:false" json:"is_private"`
	IsFeatured  bool   `gorm:"not null;default:false;index" json:"is_featured"`
	// MemberCount is denormalized; join/leave maintain it in the same transaction.
	MemberCount   int       `gorm:"not null;default:0" json:"member_count"`
	ActivityScore int       `gorm:"not null;default:0;index" json:"activity_score"`
	CreatorID     uint      `gorm:"not null;index" json:"creator_id"`
	Creator       *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// MyRole is the requesting user's role in this community (computed).
	MyRole CommunityRole `gorm:"-" json:"my_role,omitempty"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// CommunityMembership maps users to communities and tracks role.
type CommunityMembership struct {
	CommunityID uint          `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	Community   *Community    `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      uint          `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User        *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        CommunityRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt   time.Time     `json:"joined_at"`
	UpdatedAt   time.Time     `json:"-"`
}
