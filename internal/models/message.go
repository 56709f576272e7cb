package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a direct message between two users.
type Message struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SenderID   uint           `gorm:"not null;index" json:"sender_id"`
	Sender     *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID uint           `gorm:"not null;index" json:"receiver_id"`
	Receiver   *User          `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	IsRead     bool           `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Conversation summarizes the message thread with one peer.
// It is assembled from message rows, never persisted.
type Conversation struct {
	User          User     `json:"user"`
	LatestMessage *Message `json:"latest_message,omitempty"`
	UnreadCount   int      `json:"unread_count"`
}

// ChatRoom represents a named group chat.
type ChatRoom struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	IsGroup      bool      `gorm:"not null;default:true" json:"is_group"`
	CreatorID    uint      `gorm:"not null;index" json:"creator_id"`
	Creator      *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Participants []User    `gorm:"many2many:chat_room_participants" json:"participants,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatRoomParticipant is the join table for room membership.
type ChatRoomParticipant struct {
	ChatRoomID uint      `gorm:"primaryKey;autoIncrement:false" json:"chat_room_id"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// ChatMessage represents a message posted to a chat room.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	Room      *ChatRoom `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Sender    *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
