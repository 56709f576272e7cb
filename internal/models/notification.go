package models

import "time"

// NotificationType distinguishes what triggered a notification.
type NotificationType string

const (
	// NotificationTypeEndorsement is sent when someone endorses a skill.
	NotificationTypeEndorsement NotificationType = "endorsement"
	// NotificationTypeApplication is sent when a project application is reviewed.
	NotificationTypeApplication NotificationType = "application"
	// NotificationTypeEvent is sent on event registration activity.
	NotificationTypeEvent NotificationType = "event"
)

// Notification is an in-app notification for one user.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"size:150;not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
