package models

import "time"

// PaymentStatus defines the payment state of an event registration.
type PaymentStatus string

const (
	// PaymentStatusPending indicates payment is owed for a paid event.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusConfirmed indicates a free event or settled payment.
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

// AttendanceStatus defines the attendance state of a registration.
type AttendanceStatus string

const (
	// AttendanceStatusRegistered indicates the user signed up.
	AttendanceStatusRegistered AttendanceStatus = "registered"
	// AttendanceStatusCheckedIn indicates the user was checked in at the event.
	AttendanceStatusCheckedIn AttendanceStatus = "checked_in"
)

// Event represents a hackathon, workshop, meetup or similar happening.
type Event struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Title                string     `gorm:"size:150;not null" json:"title"`
	Description          string     `gorm:"type:text" json:"description"`
	EventType            string     `gorm:"size:50;index" json:"event_type"`
	Location             string     `gorm:"size:255" json:"location"`
	IsOnline             bool       `gorm:"not null;default:false" json:"is_online"`
	MeetingURL           string     `json:"meeting_url"`
	StartTime            time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime              time.Time  `gorm:"not null" json:"end_time"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MaxAttendees         int        `gorm:"not null;default:0" json:"max_attendees"`
	RegistrationFee      float64    `gorm:"not null;default:0" json:"registration_fee"`
	IsFeatured           bool       `gorm:"not null;default:false;index" json:"is_featured"`
	CreatorID            uint       `gorm:"not null;index" json:"creator_id"`
	Creator              *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// AttendeeCount is not persisted; computed at query time
	AttendeeCount int `gorm:"->" json:"attendee_count"`
}

// EventRegistration records a user's registration for an event.
// A user may register for a given event at most once.
type EventRegistration struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	EventID          uint             `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	Event            *Event           `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID           uint             `gorm:"not null;uniqueIndex:idx_event_user" json:"user_id"`
	User             *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PaymentStatus    PaymentStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	AttendanceStatus AttendanceStatus `gorm:"type:varchar(20);not null;default:'registered'" json:"attendance_status"`
	CreatedAt        time.Time        `json:"registered_at"`
	UpdatedAt        time.Time        `json:"-"`
}
