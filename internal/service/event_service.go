package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
)

type EventService struct {
	eventRepo        repository.EventRepository
	notificationRepo repository.NotificationRepository
	isAdmin          func(ctx context.Context, userID uint) (bool, error)
}

type CreateEventInput struct {
	UserID               uint
	Title                string
	Description          string
	EventType            string
	Location             string
	IsOnline             bool
	MeetingURL           string
	StartTime            time.Time
	EndTime              time.Time
	RegistrationDeadline *time.Time
	MaxAttendees         int
	RegistrationFee      float64
}

type UpdateEventInput struct {
	UserID       uint
	EventID      uint
	Title        *string
	Description  *string
	Location     *string
	MeetingURL   *string
	StartTime    *time.Time
	EndTime      *time.Time
	MaxAttendees *int
}

func NewEventService(
	eventRepo repository.EventRepository,
	notificationRepo repository.NotificationRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *EventService {
	return &EventService{
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		isAdmin:          isAdmin,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, models.NewValidationError("start_time and end_time are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, models.NewValidationError("end_time must be after start_time")
	}
	if in.StartTime.Before(time.Now()) {
		return nil, models.NewValidationError("start_time must be in the future")
	}
	if in.RegistrationDeadline != nil && in.RegistrationDeadline.After(in.StartTime) {
		return nil, models.NewValidationError("registration_deadline must be before start_time")
	}
	if in.IsOnline && strings.TrimSpace(in.MeetingURL) == "" {
		return nil, models.NewValidationError("meeting_url is required for online events")
	}
	if in.MaxAttendees < 0 {
		return nil, models.NewValidationError("max_attendees cannot be negative")
	}
	if in.RegistrationFee < 0 {
		return nil, models.NewValidationError("registration_fee cannot be negative")
	}

	event := &models.Event{
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		EventType:            in.EventType,
		Location:             in.Location,
		IsOnline:             in.IsOnline,
		MeetingURL:           in.MeetingURL,
		StartTime:            in.StartTime,
		EndTime:              in.EndTime,
		RegistrationDeadline: in.RegistrationDeadline,
		MaxAttendees:         in.MaxAttendees,
		RegistrationFee:      in.RegistrationFee,
		CreatorID:            in.UserID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, filter repository.EventFilter, limit, offset int) ([]models.Event, int64, error) {
	return s.eventRepo.List(ctx, filter, limit, offset)
}

func (s *EventService) UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.eventRepo.ListUpcoming(ctx, limit)
}

func (s *EventService) FeaturedEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.eventRepo.ListFeatured(ctx, limit)
}

// MyEvents returns events the user is attending and events they organize.
func (s *EventService) MyEvents(ctx context.Context, userID uint) ([]models.EventRegistration, []models.Event, error) {
	attending, err := s.eventRepo.ListByAttendee(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	organizing, err := s.eventRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return attending, organizing, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOrganizer(ctx, event.CreatorID, in.UserID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		event.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.Location != nil {
		event.Location = *in.Location
	}
	if in.MeetingURL != nil {
		event.MeetingURL = *in.MeetingURL
	}
	if in.StartTime != nil {
		event.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		event.EndTime = *in.EndTime
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, models.NewValidationError("end_time must be after start_time")
	}
	if in.MaxAttendees != nil {
		if *in.MaxAttendees < 0 {
			return nil, models.NewValidationError("max_attendees cannot be negative")
		}
		event.MaxAttendees = *in.MaxAttendees
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID, userID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(ctx, event.CreatorID, userID); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, eventID)
}

func (s *EventService) Register(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error) {
	registration, err := s.eventRepo.Register(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	if s.notificationRepo != nil {
		if event, err := s.eventRepo.GetByID(ctx, eventID); err == nil {
			_ = s.notificationRepo.Create(ctx, &models.Notification{
				UserID: userID,
				Type:   models.NotificationTypeEvent,
				Title:  "Registration confirmed",
				Body:   fmt.Sprintf("You are registered for %q", event.Title),
			})
		}
	}
	return registration, nil
}

func (s *EventService) Unregister(ctx context.Context, eventID, userID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	// Registrations are locked in once the event begins.
	if !time.Now().Before(event.StartTime) {
		return models.NewValidationError("Cannot unregister after the event has started")
	}
	return s.eventRepo.Unregister(ctx, eventID, userID)
}

func (s *EventService) Registrations(ctx context.Context, eventID, userID uint, limit, offset int) ([]models.EventRegistration, int64, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.requireOrganizer(ctx, event.CreatorID, userID); err != nil {
		return nil, 0, err
	}
	return s.eventRepo.Registrations(ctx, eventID, limit, offset)
}

func (s *EventService) Attendees(ctx context.Context, eventID uint) ([]models.EventRegistration, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.eventRepo.Attendees(ctx, eventID)
}

// CheckIn marks a registrant as present. Organizer only.
func (s *EventService) CheckIn(ctx context.Context, eventID, organizerID, attendeeID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(ctx, event.CreatorID, organizerID); err != nil {
		return err
	}
	return s.eventRepo.CheckIn(ctx, eventID, attendeeID)
}

func (s *EventService) Stats(ctx context.Context) (*repository.EventStats, error) {
	return s.eventRepo.Stats(ctx)
}

func (s *EventService) requireOrganizer(ctx context.Context, creatorID, userID uint) error {
	if creatorID == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewForbiddenError("Organizer access required")
}
