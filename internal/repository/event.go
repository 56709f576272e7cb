package repository

import (
	"context"
	"errors"
	"time"

	"studentconnect/internal/cache"
	"studentconnect/internal/models"

	"gorm.io/gorm"
)

// EventFilter narrows event listings.
type EventFilter struct {
	EventType string
	IsOnline  *bool
	Search    string
	Featured  bool
	After     *time.Time
	Before    *time.Time
}

// EventStats is an aggregate snapshot of the event catalog.
type EventStats struct {
	TotalEvents        int64            `json:"total_events"`
	UpcomingEvents     int64            `json:"upcoming_events"`
	TotalRegistrations int64            `json:"total_registrations"`
	ByType             map[string]int64 `json:"by_type"`
}

// EventRepository defines persistence operations for events and registrations.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	List(ctx context.Context, filter EventFilter, limit, offset int) ([]models.Event, int64, error)
	ListUpcoming(ctx context.Context, limit int) ([]models.Event, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Event, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error)
	ListByAttendee(ctx context.Context, userID uint) ([]models.EventRegistration, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error

	Register(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error)
	Unregister(ctx context.Context, eventID, userID uint) error
	GetRegistration(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error)
	Registrations(ctx context.Context, eventID uint, limit, offset int) ([]models.EventRegistration, int64, error)
	Attendees(ctx context.Context, eventID uint) ([]models.EventRegistration, error)
	CheckIn(ctx context.Context, eventID, userID uint) error

	Stats(ctx context.Context) (*EventStats, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// attendee count subquery, filled into the Event.AttendeeCount computed column.
func (r *eventRepository) withAttendeeCount(db *gorm.DB) *gorm.DB {
	return db.Select("events.*, (SELECT COUNT(*) FROM event_registrations WHERE event_registrations.event_id = events.id) AS attendee_count")
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.StatsKey("events"))
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	key := cache.EventKey(id)

	err := cache.Aside(ctx, key, &event, cache.EventTTL, func() error {
		query := r.withAttendeeCount(r.db.WithContext(ctx).Model(&models.Event{}))
		if err := query.Preload("Creator").First(&event, "events.id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Event", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter, limit, offset int) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.IsOnline != nil {
		query = query.Where("is_online = ?", *filter.IsOnline)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if filter.After != nil {
		query = query.Where("start_time >= ?", *filter.After)
	}
	if filter.Before != nil {
		query = query.Where("start_time <= ?", *filter.Before)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var events []models.Event
	if err := r.withAttendeeCount(query).
		Preload("Creator").
		Order("start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return events, total, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, limit int) ([]models.Event, error) {
	var events []models.Event
	query := r.withAttendeeCount(r.db.WithContext(ctx).Model(&models.Event{}))
	err := query.
		Where("start_time > ?", time.Now()).
		Order("start_time ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) ListFeatured(ctx context.Context, limit int) ([]models.Event, error) {
	var events []models.Event
	query := r.withAttendeeCount(r.db.WithContext(ctx).Model(&models.Event{}))
	err := query.
		Where("is_featured = ?", true).
		Order("start_time ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("start_time DESC").
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID uint) ([]models.EventRegistration, error) {
	var registrations []models.EventRegistration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&registrations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return registrations, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, event.ID)
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, id)
	return nil
}

// Register validates deadline and capacity and inserts the registration in
// one transaction. Free events are confirmed immediately; paid events stay
// pending until payment settles.
func (r *eventRepository) Register(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error) {
	var registration *models.EventRegistration
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Event", eventID)
			}
			return err
		}

		now := time.Now()
		if event.RegistrationDeadline != nil && now.After(*event.RegistrationDeadline) {
			return models.NewValidationError("Registration deadline has passed")
		}
		if !event.StartTime.IsZero() && now.After(event.StartTime) {
			return models.NewValidationError("Event has already started")
		}
		if event.MaxAttendees > 0 {
			var count int64
			if err := tx.Model(&models.EventRegistration{}).
				Where("event_id = ?", eventID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(event.MaxAttendees) {
				return models.NewValidationError("Event is at capacity")
			}
		}

		payment := models.PaymentStatusPending
		if event.RegistrationFee == 0 {
			payment = models.PaymentStatusConfirmed
		}
		registration = &models.EventRegistration{
			EventID:          eventID,
			UserID:           userID,
			PaymentStatus:    payment,
			AttendanceStatus: models.AttendanceStatusRegistered,
		}
		return tx.Create(registration).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("Already registered for this event")
		}
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, eventID)
	return registration, nil
}

func (r *eventRepository) Unregister(ctx context.Context, eventID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Event", eventID)
			}
			return err
		}
		if time.Now().After(event.StartTime) {
			return models.NewValidationError("Cannot unregister after the event has started")
		}
		result := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventRegistration{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewValidationError("Not registered for this event")
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, eventID)
	return nil
}

func (r *eventRepository) GetRegistration(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error) {
	var registration models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &registration, nil
}

func (r *eventRepository) Registrations(ctx context.Context, eventID uint, limit, offset int) ([]models.EventRegistration, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Where("event_id = ?", eventID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var registrations []models.EventRegistration
	if err := query.
		Preload("User").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&registrations).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return registrations, total, nil
}

func (r *eventRepository) Attendees(ctx context.Context, eventID uint) ([]models.EventRegistration, error) {
	var registrations []models.EventRegistration
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ? AND attendance_status = ?", eventID, models.AttendanceStatusCheckedIn).
		Order("updated_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return registrations, nil
}

func (r *eventRepository) CheckIn(ctx context.Context, eventID, userID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("attendance_status", models.AttendanceStatusCheckedIn)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Registration", userID)
	}
	return nil
}

func (r *eventRepository) Stats(ctx context.Context) (*EventStats, error) {
	var stats EventStats
	key := cache.StatsKey("events")

	err := cache.Aside(ctx, key, &stats, cache.StatsTTL, func() error {
		db := r.db.WithContext(ctx)
		if err := db.Model(&models.Event{}).Count(&stats.TotalEvents).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Event{}).
			Where("start_time > ?", time.Now()).
			Count(&stats.UpcomingEvents).Error; err != nil {
			return err
		}
		if err := db.Model(&models.EventRegistration{}).Count(&stats.TotalRegistrations).Error; err != nil {
			return err
		}

		type typeCount struct {
			EventType string
			Count     int64
		}
		var rows []typeCount
		if err := db.Model(&models.Event{}).
			Select("event_type, COUNT(*) as count").
			Group("event_type").
			Scan(&rows).Error; err != nil {
			return err
		}
		stats.ByType = make(map[string]int64, len(rows))
		for _, row := range rows {
			stats.ByType[row.EventType] = row.Count
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
