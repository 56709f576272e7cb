package service

import (
	"context"
	"testing"
	"time"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRepoStub is a stub for repository.EventRepository.
type eventRepoStub struct {
	getByIDFn  func(context.Context, uint) (*models.Event, error)
	registerFn func(context.Context, uint, uint) (*models.EventRegistration, error)
	checkInFn  func(context.Context, uint, uint) error
}

func (s *eventRepoStub) Create(_ context.Context, event *models.Event) error {
	event.ID = 1
	return nil
}
func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Event{ID: id, Title: "Hack Night", CreatorID: 1}, nil
}
func (s *eventRepoStub) List(_ context.Context, _ repository.EventFilter, _, _ int) ([]models.Event, int64, error) {
	return nil, 0, nil
}
func (s *eventRepoStub) ListUpcoming(_ context.Context, _ int) ([]models.Event, error) {
	return nil, nil
}
func (s *eventRepoStub) ListFeatured(_ context.Context, _ int) ([]models.Event, error) {
	return nil, nil
}
func (s *eventRepoStub) ListByCreator(_ context.Context, _ uint) ([]models.Event, error) {
	return nil, nil
}
func (s *eventRepoStub) ListByAttendee(_ context.Context, _ uint) ([]models.EventRegistration, error) {
	return nil, nil
}
func (s *eventRepoStub) Update(_ context.Context, _ *models.Event) error { return nil }
func (s *eventRepoStub) Delete(_ context.Context, _ uint) error          { return nil }
func (s *eventRepoStub) Register(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, eventID, userID)
	}
	return &models.EventRegistration{EventID: eventID, UserID: userID}, nil
}
func (s *eventRepoStub) Unregister(_ context.Context, _, _ uint) error { return nil }
func (s *eventRepoStub) GetRegistration(_ context.Context, _, _ uint) (*models.EventRegistration, error) {
	return nil, nil
}
func (s *eventRepoStub) Registrations(_ context.Context, _ uint, _, _ int) ([]models.EventRegistration, int64, error) {
	return nil, 0, nil
}
func (s *eventRepoStub) Attendees(_ context.Context, _ uint) ([]models.EventRegistration, error) {
	return nil, nil
}
func (s *eventRepoStub) CheckIn(ctx context.Context, eventID, userID uint) error {
	if s.checkInFn != nil {
		return s.checkInFn(ctx, eventID, userID)
	}
	return nil
}
func (s *eventRepoStub) Stats(_ context.Context) (*repository.EventStats, error) {
	return &repository.EventStats{}, nil
}

func validEventInput() CreateEventInput {
	start := time.Now().Add(48 * time.Hour)
	return CreateEventInput{
		UserID:    1,
		Title:     "Hack Night",
		EventType: "hackathon",
		Location:  "Library 2F",
		StartTime: start,
		EndTime:   start.Add(3 * time.Hour),
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewEventService(&eventRepoStub{}, nil, nil)

	t.Run("valid input", func(t *testing.T) {
		t.Parallel()
		event, err := svc.CreateEvent(ctx, validEventInput())
		require.NoError(t, err)
		assert.Equal(t, "Hack Night", event.Title)
	})

	t.Run("end before start", func(t *testing.T) {
		t.Parallel()
		in := validEventInput()
		in.EndTime = in.StartTime.Add(-time.Hour)
		_, err := svc.CreateEvent(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("start in the past", func(t *testing.T) {
		t.Parallel()
		in := validEventInput()
		in.StartTime = time.Now().Add(-time.Hour)
		_, err := svc.CreateEvent(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("deadline after start", func(t *testing.T) {
		t.Parallel()
		in := validEventInput()
		deadline := in.StartTime.Add(time.Hour)
		in.RegistrationDeadline = &deadline
		_, err := svc.CreateEvent(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("online event needs a meeting URL", func(t *testing.T) {
		t.Parallel()
		in := validEventInput()
		in.IsOnline = true
		in.MeetingURL = ""
		_, err := svc.CreateEvent(ctx, in)
		assertValidationError(t, err)
	})

	t.Run("negative fee", func(t *testing.T) {
		t.Parallel()
		in := validEventInput()
		in.RegistrationFee = -5
		_, err := svc.CreateEvent(ctx, in)
		assertValidationError(t, err)
	})
}

func TestEventService_Register_NotifiesAttendee(t *testing.T) {
	t.Parallel()
	notifications := &notificationRepoStub{}
	svc := NewEventService(&eventRepoStub{}, notifications, nil)

	registration, err := svc.Register(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), registration.UserID)
	require.Len(t, notifications.created, 1)
	assert.Equal(t, models.NotificationTypeEvent, notifications.created[0].Type)
}

func TestEventService_OrganizerGates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("registrations are organizer only", func(t *testing.T) {
		t.Parallel()
		svc := NewEventService(&eventRepoStub{}, nil, neverAdmin)
		_, _, err := svc.Registrations(ctx, 1, 5, 20, 0)
		assertForbiddenError(t, err)
	})

	t.Run("check-in is organizer only", func(t *testing.T) {
		t.Parallel()
		svc := NewEventService(&eventRepoStub{}, nil, neverAdmin)
		assertForbiddenError(t, svc.CheckIn(ctx, 1, 5, 2))
	})

	t.Run("organizer checks in an attendee", func(t *testing.T) {
		t.Parallel()
		checked := uint(0)
		events := &eventRepoStub{
			checkInFn: func(_ context.Context, _, userID uint) error {
				checked = userID
				return nil
			},
		}
		svc := NewEventService(events, nil, nil)
		require.NoError(t, svc.CheckIn(ctx, 1, 1, 2))
		assert.Equal(t, uint(2), checked)
	})

	t.Run("admin override", func(t *testing.T) {
		t.Parallel()
		svc := NewEventService(&eventRepoStub{}, nil, alwaysAdmin)
		require.NoError(t, svc.CheckIn(ctx, 1, 5, 2))
	})
}

func TestEventService_Unregister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("before start succeeds", func(t *testing.T) {
		t.Parallel()
		events := &eventRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.Event, error) {
				return &models.Event{ID: id, CreatorID: 1, StartTime: time.Now().Add(24 * time.Hour)}, nil
			},
		}
		svc := NewEventService(events, nil, nil)
		require.NoError(t, svc.Unregister(ctx, 1, 2))
	})

	t.Run("after start rejected", func(t *testing.T) {
		t.Parallel()
		events := &eventRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.Event, error) {
				return &models.Event{ID: id, CreatorID: 1, StartTime: time.Now().Add(-time.Hour)}, nil
			},
		}
		svc := NewEventService(events, nil, nil)
		assertValidationError(t, svc.Unregister(ctx, 1, 2))
	})
}
