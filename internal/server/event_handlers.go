package server

import (
	"time"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetEvents handles GET /api/events with optional type, online, search,
// featured, after and before query filters.
func (s *Server) GetEvents(c *fiber.Ctx) error {
	filter := repository.EventFilter{
		EventType: c.Query("type"),
		Search:    c.Query("search"),
		Featured:  c.QueryBool("featured"),
	}
	if c.Query("online") != "" {
		online := c.QueryBool("online")
		filter.IsOnline = &online
	}
	if raw := c.Query("after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid after timestamp, expected RFC3339"))
		}
		filter.After = &t
	}
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid before timestamp, expected RFC3339"))
		}
		filter.Before = &t
	}

	page := parsePagination(c, 20)
	events, total, err := s.eventService.ListEvents(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"events": events,
		"total":  total,
	})
}

// GetUpcomingEvents handles GET /api/events/upcoming
func (s *Server) GetUpcomingEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > maxPaginationLimit {
		limit = 10
	}

	events, err := s.eventService.UpcomingEvents(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(events)
}

// GetFeaturedEvents handles GET /api/events/featured
func (s *Server) GetFeaturedEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit <= 0 || limit > maxPaginationLimit {
		limit = 5
	}

	events, err := s.eventService.FeaturedEvents(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(events)
}

// GetEventStats handles GET /api/events/stats
func (s *Server) GetEventStats(c *fiber.Ctx) error {
	stats, err := s.eventService.Stats(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(stats)
}

// GetEvent handles GET /api/events/:id
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventService.GetEvent(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(event)
}

// CreateEvent handles POST /api/events
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title                string     `json:"title"`
		Description          string     `json:"description"`
		EventType            string     `json:"event_type"`
		Location             string     `json:"location"`
		IsOnline             bool       `json:"is_online"`
		MeetingURL           string     `json:"meeting_url"`
		StartTime            time.Time  `json:"start_time"`
		EndTime              time.Time  `json:"end_time"`
		RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
		MaxAttendees         int        `json:"max_attendees"`
		RegistrationFee      float64    `json:"registration_fee"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.CreateEvent(c.Context(), service.CreateEventInput{
		UserID:               userID,
		Title:                req.Title,
		Description:          req.Description,
		EventType:            req.EventType,
		Location:             req.Location,
		IsOnline:             req.IsOnline,
		MeetingURL:           req.MeetingURL,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		RegistrationDeadline: req.RegistrationDeadline,
		MaxAttendees:         req.MaxAttendees,
		RegistrationFee:      req.RegistrationFee,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetMyEvents handles GET /api/events/mine
func (s *Server) GetMyEvents(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	attending, organizing, err := s.eventService.MyEvents(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"attending":  attending,
		"organizing": organizing,
	})
}

// UpdateEvent handles PUT /api/events/:id
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title        *string    `json:"title,omitempty"`
		Description  *string    `json:"description,omitempty"`
		Location     *string    `json:"location,omitempty"`
		MeetingURL   *string    `json:"meeting_url,omitempty"`
		StartTime    *time.Time `json:"start_time,omitempty"`
		EndTime      *time.Time `json:"end_time,omitempty"`
		MaxAttendees *int       `json:"max_attendees,omitempty"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.UpdateEvent(c.Context(), service.UpdateEventInput{
		UserID:       userID,
		EventID:      eventID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		MeetingURL:   req.MeetingURL,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/events/:id
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.DeleteEvent(c.Context(), eventID, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Event deleted"})
}

// RegisterForEvent handles POST /api/events/:id/register
func (s *Server) RegisterForEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	registration, err := s.eventService.Register(c.Context(), eventID, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(registration)
}

// UnregisterFromEvent handles DELETE /api/events/:id/register
func (s *Server) UnregisterFromEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.Unregister(c.Context(), eventID, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Registration cancelled"})
}

// GetEventRegistrations handles GET /api/events/:id/registrations
// Only the organizer (or an admin) may list registrations.
func (s *Server) GetEventRegistrations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 50)
	registrations, total, err := s.eventService.Registrations(c.Context(), eventID, userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"registrations": registrations,
		"total":         total,
	})
}

// GetEventAttendees handles GET /api/events/:id/attendees
func (s *Server) GetEventAttendees(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	attendees, err := s.eventService.Attendees(c.Context(), eventID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(attendees)
}

// CheckInAttendee handles POST /api/events/:id/checkin/:userId
func (s *Server) CheckInAttendee(c *fiber.Ctx) error {
	organizerID := c.Locals("userID").(uint)
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	attendeeID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.eventService.CheckIn(c.Context(), eventID, organizerID, attendeeID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Attendee checked in"})
}
