package server

import (
	"studentconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications with an optional
// unread=true query filter.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	unreadOnly := c.QueryBool("unread")

	page := parsePagination(c, 20)
	notifications, total, err := s.notificationRepo.ListByUser(c.Context(), userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
	})
}

// GetUnreadNotificationCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.notificationRepo.UnreadCount(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationRepo.MarkRead(c.Context(), notificationID, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.notificationRepo.MarkAllRead(c.Context(), userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
