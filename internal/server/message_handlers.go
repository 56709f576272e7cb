package server

import (
	"studentconnect/internal/models"
	"studentconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversations handles GET /api/messages/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	conversations, err := s.messageService.Conversations(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(conversations)
}

// GetConversationWith handles GET /api/messages/conversations/:userId.
// Fetching a conversation marks its incoming messages as read.
func (s *Server) GetConversationWith(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	peerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 50)
	messages, err := s.messageService.ConversationWith(c.Context(), userID, peerID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(messages)
}

// GetUnreadMessageCount handles GET /api/messages/unread-count
func (s *Server) GetUnreadMessageCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.messageService.UnreadCount(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.DeleteMessage(c.Context(), messageID, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Message deleted"})
}

// CreateRoom handles POST /api/rooms
func (s *Server) CreateRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name           string `json:"name"`
		Description    string `json:"description"`
		ParticipantIDs []uint `json:"participant_ids"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	room, err := s.messageService.CreateRoom(c.Context(), service.CreateRoomInput{
		CreatorID:      userID,
		Name:           req.Name,
		Description:    req.Description,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetMyRooms handles GET /api/rooms/mine
func (s *Server) GetMyRooms(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	rooms, err := s.messageService.MyRooms(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(rooms)
}

// GetRoom handles GET /api/rooms/:id
func (s *Server) GetRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	room, err := s.messageService.GetRoom(c.Context(), roomID, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(room)
}

// GetRoomMessages handles GET /api/rooms/:id/messages
func (s *Server) GetRoomMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 50)
	messages, err := s.messageService.RoomMessages(c.Context(), roomID, userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(messages)
}

// SendRoomMessage handles POST /api/rooms/:id/messages
func (s *Server) SendRoomMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.SendRoomMessage(c.Context(), service.SendRoomMessageInput{
		SenderID: userID,
		RoomID:   roomID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// AddRoomParticipant handles POST /api/rooms/:id/participants/:userId
func (s *Server) AddRoomParticipant(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.messageService.AddParticipant(c.Context(), roomID, actorID, targetID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Participant added"})
}

// RemoveRoomParticipant handles DELETE /api/rooms/:id/participants/:userId
func (s *Server) RemoveRoomParticipant(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.messageService.RemoveParticipant(c.Context(), roomID, actorID, targetID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Participant removed"})
}
