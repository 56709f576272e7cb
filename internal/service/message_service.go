package service

import (
	"context"
	"strings"

	"studentconnect/internal/models"
	"studentconnect/internal/repository"
)

const maxMessageLen = 5000

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
}

type CreateRoomInput struct {
	CreatorID      uint
	Name           string
	Description    string
	ParticipantIDs []uint
}

type SendRoomMessageInput struct {
	SenderID uint
	RoomID   uint
	Content  string
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}
	if _, err := s.userRepo.GetActiveByID(ctx, in.ReceiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *MessageService) Conversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return s.messageRepo.Conversations(ctx, userID)
}

// ConversationWith returns the thread with one peer and marks the peer's
// messages as read.
func (s *MessageService) ConversationWith(ctx context.Context, userID, peerID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ConversationWith(ctx, userID, peerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.MarkConversationRead(ctx, userID, peerID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, userID)
}

func (s *MessageService) DeleteMessage(ctx context.Context, messageID, userID uint) error {
	return s.messageRepo.Delete(ctx, messageID, userID)
}

func (s *MessageService) CreateRoom(ctx context.Context, in CreateRoomInput) (*models.ChatRoom, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Room name is required")
	}
	for _, id := range in.ParticipantIDs {
		if id == in.CreatorID {
			continue
		}
		if _, err := s.userRepo.GetActiveByID(ctx, id); err != nil {
			return nil, err
		}
	}

	room := &models.ChatRoom{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		IsGroup:     true,
		CreatorID:   in.CreatorID,
	}
	if err := s.messageRepo.CreateRoom(ctx, room, in.ParticipantIDs); err != nil {
		return nil, err
	}
	return s.messageRepo.GetRoom(ctx, room.ID)
}

func (s *MessageService) GetRoom(ctx context.Context, roomID, userID uint) (*models.ChatRoom, error) {
	if err := s.requireParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.GetRoom(ctx, roomID)
}

func (s *MessageService) MyRooms(ctx context.Context, userID uint) ([]models.ChatRoom, error) {
	return s.messageRepo.RoomsByUser(ctx, userID)
}

// AddParticipant invites a user to a room. Creator only.
func (s *MessageService) AddParticipant(ctx context.Context, roomID, actorID, targetID uint) error {
	room, err := s.messageRepo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != actorID {
		return models.NewForbiddenError("Only the room creator can add participants")
	}
	if _, err := s.userRepo.GetActiveByID(ctx, targetID); err != nil {
		return err
	}
	return s.messageRepo.AddParticipant(ctx, roomID, targetID)
}

// RemoveParticipant removes a user from a room. The creator can remove
// anyone but themselves; members can remove themselves (leave).
func (s *MessageService) RemoveParticipant(ctx context.Context, roomID, actorID, targetID uint) error {
	room, err := s.messageRepo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if targetID == room.CreatorID {
		return models.NewValidationError("The room creator cannot be removed")
	}
	if actorID != targetID && room.CreatorID != actorID {
		return models.NewForbiddenError("Only the room creator can remove participants")
	}
	return s.messageRepo.RemoveParticipant(ctx, roomID, targetID)
}

func (s *MessageService) SendRoomMessage(ctx context.Context, in SendRoomMessageInput) (*models.ChatMessage, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}
	if err := s.requireParticipant(ctx, in.RoomID, in.SenderID); err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		RoomID:   in.RoomID,
		SenderID: in.SenderID,
		Content:  in.Content,
	}
	if err := s.messageRepo.CreateRoomMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *MessageService) RoomMessages(ctx context.Context, roomID, userID uint, limit, offset int) ([]models.ChatMessage, error) {
	if err := s.requireParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.RoomMessages(ctx, roomID, limit, offset)
}

func (s *MessageService) requireParticipant(ctx context.Context, roomID, userID uint) error {
	ok, err := s.messageRepo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("You are not a participant in this room")
	}
	return nil
}
