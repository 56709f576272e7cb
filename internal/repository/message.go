package repository

import (
	"context"
	"errors"
	"time"

	"studentconnect/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for direct messages and
// group chat rooms.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Conversations(ctx context.Context, userID uint) ([]models.Conversation, error)
	ConversationWith(ctx context.Context, userID, peerID uint, limit, offset int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, userID, peerID uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, messageID, userID uint) error

	CreateRoom(ctx context.Context, room *models.ChatRoom, participantIDs []uint) error
	GetRoom(ctx context.Context, roomID uint) (*models.ChatRoom, error)
	RoomsByUser(ctx context.Context, userID uint) ([]models.ChatRoom, error)
	IsParticipant(ctx context.Context, roomID, userID uint) (bool, error)
	AddParticipant(ctx context.Context, roomID, userID uint) error
	RemoveParticipant(ctx context.Context, roomID, userID uint) error
	CreateRoomMessage(ctx context.Context, message *models.ChatMessage) error
	RoomMessages(ctx context.Context, roomID uint, limit, offset int) ([]models.ChatMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Conversations returns one entry per peer the user has exchanged messages
// with, newest thread first, with the latest message and unread count.
func (r *messageRepository) Conversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	// Distinct peers, ordered by most recent exchange.
	type peerRow struct {
		PeerID uint
	}
	var peers []peerRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS peer_id", userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("peer_id").
		Order("MAX(created_at) DESC").
		Scan(&peers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	conversations := make([]models.Conversation, 0, len(peers))
	for _, peer := range peers {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, peer.PeerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, models.NewInternalError(err)
		}

		var latest models.Message
		err := r.db.WithContext(ctx).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				userID, peer.PeerID, peer.PeerID, userID).
			Order("created_at DESC").
			First(&latest).Error
		conv := models.Conversation{User: user}
		if err == nil {
			conv.LatestMessage = &latest
		}

		var unread int64
		if err := r.db.WithContext(ctx).
			Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", peer.PeerID, userID, false).
			Count(&unread).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		conv.UnreadCount = int(unread)
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

func (r *messageRepository) ConversationWith(ctx context.Context, userID, peerID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, userID, peerID uint) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", peerID, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Delete soft-deletes a message. Only the sender may delete it.
func (r *messageRepository) Delete(ctx context.Context, messageID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", messageID, userID).
		Delete(&models.Message{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Message", messageID)
	}
	return nil
}

func (r *messageRepository) CreateRoom(ctx context.Context, room *models.ChatRoom, participantIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(room).Error; err != nil {
			return err
		}
		// The creator is always a participant.
		seen := map[uint]struct{}{room.CreatorID: {}}
		rows := []models.ChatRoomParticipant{{ChatRoomID: room.ID, UserID: room.CreatorID}}
		for _, id := range participantIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, models.ChatRoomParticipant{ChatRoomID: room.ID, UserID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetRoom(ctx context.Context, roomID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Participants").
		First(&room, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat room", roomID)
		}
		return nil, models.NewInternalError(err)
	}
	return &room, nil
}

func (r *messageRepository) RoomsByUser(ctx context.Context, userID uint) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_room_participants ON chat_room_participants.chat_room_id = chat_rooms.id").
		Where("chat_room_participants.user_id = ?", userID).
		Order("chat_rooms.updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rooms, nil
}

func (r *messageRepository) IsParticipant(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatRoomParticipant{}).
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *messageRepository) AddParticipant(ctx context.Context, roomID, userID uint) error {
	err := r.db.WithContext(ctx).Create(&models.ChatRoomParticipant{
		ChatRoomID: roomID,
		UserID:     userID,
	}).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User is already in this room")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) RemoveParticipant(ctx context.Context, roomID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.ChatRoomParticipant{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Participant", userID)
	}
	return nil
}

func (r *messageRepository) CreateRoomMessage(ctx context.Context, message *models.ChatMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		// Bump the room so RoomsByUser sorts active rooms first.
		return tx.Model(&models.ChatRoom{}).
			Where("id = ?", message.RoomID).
			UpdateColumn("updated_at", time.Now()).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) RoomMessages(ctx context.Context, roomID uint, limit, offset int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}
