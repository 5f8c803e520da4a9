package repository

import (
	"errors"
	"time"

	"showroom/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// EnsureRoom returns the group's room, creating it on first open.
func (r *ChatRepository) EnsureRoom(group *models.Group, className string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.Where("group_id = ?", group.ID).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	room = models.ChatRoom{
		GroupID:        group.ID,
		GroupName:      group.Name,
		ClassName:      className,
		LastActivityAt: time.Now(),
	}
	if err := r.db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) GetRoom(roomID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.First(&room, roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) CreateMessage(m *models.ChatMessage) error {
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	return r.db.Model(&models.ChatRoom{}).Where("id = ?", m.RoomID).
		Update("last_activity_at", m.CreatedAt).Error
}

func (r *ChatRepository) ListMessages(roomID uint, limit, offset int) ([]models.ChatMessage, error) {
	var list []models.ChatMessage
	err := r.db.Where("room_id = ?", roomID).Order("created_at DESC").
		Limit(limit).Offset(offset).Preload("Reads").Find(&list).Error
	return list, err
}

// MarkReadUpTo records that the user has read everything in the room as
// of now. Existing markers are left alone.
func (r *ChatRepository) MarkReadUpTo(roomID, userID uint) error {
	var ids []uint
	err := r.db.Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ?", roomID, userID).
		Where("id NOT IN (?)", r.db.Model(&models.MessageRead{}).Select("message_id").Where("user_id = ?", userID)).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return err
	}
	reads := make([]models.MessageRead, 0, len(ids))
	for _, id := range ids {
		reads = append(reads, models.MessageRead{MessageID: id, UserID: userID})
	}
	return r.db.Create(&reads).Error
}
