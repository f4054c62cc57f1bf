package repositories

import (
	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	CreateMessage(msg *models.Message) error
	GetMessageByID(id uint) (*models.Message, error)
	GetDirectConversation(userA, userB uint) ([]models.Message, error)
	GetEventMessages(eventID uint) ([]models.Message, error)
	GetGroupMessages(groupID uint) ([]models.Message, error)
	// GetDirectPartnerIDs returns everyone the user has exchanged direct
	// messages with, in either direction.
	GetDirectPartnerIDs(userID uint) ([]uint, error)
	GetEventIDsWithMessages(userID uint) ([]uint, error)
	LastDirectMessage(userA, userB uint) (*models.Message, error)
	LastEventMessage(eventID uint) (*models.Message, error)
	LastGroupMessage(groupID uint) (*models.Message, error)
	CountUnreadFrom(senderID, receiverID uint) (int64, error)
	MarkRead(messageID, receiverID uint) error
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) CreateMessage(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *PostgresMessageRepository) GetMessageByID(id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *PostgresMessageRepository) GetDirectConversation(userA, userB uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where(
		"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND event_id IS NULL AND group_id IS NULL",
		userA, userB, userB, userA,
	).Order("created_at").Find(&messages).Error
	return messages, err
}

func (r *PostgresMessageRepository) GetEventMessages(eventID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("event_id = ?", eventID).Order("created_at").Find(&messages).Error
	return messages, err
}

func (r *PostgresMessageRepository) GetGroupMessages(groupID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("group_id = ?", groupID).Order("created_at").Find(&messages).Error
	return messages, err
}

func (r *PostgresMessageRepository) GetDirectPartnerIDs(userID uint) ([]uint, error) {
	var sent []uint
	if err := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id IS NOT NULL", userID).
		Distinct().Pluck("receiver_id", &sent).Error; err != nil {
		return nil, err
	}
	var received []uint
	if err := r.db.Model(&models.Message{}).
		Where("receiver_id = ?", userID).
		Distinct().Pluck("sender_id", &received).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(sent)+len(received))
	ids := make([]uint, 0, len(sent)+len(received))
	for _, id := range append(sent, received...) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *PostgresMessageRepository) GetEventIDsWithMessages(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND event_id IS NOT NULL", userID).
		Distinct().Pluck("event_id", &ids).Error
	return ids, err
}

func (r *PostgresMessageRepository) LastDirectMessage(userA, userB uint) (*models.Message, error) {
	var msg models.Message
	err := r.db.Where(
		"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND event_id IS NULL AND group_id IS NULL",
		userA, userB, userB, userA,
	).Order("created_at DESC").First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *PostgresMessageRepository) LastEventMessage(eventID uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.Where("event_id = ?", eventID).Order("created_at DESC").First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *PostgresMessageRepository) LastGroupMessage(groupID uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.Where("group_id = ?", groupID).Order("created_at DESC").First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *PostgresMessageRepository) CountUnreadFrom(senderID, receiverID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips is_read, but only when the caller is the message receiver
func (r *PostgresMessageRepository) MarkRead(messageID, receiverID uint) error {
	res := r.db.Model(&models.Message{}).
		Where("id = ? AND receiver_id = ?", messageID, receiverID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
