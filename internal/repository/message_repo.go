package repository

import (
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(m *models.Message) error {
	return r.db.Create(m).Error
}

func (r *MessageRepository) GetByID(id uint) (*models.Message, error) {
	var m models.Message
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Message{}, id).Error
}

func (r *MessageRepository) ListByConnection(connectionID uint, limit, offset int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.Where("connection_id = ?", connectionID).
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// LatestByConnection returns the newest message on the connection, or nil
// when there is none yet.
func (r *MessageRepository) LatestByConnection(connectionID uint) (*models.Message, error) {
	var m models.Message
	err := r.db.Where("connection_id = ?", connectionID).
		Order("created_at DESC").First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) UnreadCount(connectionID, receiverID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Message{}).
		Where("connection_id = ? AND receiver_id = ? AND `read` = ?", connectionID, receiverID, false).
		Count(&c).Error
	return c, err
}

func (r *MessageRepository) UnreadTotal(receiverID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND `read` = ?", receiverID, false).
		Count(&c).Error
	return c, err
}

// MarkAllRead flips up to limit unread messages addressed to receiverID on
// the connection and returns how many rows were actually updated.
func (r *MessageRepository) MarkAllRead(connectionID, receiverID uint, limit int) (int64, error) {
	var ids []uint
	err := r.db.Model(&models.Message{}).
		Where("connection_id = ? AND receiver_id = ? AND `read` = ?", connectionID, receiverID, false).
		Limit(limit).Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Model(&models.Message{}).Where("id IN ?", ids).Update("read", true)
	return res.RowsAffected, res.Error
}

// Search matches message content within the caller's own conversations.
func (r *MessageRepository) Search(userID uint, query string, limit int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.Where("(sender_id = ? OR receiver_id = ?) AND content LIKE ?",
		userID, userID, "%"+query+"%").
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
