package repository

import (
	"zilconnect/internal/domain"
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) Create(c *models.Connection) error {
	return r.db.Create(c).Error
}

func (r *ConnectionRepository) GetByID(id uint) (*models.Connection, error) {
	var c models.Connection
	err := r.db.Preload("UserFrom").Preload("UserTo").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConnectionRepository) Update(c *models.Connection) error {
	return r.db.Save(c).Error
}

// Delete removes the record for good. Withdraw/disconnect is a hard delete so
// the pair can connect again later without tripping the pair index.
func (r *ConnectionRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.Connection{}, id).Error
}

// GetBetweenUsers finds the at-most-one connection between two users in
// either direction.
func (r *ConnectionRepository) GetBetweenUsers(a, b uint) (*models.Connection, error) {
	var c models.Connection
	err := r.db.Where("pair_key = ?", models.MakePairKey(a, b)).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListPendingForUser returns requests awaiting userID's decision.
func (r *ConnectionRepository) ListPendingForUser(userID uint, limit, offset int) ([]models.Connection, error) {
	var list []models.Connection
	err := r.db.Where("user_to_id = ? AND status = ?", userID, domain.ConnectionStatusPending).
		Preload("UserFrom").Preload("UserTo").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListSentByUser returns pending requests userID has sent.
func (r *ConnectionRepository) ListSentByUser(userID uint, limit, offset int) ([]models.Connection, error) {
	var list []models.Connection
	err := r.db.Where("user_from_id = ? AND status = ?", userID, domain.ConnectionStatusPending).
		Preload("UserFrom").Preload("UserTo").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListAcceptedForUser returns established connections in either direction.
func (r *ConnectionRepository) ListAcceptedForUser(userID uint, limit, offset int) ([]models.Connection, error) {
	var list []models.Connection
	err := r.db.Where("(user_from_id = ? OR user_to_id = ?) AND status = ?",
		userID, userID, domain.ConnectionStatusAccepted).
		Preload("UserFrom").Preload("UserTo").
		Order("updated_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
