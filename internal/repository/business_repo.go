package repository

import (
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(b *models.Business) error {
	return r.db.Create(b).Error
}

func (r *BusinessRepository) Update(b *models.Business) error {
	return r.db.Save(b).Error
}

func (r *BusinessRepository) GetByID(id uint) (*models.Business, error) {
	var b models.Business
	err := r.db.Preload("Owner").First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByOwnerID resolves a user's business profile, the ownership requirement
// for sending connection requests.
func (r *BusinessRepository) GetByOwnerID(ownerID uint) (*models.Business, error) {
	var b models.Business
	err := r.db.Where("owner_id = ?", ownerID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepository) List(query, category string, limit, offset int) ([]models.Business, error) {
	var list []models.Business
	q := r.db.Model(&models.Business{})
	if query != "" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// IncrementViews is a server-side atomic increment; the counter is never
// read-modify-written in application code.
func (r *BusinessRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Business{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}
