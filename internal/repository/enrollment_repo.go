package repository

import (
	"zilconnect/internal/domain"
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(e *models.Enrollment) error {
	return r.db.Create(e).Error
}

func (r *EnrollmentRepository) Update(e *models.Enrollment) error {
	return r.db.Save(e).Error
}

func (r *EnrollmentRepository) GetByID(id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.Preload("Product").First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindExisting returns the live enrollment for (user, product, business),
// ignoring cancelled ones; only a prior cancellation permits a fresh create.
func (r *EnrollmentRepository) FindExisting(userID, productID, businessID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.Where("user_id = ? AND product_id = ? AND business_id = ? AND status <> ?",
		userID, productID, businessID, domain.EnrollmentStatusCancelled).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByUser(userID uint, limit, offset int) ([]models.Enrollment, error) {
	var list []models.Enrollment
	err := r.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
