package repository

import (
	"zilconnect/internal/domain"
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) Create(t *models.CommissionTransaction) error {
	return r.db.Create(t).Error
}

func (r *CommissionRepository) Update(t *models.CommissionTransaction) error {
	return r.db.Save(t).Error
}

func (r *CommissionRepository) GetByEnrollmentID(enrollmentID uint) (*models.CommissionTransaction, error) {
	var t models.CommissionTransaction
	err := r.db.Where("enrollment_id = ?", enrollmentID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *CommissionRepository) ListByUser(userID uint, limit, offset int) ([]models.CommissionTransaction, error) {
	var list []models.CommissionTransaction
	err := r.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// CommissionSummary aggregates a user's ledger for the earnings dashboard.
type CommissionSummary struct {
	TotalEarned float64 `json:"total_earned"`
	TotalPaid   float64 `json:"total_paid"`
	Pending     float64 `json:"pending"`
	Count       int64   `json:"count"`
}

func (r *CommissionRepository) SummaryByUser(userID uint) (*CommissionSummary, error) {
	var s CommissionSummary
	err := r.db.Model(&models.CommissionTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0) AS total_earned, " +
			"COALESCE(SUM(CASE WHEN status = '" + domain.TransactionStatusPaid + "' THEN amount ELSE 0 END), 0) AS total_paid, " +
			"COALESCE(SUM(CASE WHEN status = '" + domain.TransactionStatusPending + "' THEN amount ELSE 0 END), 0) AS pending, " +
			"COUNT(*) AS count").
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
