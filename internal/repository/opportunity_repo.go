package repository

import (
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) Create(o *models.Opportunity) error {
	return r.db.Create(o).Error
}

func (r *OpportunityRepository) Update(o *models.Opportunity) error {
	return r.db.Save(o).Error
}

func (r *OpportunityRepository) Delete(id uint) error {
	return r.db.Delete(&models.Opportunity{}, id).Error
}

func (r *OpportunityRepository) GetByID(id uint) (*models.Opportunity, error) {
	var o models.Opportunity
	err := r.db.Preload("Business").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OpportunityRepository) List(status string, limit, offset int) ([]models.Opportunity, error) {
	var list []models.Opportunity
	q := r.db.Preload("Business")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *OpportunityRepository) ListByBusiness(businessID uint, limit, offset int) ([]models.Opportunity, error) {
	var list []models.Opportunity
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// IncrementApplicationCount is atomic on the server side.
func (r *OpportunityRepository) IncrementApplicationCount(id uint) error {
	return r.db.Model(&models.Opportunity{}).
		Where("id = ?", id).
		UpdateColumn("application_count", gorm.Expr("application_count + 1")).Error
}

// Applications

func (r *OpportunityRepository) CreateApplication(a *models.Application) error {
	return r.db.Create(a).Error
}

func (r *OpportunityRepository) GetApplication(id uint) (*models.Application, error) {
	var a models.Application
	err := r.db.Preload("Opportunity").First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetApplicationByOpportunityAndUser is the fast-path duplicate check; the
// composite unique index remains the authoritative guard.
func (r *OpportunityRepository) GetApplicationByOpportunityAndUser(opportunityID, applicantID uint) (*models.Application, error) {
	var a models.Application
	err := r.db.Where("opportunity_id = ? AND applicant_id = ?", opportunityID, applicantID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *OpportunityRepository) ListApplicationsByOpportunity(opportunityID uint, limit, offset int) ([]models.Application, error) {
	var list []models.Application
	err := r.db.Where("opportunity_id = ?", opportunityID).
		Preload("Applicant").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *OpportunityRepository) ListApplicationsByUser(applicantID uint, limit, offset int) ([]models.Application, error) {
	var list []models.Application
	err := r.db.Where("applicant_id = ?", applicantID).
		Preload("Opportunity").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *OpportunityRepository) UpdateApplication(a *models.Application) error {
	return r.db.Save(a).Error
}
