package repository

import (
	"zilconnect/internal/models"

	"gorm.io/gorm"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(o *models.Offer) error {
	return r.db.Create(o).Error
}

func (r *OfferRepository) Update(o *models.Offer) error {
	return r.db.Save(o).Error
}

func (r *OfferRepository) Delete(id uint) error {
	return r.db.Delete(&models.Offer{}, id).Error
}

func (r *OfferRepository) GetByID(id uint) (*models.Offer, error) {
	var o models.Offer
	err := r.db.Preload("Business").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepository) List(limit, offset int) ([]models.Offer, error) {
	var list []models.Offer
	err := r.db.Preload("Business").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *OfferRepository) ListByBusiness(businessID uint, limit, offset int) ([]models.Offer, error) {
	var list []models.Offer
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// IncrementRedemptions is atomic on the server side.
func (r *OfferRepository) IncrementRedemptions(id uint) error {
	return r.db.Model(&models.Offer{}).
		Where("id = ?", id).
		UpdateColumn("redemptions", gorm.Expr("redemptions + 1")).Error
}

// Claims

func (r *OfferRepository) CreateClaim(c *models.OfferClaim) error {
	return r.db.Create(c).Error
}

func (r *OfferRepository) UpdateClaim(c *models.OfferClaim) error {
	return r.db.Save(c).Error
}

func (r *OfferRepository) GetClaimByOfferAndUser(offerID, userID uint) (*models.OfferClaim, error) {
	var c models.OfferClaim
	err := r.db.Where("offer_id = ? AND user_id = ?", offerID, userID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClaimByCode loads a claim with its offer and user for redemption-desk use.
func (r *OfferRepository) GetClaimByCode(code string) (*models.OfferClaim, error) {
	var c models.OfferClaim
	err := r.db.Where("claim_code = ?", code).
		Preload("Offer").Preload("User").First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *OfferRepository) ListClaimsByUser(userID uint, limit, offset int) ([]models.OfferClaim, error) {
	var list []models.OfferClaim
	err := r.db.Where("user_id = ?", userID).
		Preload("Offer").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
