package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer is a promotional discount published by a business.
type Offer struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	BusinessID         uint           `gorm:"not null;index" json:"business"`
	Title              string         `gorm:"size:255;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	ImageURL           string         `gorm:"size:512" json:"image_url"`
	DiscountPercentage float64        `gorm:"not null;default:0" json:"discount_percentage"`
	ValidUntil         time.Time      `gorm:"index" json:"valid_until"`
	Redemptions        int64          `gorm:"not null;default:0" json:"redemptions"`
	CreatedAt          time.Time      `json:"created"`
	UpdatedAt          time.Time      `json:"updated"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Business Business `gorm:"foreignKey:BusinessID" json:"business_detail,omitempty"`
}

func (Offer) TableName() string { return "offers" }

// OfferClaim is an issued single-use coupon. The (offer, user) composite
// index enforces one claim per user; the claim code index backs the
// retry-on-conflict issuance loop.
type OfferClaim struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OfferID   uint           `gorm:"not null;uniqueIndex:idx_offer_claims_offer_user" json:"offer"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_offer_claims_offer_user" json:"user"`
	ClaimCode string         `gorm:"uniqueIndex;size:20;not null" json:"claim_code"`
	Status    string         `gorm:"size:20;not null;index;default:claimed" json:"status"` // claimed, redeemed
	ExpiresAt time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt time.Time      `json:"created"`
	UpdatedAt time.Time      `json:"updated"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Offer Offer `gorm:"foreignKey:OfferID" json:"offer_detail,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user_detail,omitempty"`
}

func (OfferClaim) TableName() string { return "offer_claims" }
