package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a fintech partner product businesses can enroll in.
type Product struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Partner         string         `gorm:"size:255" json:"partner"`
	CommissionType  string         `gorm:"size:20;not null" json:"commission_type"` // Percentage, Fixed Amount, Recurring
	CommissionValue float64        `gorm:"not null;default:0" json:"commission_value"`
	EnrollmentURL   string         `gorm:"size:512" json:"enrollment_url"`
	AffiliateID     string         `gorm:"size:100" json:"affiliate_id"`
	IntegrationType string         `gorm:"size:50" json:"integration_type"`
	Enrollments     int64          `gorm:"not null;default:0" json:"enrollments"`
	CreatedAt       time.Time      `json:"created"`
	UpdatedAt       time.Time      `json:"updated"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }

// Enrollment registers a user's business into a partner product.
type Enrollment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user"`
	BusinessID       uint           `gorm:"not null;index" json:"business"`
	ProductID        uint           `gorm:"not null;index" json:"product"`
	Status           string         `gorm:"size:20;not null;index;default:Pending" json:"status"` // Pending, Active, Completed, Cancelled
	CommissionEarned float64        `gorm:"not null;default:0" json:"commission_earned"`
	CommissionStatus string         `gorm:"size:20;not null;default:Pending" json:"commission_status"` // Pending, Paid
	CreatedAt        time.Time      `json:"created"`
	UpdatedAt        time.Time      `json:"updated"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Business Business `gorm:"foreignKey:BusinessID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"product_detail,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }
