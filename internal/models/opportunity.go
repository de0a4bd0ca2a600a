package models

import (
	"time"

	"gorm.io/gorm"
)

type Opportunity struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	CreatedByID      uint           `gorm:"not null;index" json:"created_by"`
	BusinessID       uint           `gorm:"not null;index" json:"business"`
	Status           string         `gorm:"size:20;not null;index;default:Open" json:"status"` // Open, Closed, Filled
	ApplicationCount int64          `gorm:"not null;default:0" json:"application_count"`
	CreatedAt        time.Time      `json:"created"`
	UpdatedAt        time.Time      `json:"updated"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy User     `gorm:"foreignKey:CreatedByID" json:"-"`
	Business  Business `gorm:"foreignKey:BusinessID" json:"business_detail,omitempty"`
}

func (Opportunity) TableName() string { return "opportunities" }

// Application is one user's application to an opportunity. The composite
// unique index is the authoritative one-application-per-opportunity guard.
type Application struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OpportunityID uint           `gorm:"not null;uniqueIndex:idx_applications_opportunity_applicant" json:"opportunity"`
	ApplicantID   uint           `gorm:"not null;uniqueIndex:idx_applications_opportunity_applicant" json:"applicant"`
	Status        string         `gorm:"size:20;not null;index;default:Pending" json:"status"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `json:"created"`
	UpdatedAt     time.Time      `json:"updated"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Opportunity Opportunity `gorm:"foreignKey:OpportunityID" json:"-"`
	Applicant   User        `gorm:"foreignKey:ApplicantID" json:"applicant_detail,omitempty"`
}

func (Application) TableName() string { return "applications" }
