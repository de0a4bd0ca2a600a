package models

import (
	"time"

	"gorm.io/gorm"
)

// Business is a company profile. Each user owns at most one.
type Business struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"uniqueIndex;not null" json:"owner_id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Description string         `gorm:"type:text" json:"description"`
	LogoURL     string         `gorm:"size:512" json:"logo_url"`
	Location    string         `gorm:"size:255" json:"location"`
	Website     string         `gorm:"size:255" json:"website"`
	Views       int64          `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Business) TableName() string { return "businesses" }
