package models

import (
	"time"

	"gorm.io/gorm"
)

// CommissionTransaction is the referral-ledger entry derived from a
// successful enrollment with a nonzero commission amount. The enrollment is
// the source of truth; this ledger may lag behind it.
type CommissionTransaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EnrollmentID    uint           `gorm:"not null;index" json:"enrollment"`
	ProductID       uint           `gorm:"not null;index" json:"product"`
	BusinessID      uint           `gorm:"not null;index" json:"business"`
	UserID          uint           `gorm:"not null;index" json:"user"`
	Amount          float64        `gorm:"not null" json:"amount"`
	CommissionType  string         `gorm:"size:20;not null" json:"commission_type"` // One-time, Recurring, Monthly, Annual
	Status          string         `gorm:"size:20;not null;index;default:Pending" json:"status"` // Pending, Approved, Paid, Cancelled
	TransactionDate time.Time      `json:"transaction_date"`
	CreatedAt       time.Time      `json:"created"`
	UpdatedAt       time.Time      `json:"updated"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID" json:"-"`
	Product    Product    `gorm:"foreignKey:ProductID" json:"-"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
}

func (CommissionTransaction) TableName() string { return "commission_transactions" }
