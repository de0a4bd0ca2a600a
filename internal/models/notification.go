package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a write-only side effect of connection, message and
// enrollment events. RelatedID points at the triggering record.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user"`
	Type      string         `gorm:"size:50;not null;index" json:"type"` // connection_request, connection_accepted, new_message, system
	Message   string         `gorm:"size:500" json:"message"`
	RelatedID uint           `json:"related_id"`
	IsRead    bool           `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time      `json:"created"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
