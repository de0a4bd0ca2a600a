package models

import (
	"time"

	"gorm.io/gorm"
)

// Message lives inside an accepted connection. Only the receiver flips the
// read flag; only the sender may delete.
type Message struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ConnectionID uint           `gorm:"not null;index" json:"connection"`
	SenderID     uint           `gorm:"not null;index" json:"sender"`
	ReceiverID   uint           `gorm:"not null;index" json:"receiver"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Read         bool           `gorm:"not null;default:false;index" json:"read"`
	CreatedAt    time.Time      `json:"created"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Connection Connection `gorm:"foreignKey:ConnectionID" json:"-"`
	Sender     User       `gorm:"foreignKey:SenderID" json:"-"`
	Receiver   User       `gorm:"foreignKey:ReceiverID" json:"-"`
}

func (Message) TableName() string { return "messages" }
