package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Connection is the bidirectional relationship between two users and their
// businesses. PairKey normalizes the user pair so the unique index holds for
// both directions; the application-level duplicate check is only a fast path
// that produces status-specific error messages.
type Connection struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserFromID     uint           `gorm:"not null;index" json:"user_from"`
	UserToID       uint           `gorm:"not null;index" json:"user_to"`
	BusinessFromID uint           `gorm:"not null" json:"business_from"`
	BusinessToID   uint           `gorm:"not null" json:"business_to"`
	PairKey        string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // pending, accepted, rejected, blocked
	Message        string         `gorm:"size:500" json:"message"`
	CreatedAt      time.Time      `json:"created"`
	UpdatedAt      time.Time      `json:"updated"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	UserFrom     User     `gorm:"foreignKey:UserFromID" json:"user_from_detail,omitempty"`
	UserTo       User     `gorm:"foreignKey:UserToID" json:"user_to_detail,omitempty"`
	BusinessFrom Business `gorm:"foreignKey:BusinessFromID" json:"business_from_detail,omitempty"`
	BusinessTo   Business `gorm:"foreignKey:BusinessToID" json:"business_to_detail,omitempty"`
}

func (Connection) TableName() string { return "connections" }

// MakePairKey returns the order-independent key for a user pair.
func MakePairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// OtherParty returns the peer of userID on this connection, or 0 when userID
// is not a party.
func (c *Connection) OtherParty(userID uint) uint {
	switch userID {
	case c.UserFromID:
		return c.UserToID
	case c.UserToID:
		return c.UserFromID
	}
	return 0
}

// IsParty reports whether userID is one of the two connected users.
func (c *Connection) IsParty(userID uint) bool {
	return userID == c.UserFromID || userID == c.UserToID
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.PairKey == "" {
		c.PairKey = MakePairKey(c.UserFromID, c.UserToID)
	}
	return nil
}
