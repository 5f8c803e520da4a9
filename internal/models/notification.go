package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is delivered over the hub when the owner is connected and
// always retrievable via the list endpoints. ReadAt only ever moves from
// nil to set; nothing unmarks a read notification.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Type      string         `gorm:"size:50;not null;index" json:"type"` // display category: Info, Success, Warning, Error
	Title     string         `gorm:"size:255" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Data      string         `gorm:"type:text" json:"data,omitempty"` // opaque JSON payload
	ReadAt    *time.Time     `json:"readAt"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) IsRead() bool { return n.ReadAt != nil }
