package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatRoom is the single conversation for one group, created lazily the
// first time the group chat is opened.
type ChatRoom struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	GroupID        uint           `gorm:"uniqueIndex;not null" json:"groupId"`
	GroupName      string         `gorm:"size:128" json:"groupName"`
	ClassName      string         `gorm:"size:128" json:"className"`
	LastActivityAt time.Time      `gorm:"index" json:"lastActivityAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// ChatMessage freezes the sender identity at send time so the record
// stays stable after later profile edits. Messages are never edited or
// deleted by clients.
type ChatMessage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	RoomID        uint   `gorm:"not null;index" json:"roomId"`
	SenderID      uint   `gorm:"not null;index" json:"senderId"`
	SenderName    string `gorm:"size:128" json:"senderName"`
	SenderEmail   string `gorm:"size:255" json:"senderEmail"`
	SenderAvatar  string `gorm:"size:512" json:"senderAvatar"`
	Kind          string `gorm:"size:16;not null;default:'text'" json:"kind"` // text, image, file
	Content       string `gorm:"type:text" json:"content"`
	FileID        string `gorm:"size:64" json:"fileId,omitempty"`
	FileName      string `gorm:"size:255" json:"fileName,omitempty"`
	FileSize      int64  `json:"fileSize,omitempty"`
	FileMimeType  string `gorm:"size:128" json:"fileMimeType,omitempty"`
	CorrelationID string `gorm:"size:64;index" json:"correlationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`

	Room  ChatRoom      `gorm:"foreignKey:RoomID" json:"-"`
	Reads []MessageRead `gorm:"foreignKey:MessageID" json:"reads,omitempty"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// MessageRead marks that a member has read up to a message.
type MessageRead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"not null;index:idx_message_user,unique" json:"messageId"`
	UserID    uint      `gorm:"not null;index:idx_message_user,unique" json:"userId"`
	ReadAt    time.Time `gorm:"autoCreateTime" json:"readAt"`
}

func (MessageRead) TableName() string { return "message_reads" }
