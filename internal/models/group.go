package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a student project group within a class.
type Group struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null" json:"name"`
	ClassID   uint           `gorm:"not null;index" json:"classId"`
	LeaderID  uint           `gorm:"index" json:"leaderId"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // Forming, Active, Closed
	MaxSize   int            `gorm:"default:5" json:"maxSize"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Class   Class         `gorm:"foreignKey:ClassID" json:"-"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

func (Group) TableName() string { return "groups" }

type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;index:idx_group_user,unique" json:"groupId"`
	UserID   uint      `gorm:"not null;index:idx_group_user,unique" json:"userId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string { return "group_members" }
