package models

import (
	"time"

	"showroom/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:128;not null;default:''" json:"fullName"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // Admin | Instructor | Student
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"`      // nil for password signups (avoids duplicate '' on unique index)
	AvatarURL    string         `gorm:"size:512" json:"avatarUrl"`
	StudentCode  string         `gorm:"size:32;index" json:"studentCode,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool      { return u.Role == domain.RoleAdmin }
func (u *User) IsInstructor() bool { return u.Role == domain.RoleInstructor }
func (u *User) IsStudent() bool    { return u.Role == domain.RoleStudent }
