package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is an IoT project submitted by a group.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	GroupID     uint           `gorm:"not null;index" json:"groupId"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;not null;index" json:"status"` // Draft, Submitted, Graded
	Grade       *float64       `json:"grade"`
	Feedback    string         `gorm:"type:text" json:"feedback,omitempty"`
	SubmittedAt *time.Time     `json:"submittedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Group       Group        `gorm:"foreignKey:GroupID" json:"-"`
	Simulations []Simulation `gorm:"foreignKey:ProjectID" json:"simulations,omitempty"`
}

func (Project) TableName() string { return "projects" }

// Simulation is a circuit/firmware simulation attached to a project.
type Simulation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProjectID    uint           `gorm:"not null;index" json:"projectId"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	FileURL      string         `gorm:"size:512" json:"fileUrl"`
	DisplayOrder int            `gorm:"default:0" json:"displayOrder"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Simulation) TableName() string { return "simulations" }
