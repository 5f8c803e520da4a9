package models

import (
	"time"

	"gorm.io/gorm"
)

// Syllabus is the course material an instructor publishes for a class.
type Syllabus struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ClassID     uint           `gorm:"not null;index" json:"classId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Class Class          `gorm:"foreignKey:ClassID" json:"-"`
	Files []SyllabusFile `gorm:"foreignKey:SyllabusID" json:"files,omitempty"`
}

func (Syllabus) TableName() string { return "syllabi" }

type SyllabusFile struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SyllabusID   uint           `gorm:"not null;index" json:"syllabusId"`
	FileName     string         `gorm:"size:255" json:"fileName"`
	FileURL      string         `gorm:"size:512" json:"fileUrl"`
	FileSize     int64          `json:"fileSize"`
	MimeType     string         `gorm:"size:128" json:"mimeType"`
	Description  string         `gorm:"size:512" json:"description,omitempty"`
	DisplayOrder int            `gorm:"default:0" json:"displayOrder"`
	CreatedAt    time.Time      `json:"createdAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SyllabusFile) TableName() string { return "syllabus_files" }
