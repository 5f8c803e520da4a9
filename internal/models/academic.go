package models

import (
	"time"

	"gorm.io/gorm"
)

type Semester struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:64;not null" json:"name"` // e.g. "Fall 2026"
	StartDate time.Time      `json:"startDate"`
	EndDate   time.Time      `json:"endDate"`
	IsActive  bool           `gorm:"default:false;index" json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Semester) TableName() string { return "semesters" }

type Class struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:128;not null" json:"name"`
	SemesterID   uint           `gorm:"not null;index" json:"semesterId"`
	InstructorID uint           `gorm:"not null;index" json:"instructorId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Semester   Semester `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
	Instructor User     `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

func (Class) TableName() string { return "classes" }

// ClassEnrollment links a student to a class.
type ClassEnrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClassID    uint      `gorm:"not null;index:idx_class_student,unique" json:"classId"`
	StudentID  uint      `gorm:"not null;index:idx_class_student,unique" json:"studentId"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolledAt"`

	Student User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (ClassEnrollment) TableName() string { return "class_enrollments" }
