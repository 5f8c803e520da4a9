package repository

import (
	"showroom/internal/models"

	"gorm.io/gorm"
)

// AcademicRepository covers semesters, classes and enrollments.
type AcademicRepository struct {
	db *gorm.DB
}

func NewAcademicRepository(db *gorm.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

func (r *AcademicRepository) CreateSemester(s *models.Semester) error {
	return r.db.Create(s).Error
}

func (r *AcademicRepository) UpdateSemester(s *models.Semester) error {
	return r.db.Save(s).Error
}

func (r *AcademicRepository) ListSemesters() ([]models.Semester, error) {
	var list []models.Semester
	err := r.db.Order("start_date DESC").Find(&list).Error
	return list, err
}

func (r *AcademicRepository) GetSemester(id uint) (*models.Semester, error) {
	var s models.Semester
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AcademicRepository) DeleteSemester(id uint) error {
	return r.db.Delete(&models.Semester{}, id).Error
}

func (r *AcademicRepository) CreateClass(cl *models.Class) error {
	return r.db.Create(cl).Error
}

func (r *AcademicRepository) UpdateClass(cl *models.Class) error {
	return r.db.Save(cl).Error
}

func (r *AcademicRepository) GetClass(id uint) (*models.Class, error) {
	var cl models.Class
	if err := r.db.Preload("Semester").Preload("Instructor").First(&cl, id).Error; err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *AcademicRepository) ListClasses(semesterID uint) ([]models.Class, error) {
	var list []models.Class
	q := r.db.Preload("Semester").Order("created_at DESC")
	if semesterID != 0 {
		q = q.Where("semester_id = ?", semesterID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *AcademicRepository) DeleteClass(id uint) error {
	return r.db.Delete(&models.Class{}, id).Error
}

func (r *AcademicRepository) Enroll(e *models.ClassEnrollment) error {
	return r.db.Create(e).Error
}

func (r *AcademicRepository) Unenroll(classID, studentID uint) error {
	return r.db.Where("class_id = ? AND student_id = ?", classID, studentID).Delete(&models.ClassEnrollment{}).Error
}

func (r *AcademicRepository) IsEnrolled(classID, studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ClassEnrollment{}).Where("class_id = ? AND student_id = ?", classID, studentID).Count(&count).Error
	return count > 0, err
}

func (r *AcademicRepository) ListEnrollments(classID uint) ([]models.ClassEnrollment, error) {
	var list []models.ClassEnrollment
	err := r.db.Where("class_id = ?", classID).Preload("Student").Find(&list).Error
	return list, err
}
