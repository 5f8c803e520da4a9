package repository

import (
	"showroom/internal/models"

	"gorm.io/gorm"
)

type SyllabusRepository struct {
	db *gorm.DB
}

func NewSyllabusRepository(db *gorm.DB) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

func (r *SyllabusRepository) Create(s *models.Syllabus) error {
	return r.db.Create(s).Error
}

func (r *SyllabusRepository) Update(s *models.Syllabus) error {
	return r.db.Save(s).Error
}

func (r *SyllabusRepository) GetByID(id uint) (*models.Syllabus, error) {
	var s models.Syllabus
	if err := r.db.Preload("Files", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SyllabusRepository) ListByClass(classID uint) ([]models.Syllabus, error) {
	var list []models.Syllabus
	err := r.db.Where("class_id = ?", classID).Preload("Files").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *SyllabusRepository) Delete(id uint) error {
	return r.db.Delete(&models.Syllabus{}, id).Error
}

func (r *SyllabusRepository) AddFile(f *models.SyllabusFile) error {
	return r.db.Create(f).Error
}

func (r *SyllabusRepository) GetFile(id uint) (*models.SyllabusFile, error) {
	var f models.SyllabusFile
	if err := r.db.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *SyllabusRepository) DeleteFile(id uint) error {
	return r.db.Delete(&models.SyllabusFile{}, id).Error
}
