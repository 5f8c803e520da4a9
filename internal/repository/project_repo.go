package repository

import (
	"showroom/internal/models"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) Update(p *models.Project) error {
	return r.db.Save(p).Error
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.Preload("Simulations", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) GetByGroupID(groupID uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.Where("group_id = ?", groupID).Preload("Simulations").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(status string, limit, offset int) ([]models.Project, error) {
	var list []models.Project
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *ProjectRepository) Delete(id uint) error {
	return r.db.Delete(&models.Project{}, id).Error
}

func (r *ProjectRepository) CreateSimulation(s *models.Simulation) error {
	return r.db.Create(s).Error
}

func (r *ProjectRepository) UpdateSimulation(s *models.Simulation) error {
	return r.db.Save(s).Error
}

func (r *ProjectRepository) GetSimulation(id uint) (*models.Simulation, error) {
	var s models.Simulation
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ProjectRepository) ListSimulations(projectID uint) ([]models.Simulation, error) {
	var list []models.Simulation
	err := r.db.Where("project_id = ?", projectID).Order("display_order ASC").Find(&list).Error
	return list, err
}

func (r *ProjectRepository) DeleteSimulation(id uint) error {
	return r.db.Delete(&models.Simulation{}, id).Error
}
