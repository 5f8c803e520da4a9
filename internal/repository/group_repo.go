package repository

import (
	"showroom/internal/models"

	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(g *models.Group) error {
	return r.db.Create(g).Error
}

func (r *GroupRepository) Update(g *models.Group) error {
	return r.db.Save(g).Error
}

func (r *GroupRepository) GetByID(id uint) (*models.Group, error) {
	var g models.Group
	if err := r.db.Preload("Members.User").First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) ListByClass(classID uint) ([]models.Group, error) {
	var list []models.Group
	err := r.db.Where("class_id = ?", classID).Preload("Members").Order("created_at DESC").Find(&list).Error
	return list, err
}

// ListByMember returns every group the user belongs to.
func (r *GroupRepository) ListByMember(userID uint) ([]models.Group, error) {
	var list []models.Group
	err := r.db.Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Preload("Members").Find(&list).Error
	return list, err
}

func (r *GroupRepository) AddMember(m *models.GroupMember) error {
	return r.db.Create(m).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID uint) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{}).Error
}

func (r *GroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) MemberCount(groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *GroupRepository) Delete(id uint) error {
	return r.db.Delete(&models.Group{}, id).Error
}
