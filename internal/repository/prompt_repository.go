package repository

import (
	"github.com/ZulfikarHD/inkwell/internal/model"
	"gorm.io/gorm"
)

// promptRepository 提示词模板数据访问
type promptRepository struct {
	db *gorm.DB
}

var _ PromptRepository = (*promptRepository)(nil)

// NewPromptRepository 创建提示词模板仓库
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

// Create 创建模板
func (r *promptRepository) Create(tpl *model.PromptTemplate) error {
	return r.db.Create(tpl).Error
}

// GetByID 获取模板
func (r *promptRepository) GetByID(id string) (*model.PromptTemplate, error) {
	var tpl model.PromptTemplate
	err := r.db.Where("id = ?", id).First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListByUser 列出用户的模板
func (r *promptRepository) ListByUser(userID string, offset, limit int) ([]*model.PromptTemplate, error) {
	var tpls []*model.PromptTemplate
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").
		Offset(offset).Limit(limit).Find(&tpls).Error
	return tpls, err
}

// ListShared 列出共享模板
func (r *promptRepository) ListShared(offset, limit int) ([]*model.PromptTemplate, error) {
	var tpls []*model.PromptTemplate
	err := r.db.Where("is_shared = ?", true).Order("updated_at DESC").
		Offset(offset).Limit(limit).Find(&tpls).Error
	return tpls, err
}

// Update 更新模板
func (r *promptRepository) Update(tpl *model.PromptTemplate) error {
	return r.db.Save(tpl).Error
}

// Delete 删除模板
func (r *promptRepository) Delete(id string) error {
	return r.db.Delete(&model.PromptTemplate{}, "id = ?", id).Error
}
