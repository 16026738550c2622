package repository

import (
	"github.com/ZulfikarHD/inkwell/internal/model"
	"gorm.io/gorm"
)

// novelRepository 小说数据访问
type novelRepository struct {
	db *gorm.DB
}

var _ NovelRepository = (*novelRepository)(nil)

// NewNovelRepository 创建小说仓库
func NewNovelRepository(db *gorm.DB) NovelRepository {
	return &novelRepository{db: db}
}

// CreateNovel 创建小说
func (r *novelRepository) CreateNovel(novel *model.Novel) error {
	return r.db.Create(novel).Error
}

// GetNovelByID 获取小说
func (r *novelRepository) GetNovelByID(id string) (*model.Novel, error) {
	var novel model.Novel
	err := r.db.Where("id = ?", id).First(&novel).Error
	if err != nil {
		return nil, err
	}
	return &novel, nil
}

// ListNovels 列出用户的小说
func (r *novelRepository) ListNovels(userID string, offset, limit int) ([]*model.Novel, error) {
	var novels []*model.Novel
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").
		Offset(offset).Limit(limit).Find(&novels).Error
	return novels, err
}

// UpdateNovel 更新小说
func (r *novelRepository) UpdateNovel(novel *model.Novel) error {
	return r.db.Save(novel).Error
}

// DeleteNovel 删除小说及其场景、标签、设定条目
func (r *novelRepository) DeleteNovel(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Scene{}, "novel_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Label{}, "novel_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.CodexEntry{}, "novel_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Novel{}, "id = ?", id).Error
	})
}

// CreateScene 创建场景
func (r *novelRepository) CreateScene(scene *model.Scene) error {
	return r.db.Create(scene).Error
}

// GetSceneByID 获取场景
func (r *novelRepository) GetSceneByID(id string) (*model.Scene, error) {
	var scene model.Scene
	err := r.db.Preload("Labels").Where("id = ?", id).First(&scene).Error
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// ListScenes 按位置顺序列出场景
func (r *novelRepository) ListScenes(novelID string) ([]*model.Scene, error) {
	var scenes []*model.Scene
	err := r.db.Where("novel_id = ?", novelID).Order("position ASC").Find(&scenes).Error
	return scenes, err
}

// UpdateScene 更新场景
func (r *novelRepository) UpdateScene(scene *model.Scene) error {
	return r.db.Save(scene).Error
}

// DeleteScene 删除场景
func (r *novelRepository) DeleteScene(id string) error {
	return r.db.Delete(&model.Scene{}, "id = ?", id).Error
}

// CreateLabel 创建标签
func (r *novelRepository) CreateLabel(label *model.Label) error {
	return r.db.Create(label).Error
}

// ListLabels 列出小说的标签
func (r *novelRepository) ListLabels(novelID string) ([]*model.Label, error) {
	var labels []*model.Label
	err := r.db.Where("novel_id = ?", novelID).Order("name ASC").Find(&labels).Error
	return labels, err
}

// DeleteLabel 删除标签
func (r *novelRepository) DeleteLabel(id string) error {
	return r.db.Delete(&model.Label{}, "id = ?", id).Error
}

// AttachLabel 给场景附加标签
func (r *novelRepository) AttachLabel(sceneID, labelID string) error {
	return r.db.Model(&model.Scene{ID: sceneID}).
		Association("Labels").Append(&model.Label{ID: labelID})
}

// DetachLabel 从场景移除标签
func (r *novelRepository) DetachLabel(sceneID, labelID string) error {
	return r.db.Model(&model.Scene{ID: sceneID}).
		Association("Labels").Delete(&model.Label{ID: labelID})
}
