package repository

import (
	"github.com/ZulfikarHD/inkwell/internal/model"
	"gorm.io/gorm"
)

// codexRepository 设定集数据访问
type codexRepository struct {
	db *gorm.DB
}

var _ CodexRepository = (*codexRepository)(nil)

// NewCodexRepository 创建设定集仓库
func NewCodexRepository(db *gorm.DB) CodexRepository {
	return &codexRepository{db: db}
}

// Create 创建条目
func (r *codexRepository) Create(entry *model.CodexEntry) error {
	return r.db.Create(entry).Error
}

// GetByID 获取条目
func (r *codexRepository) GetByID(id string) (*model.CodexEntry, error) {
	var entry model.CodexEntry
	err := r.db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByNovel 列出小说的设定条目，entryType 为空时不过滤类型
func (r *codexRepository) ListByNovel(novelID string, entryType string) ([]*model.CodexEntry, error) {
	var entries []*model.CodexEntry
	query := r.db.Where("novel_id = ?", novelID)
	if entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}
	err := query.Order("name ASC").Find(&entries).Error
	return entries, err
}

// Update 更新条目
func (r *codexRepository) Update(entry *model.CodexEntry) error {
	return r.db.Save(entry).Error
}

// Delete 删除条目
func (r *codexRepository) Delete(id string) error {
	return r.db.Delete(&model.CodexEntry{}, "id = ?", id).Error
}
