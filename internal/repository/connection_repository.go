package repository

import (
	"errors"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"gorm.io/gorm"
)

// connectionRepository 提供商连接数据访问
type connectionRepository struct {
	db *gorm.DB
}

var _ ConnectionRepository = (*connectionRepository)(nil)

// NewConnectionRepository 创建连接仓库
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Create 创建连接
func (r *connectionRepository) Create(conn *model.Connection) error {
	return r.db.Create(conn).Error
}

// GetByID 获取连接
func (r *connectionRepository) GetByID(id string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.Where("id = ?", id).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// ListByUser 列出用户全部连接
func (r *connectionRepository) ListByUser(userID string) ([]*model.Connection, error) {
	var conns []*model.Connection
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&conns).Error
	return conns, err
}

// ListActiveByUser 列出用户的活跃连接
func (r *connectionRepository) ListActiveByUser(userID string) ([]*model.Connection, error) {
	var conns []*model.Connection
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Order("created_at ASC").Find(&conns).Error
	return conns, err
}

// GetDefaultByUser 获取用户默认且活跃的连接，不存在返回 nil
func (r *connectionRepository) GetDefaultByUser(userID string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.Where("user_id = ? AND is_default = ? AND is_active = ?", userID, true, true).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// Update 更新连接
func (r *connectionRepository) Update(conn *model.Connection) error {
	return r.db.Save(conn).Error
}

// Delete 删除连接
func (r *connectionRepository) Delete(id string) error {
	return r.db.Delete(&model.Connection{}, "id = ?", id).Error
}

// SetDefault 设置默认连接
// 同一用户同一时刻最多一个默认连接，清除与设置在一个事务内完成
func (r *connectionRepository) SetDefault(userID, connectionID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Connection{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Connection{}).
			Where("id = ? AND user_id = ?", connectionID, userID).
			Update("is_default", true).Error
	})
}
