package repository

import (
	"github.com/ZulfikarHD/inkwell/internal/model"
	"gorm.io/gorm"
)

// authRepository 认证数据访问
type authRepository struct {
	db *gorm.DB
}

var _ AuthRepository = (*authRepository)(nil)

// NewAuthRepository 创建认证仓库
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateUser 创建用户
func (r *authRepository) CreateUser(user *model.User) error {
	return r.db.Create(user).Error
}

// GetUserByID 按 ID 获取用户
func (r *authRepository) GetUserByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 按邮箱获取用户
func (r *authRepository) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 按用户名获取用户
func (r *authRepository) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser 更新用户
func (r *authRepository) UpdateUser(user *model.User) error {
	return r.db.Save(user).Error
}

// CreateToken 创建令牌
func (r *authRepository) CreateToken(token *model.AuthToken) error {
	return r.db.Create(token).Error
}

// GetToken 获取令牌
func (r *authRepository) GetToken(token string) (*model.AuthToken, error) {
	var t model.AuthToken
	err := r.db.Where("token = ? AND is_revoked = ?", token, false).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RevokeToken 吊销令牌
func (r *authRepository) RevokeToken(token string) error {
	return r.db.Model(&model.AuthToken{}).Where("token = ?", token).Update("is_revoked", true).Error
}
