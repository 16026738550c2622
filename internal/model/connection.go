package model

import "time"

// Connection 用户存储的模型服务凭证/端点配置
type Connection struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	UserID          string    `gorm:"index;size:36;not null" json:"user_id"`
	Provider        string    `gorm:"size:50;not null" json:"provider"`
	Name            string    `gorm:"size:100" json:"name"`
	APIKeyEncrypted string    `gorm:"type:text" json:"-"` // 部分提供商（如本地 Ollama）可为空
	BaseURL         string    `gorm:"size:500" json:"base_url,omitempty"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	IsDefault       bool      `gorm:"default:false" json:"is_default"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Connection) TableName() string {
	return "connections"
}
