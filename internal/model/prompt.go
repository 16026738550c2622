package model

import "time"

// PromptTemplate 可复用的提示词模板
type PromptTemplate struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"size:100;index" json:"category,omitempty"`
	IsShared  bool      `gorm:"default:false;index" json:"is_shared"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (PromptTemplate) TableName() string {
	return "prompt_templates"
}
