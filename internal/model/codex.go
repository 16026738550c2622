// Package model 定义所有 GORM 数据模型
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 设定条目类型
const (
	CodexTypeCharacter = "character"
	CodexTypeLocation  = "location"
	CodexTypeItem      = "item"
	CodexTypeLore      = "lore"
	CodexTypeOther     = "other"
)

// AI 可见性策略
const (
	VisibilityVisible = "visible"
	VisibilityHidden  = "hidden" // 对 AI 隐藏，聚合时静默排除
)

// JSON 通用 JSON 列类型
type JSON map[string]string

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, j)
}

// CodexEntry 设定集条目（人物、地点、物品、背景设定等）
type CodexEntry struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	NovelID      string    `gorm:"index;size:36;not null" json:"novel_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	EntryType    string    `gorm:"size:20;index;default:other" json:"entry_type"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Details      JSON      `gorm:"type:json" json:"details,omitempty"` // 键值详情，如 "age": "27"
	AIVisibility string    `gorm:"size:20;default:visible" json:"ai_visibility"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (CodexEntry) TableName() string {
	return "codex_entries"
}
