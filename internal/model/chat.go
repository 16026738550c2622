package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// 上下文条目类型
const (
	ContextItemScene   = "scene"   // 场景引用
	ContextItemCodex   = "codex"   // 设定集引用
	ContextItemSummary = "summary" // 摘要占位
	ContextItemOutline = "outline" // 大纲占位
	ContextItemCustom  = "custom"  // 自定义文本
)

// Conversation 对话会话，归属于一个用户和一部小说
type Conversation struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"index;size:36;not null" json:"user_id"`
	NovelID      string    `gorm:"index;size:36;not null" json:"novel_id"`
	SceneID      *string   `gorm:"size:36" json:"scene_id,omitempty"`
	ConnectionID *string   `gorm:"size:36" json:"connection_id,omitempty"`
	ModelName    string    `gorm:"size:100" json:"model_name"`
	Title        string    `gorm:"size:255" json:"title"`
	IsArchived   bool      `gorm:"index;default:false" json:"is_archived"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Turns        []Turn    `gorm:"foreignKey:ConversationID" json:"turns,omitempty"`
}

// Turn 对话中的一条消息，流结束后内容不可变
type Turn struct {
	ID             string           `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string           `gorm:"index;size:36;not null" json:"conversation_id"`
	Role           string           `gorm:"size:20;index" json:"role"` // user, assistant, system
	Content        string           `gorm:"type:text" json:"content"`
	ModelUsed      string           `gorm:"size:100" json:"model_used,omitempty"`
	InputTokens    int              `gorm:"default:0" json:"input_tokens"`
	OutputTokens   int              `gorm:"default:0" json:"output_tokens"`
	ContextUsed    *ContextSnapshot `gorm:"type:json" json:"context_used,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

// ContextItem 附加到对话上的一份背景素材，可软开关
type ContextItem struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string    `gorm:"size:36;not null;uniqueIndex:idx_context_conv_type_ref" json:"conversation_id"`
	ItemType       string    `gorm:"size:20;not null;uniqueIndex:idx_context_conv_type_ref" json:"item_type"`
	ReferenceID    string    `gorm:"size:36;uniqueIndex:idx_context_conv_type_ref" json:"reference_id,omitempty"`
	Content        string    `gorm:"type:text" json:"content,omitempty"` // 仅 custom 类型使用
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ContextSnapshot 产生某条消息时生效的上下文快照，只写一次，之后不再重算
type ContextSnapshot struct {
	Items         []SnapshotItem `json:"items"`
	LinkedSceneID string         `json:"linked_scene_id,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// SnapshotItem 快照中的单个条目
type SnapshotItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ReferenceID string `json:"reference_id,omitempty"`
	Name        string `json:"name"`
}

// Value 实现 driver.Valuer 接口
func (s ContextSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *ContextSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, s)
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

func (Turn) TableName() string {
	return "turns"
}

func (ContextItem) TableName() string {
	return "context_items"
}
