package model

import "time"

// Novel 小说（稿件）
type Novel struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Genre       string    `gorm:"size:100" json:"genre,omitempty"`
	PointOfView string    `gorm:"size:100" json:"point_of_view,omitempty"` // 如 "first person", "third limited"
	Tense       string    `gorm:"size:50" json:"tense,omitempty"`          // 如 "past", "present"
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Scene 小说中的一个场景
type Scene struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	NovelID   string    `gorm:"index;size:36;not null" json:"novel_id"`
	Title     string    `gorm:"size:255" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Summary   string    `gorm:"type:text" json:"summary,omitempty"`
	Position  int       `gorm:"index;default:0" json:"position"`
	Labels    []Label   `gorm:"many2many:scene_labels" json:"labels,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Label 场景标签
type Label struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	NovelID   string    `gorm:"index;size:36;not null" json:"novel_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Color     string    `gorm:"size:20" json:"color,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Novel) TableName() string {
	return "novels"
}

func (Scene) TableName() string {
	return "scenes"
}

func (Label) TableName() string {
	return "labels"
}
