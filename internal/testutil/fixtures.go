package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/model"
)

// NewNovel 创建测试小说
func NewNovel(userID string) *model.Novel {
	return &model.Novel{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       "The Hollow Crown",
		Genre:       "fantasy",
		PointOfView: "third person limited",
		Tense:       "past",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// NewScene 创建测试场景
func NewScene(novelID string, position int) *model.Scene {
	return &model.Scene{
		ID:        uuid.New().String(),
		NovelID:   novelID,
		Title:     "Scene",
		Content:   "The storm broke over the harbor.",
		Summary:   "A storm arrives.",
		Position:  position,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewCodexEntry 创建测试设定条目
func NewCodexEntry(novelID string) *model.CodexEntry {
	return &model.CodexEntry{
		ID:           uuid.New().String(),
		NovelID:      novelID,
		Name:         "Mara",
		EntryType:    model.CodexTypeCharacter,
		Description:  "A lighthouse keeper.",
		Details:      model.JSON{"age": "42"},
		AIVisibility: model.VisibilityVisible,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// NewConversation 创建测试会话
func NewConversation(userID, novelID string) *model.Conversation {
	return &model.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		NovelID:   novelID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewConnection 创建测试模型连接
func NewConnection(userID, provider string) *model.Connection {
	return &model.Connection{
		ID:        uuid.New().String(),
		UserID:    userID,
		Provider:  provider,
		Name:      provider,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
