// Package codex 提供设定集条目管理
package codex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/repository"
)

// Service 设定集服务
type Service struct {
	repo   repository.CodexRepository
	novels repository.NovelRepository
}

// NewService 创建设定集服务
func NewService(repo repository.CodexRepository, novels repository.NovelRepository) *Service {
	return &Service{repo: repo, novels: novels}
}

// EntryRequest 创建/更新条目请求
type EntryRequest struct {
	Name         string     `json:"name"`
	EntryType    string     `json:"entry_type"`
	Description  string     `json:"description"`
	Details      model.JSON `json:"details"`
	AIVisibility string     `json:"ai_visibility"`
}

// Create 创建条目
func (s *Service) Create(ctx context.Context, userID, novelID string, req *EntryRequest) (*model.CodexEntry, error) {
	if err := s.checkNovel(userID, novelID); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	entry := &model.CodexEntry{
		ID:           uuid.New().String(),
		NovelID:      novelID,
		Name:         req.Name,
		EntryType:    req.EntryType,
		Description:  req.Description,
		Details:      req.Details,
		AIVisibility: req.AIVisibility,
	}
	if entry.EntryType == "" {
		entry.EntryType = model.CodexTypeOther
	}
	if entry.AIVisibility == "" {
		entry.AIVisibility = model.VisibilityVisible
	}

	if err := s.repo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create codex entry: %w", err)
	}
	return entry, nil
}

// Get 获取条目
func (s *Service) Get(ctx context.Context, userID, id string) (*model.CodexEntry, error) {
	entry, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("codex entry not found: %w", err)
	}
	if err := s.checkNovel(userID, entry.NovelID); err != nil {
		return nil, fmt.Errorf("codex entry not found")
	}
	return entry, nil
}

// List 列出小说的条目，entryType 为空时返回全部
func (s *Service) List(ctx context.Context, userID, novelID, entryType string) ([]*model.CodexEntry, error) {
	if err := s.checkNovel(userID, novelID); err != nil {
		return nil, err
	}
	return s.repo.ListByNovel(novelID, entryType)
}

// Update 更新条目
func (s *Service) Update(ctx context.Context, userID, id string, req *EntryRequest) (*model.CodexEntry, error) {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		entry.Name = req.Name
	}
	if req.EntryType != "" {
		entry.EntryType = req.EntryType
	}
	if req.Description != "" {
		entry.Description = req.Description
	}
	if req.Details != nil {
		entry.Details = req.Details
	}
	if req.AIVisibility != "" {
		entry.AIVisibility = req.AIVisibility
	}

	if err := s.repo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update codex entry: %w", err)
	}
	return entry, nil
}

// Delete 删除条目
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete codex entry: %w", err)
	}
	return nil
}

// checkNovel 校验小说归属
func (s *Service) checkNovel(userID, novelID string) error {
	novel, err := s.novels.GetNovelByID(novelID)
	if err != nil {
		return fmt.Errorf("novel not found: %w", err)
	}
	if novel.UserID != userID {
		return fmt.Errorf("novel not found")
	}
	return nil
}
