// Package prompt 提供提示词模板管理
package prompt

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/repository"
)

// Service 提示词模板服务
type Service struct {
	repo repository.PromptRepository
}

// NewService 创建提示词模板服务
func NewService(repo repository.PromptRepository) *Service {
	return &Service{repo: repo}
}

// TemplateRequest 创建/更新模板请求
type TemplateRequest struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Category string `json:"category"`
	IsShared *bool  `json:"is_shared"`
}

// Create 创建模板
func (s *Service) Create(ctx context.Context, userID string, req *TemplateRequest) (*model.PromptTemplate, error) {
	if req.Name == "" || req.Content == "" {
		return nil, fmt.Errorf("name and content are required")
	}

	tpl := &model.PromptTemplate{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     req.Name,
		Content:  req.Content,
		Category: req.Category,
	}
	if req.IsShared != nil {
		tpl.IsShared = *req.IsShared
	}

	if err := s.repo.Create(tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

// Get 获取模板，共享模板任何人可读
func (s *Service) Get(ctx context.Context, userID, id string) (*model.PromptTemplate, error) {
	tpl, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	if tpl.UserID != userID && !tpl.IsShared {
		return nil, fmt.Errorf("template not found")
	}
	return tpl, nil
}

// List 列出用户的模板
func (s *Service) List(ctx context.Context, userID string, page, size int) ([]*model.PromptTemplate, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.repo.ListByUser(userID, (page-1)*size, size)
}

// ListShared 列出共享模板
func (s *Service) ListShared(ctx context.Context, page, size int) ([]*model.PromptTemplate, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.repo.ListShared((page-1)*size, size)
}

// Update 更新模板
func (s *Service) Update(ctx context.Context, userID, id string, req *TemplateRequest) (*model.PromptTemplate, error) {
	tpl, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	if tpl.UserID != userID {
		return nil, fmt.Errorf("template not found")
	}

	if req.Name != "" {
		tpl.Name = req.Name
	}
	if req.Content != "" {
		tpl.Content = req.Content
	}
	if req.Category != "" {
		tpl.Category = req.Category
	}
	if req.IsShared != nil {
		tpl.IsShared = *req.IsShared
	}

	if err := s.repo.Update(tpl); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tpl, nil
}

// Delete 删除模板
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	tpl, err := s.repo.GetByID(id)
	if err != nil {
		return fmt.Errorf("template not found: %w", err)
	}
	if tpl.UserID != userID {
		return fmt.Errorf("template not found")
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}
