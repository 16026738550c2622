// Package novel 提供小说、场景与标签管理
package novel

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/repository"
)

// Service 小说服务
type Service struct {
	repo repository.NovelRepository
}

// NewService 创建小说服务
func NewService(repo repository.NovelRepository) *Service {
	return &Service{repo: repo}
}

// NovelRequest 创建/更新小说请求
type NovelRequest struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	PointOfView string `json:"point_of_view"`
	Tense       string `json:"tense"`
	Description string `json:"description"`
}

// CreateNovel 创建小说
func (s *Service) CreateNovel(ctx context.Context, userID string, req *NovelRequest) (*model.Novel, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	novel := &model.Novel{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Genre:       req.Genre,
		PointOfView: req.PointOfView,
		Tense:       req.Tense,
		Description: req.Description,
	}

	if err := s.repo.CreateNovel(novel); err != nil {
		return nil, fmt.Errorf("failed to create novel: %w", err)
	}
	return novel, nil
}

// GetNovel 获取小说，校验归属
func (s *Service) GetNovel(ctx context.Context, userID, id string) (*model.Novel, error) {
	novel, err := s.repo.GetNovelByID(id)
	if err != nil {
		return nil, fmt.Errorf("novel not found: %w", err)
	}
	if novel.UserID != userID {
		return nil, fmt.Errorf("novel not found")
	}
	return novel, nil
}

// ListNovels 列出用户的小说
func (s *Service) ListNovels(ctx context.Context, userID string, page, size int) ([]*model.Novel, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.repo.ListNovels(userID, (page-1)*size, size)
}

// UpdateNovel 更新小说
func (s *Service) UpdateNovel(ctx context.Context, userID, id string, req *NovelRequest) (*model.Novel, error) {
	novel, err := s.GetNovel(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		novel.Title = req.Title
	}
	if req.Genre != "" {
		novel.Genre = req.Genre
	}
	if req.PointOfView != "" {
		novel.PointOfView = req.PointOfView
	}
	if req.Tense != "" {
		novel.Tense = req.Tense
	}
	if req.Description != "" {
		novel.Description = req.Description
	}

	if err := s.repo.UpdateNovel(novel); err != nil {
		return nil, fmt.Errorf("failed to update novel: %w", err)
	}
	return novel, nil
}

// DeleteNovel 删除小说及其全部内容
func (s *Service) DeleteNovel(ctx context.Context, userID, id string) error {
	if _, err := s.GetNovel(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteNovel(id); err != nil {
		return fmt.Errorf("failed to delete novel: %w", err)
	}
	return nil
}

// SceneRequest 创建/更新场景请求
type SceneRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Summary  string `json:"summary"`
	Position *int   `json:"position"`
}

// CreateScene 创建场景
func (s *Service) CreateScene(ctx context.Context, userID, novelID string, req *SceneRequest) (*model.Scene, error) {
	if _, err := s.GetNovel(ctx, userID, novelID); err != nil {
		return nil, err
	}

	scene := &model.Scene{
		ID:      uuid.New().String(),
		NovelID: novelID,
		Title:   req.Title,
		Content: req.Content,
		Summary: req.Summary,
	}
	if req.Position != nil {
		scene.Position = *req.Position
	}

	if err := s.repo.CreateScene(scene); err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	return scene, nil
}

// GetScene 获取场景
func (s *Service) GetScene(ctx context.Context, userID, id string) (*model.Scene, error) {
	scene, err := s.repo.GetSceneByID(id)
	if err != nil {
		return nil, fmt.Errorf("scene not found: %w", err)
	}
	if _, err := s.GetNovel(ctx, userID, scene.NovelID); err != nil {
		return nil, fmt.Errorf("scene not found")
	}
	return scene, nil
}

// ListScenes 按位置顺序列出场景
func (s *Service) ListScenes(ctx context.Context, userID, novelID string) ([]*model.Scene, error) {
	if _, err := s.GetNovel(ctx, userID, novelID); err != nil {
		return nil, err
	}
	return s.repo.ListScenes(novelID)
}

// UpdateScene 更新场景
func (s *Service) UpdateScene(ctx context.Context, userID, id string, req *SceneRequest) (*model.Scene, error) {
	scene, err := s.GetScene(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		scene.Title = req.Title
	}
	if req.Content != "" {
		scene.Content = req.Content
	}
	if req.Summary != "" {
		scene.Summary = req.Summary
	}
	if req.Position != nil {
		scene.Position = *req.Position
	}

	if err := s.repo.UpdateScene(scene); err != nil {
		return nil, fmt.Errorf("failed to update scene: %w", err)
	}
	return scene, nil
}

// DeleteScene 删除场景
func (s *Service) DeleteScene(ctx context.Context, userID, id string) error {
	if _, err := s.GetScene(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteScene(id); err != nil {
		return fmt.Errorf("failed to delete scene: %w", err)
	}
	return nil
}

// LabelRequest 创建标签请求
type LabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// CreateLabel 创建标签
func (s *Service) CreateLabel(ctx context.Context, userID, novelID string, req *LabelRequest) (*model.Label, error) {
	if _, err := s.GetNovel(ctx, userID, novelID); err != nil {
		return nil, err
	}

	label := &model.Label{
		ID:      uuid.New().String(),
		NovelID: novelID,
		Name:    req.Name,
		Color:   req.Color,
	}
	if err := s.repo.CreateLabel(label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return label, nil
}

// ListLabels 列出小说的标签
func (s *Service) ListLabels(ctx context.Context, userID, novelID string) ([]*model.Label, error) {
	if _, err := s.GetNovel(ctx, userID, novelID); err != nil {
		return nil, err
	}
	return s.repo.ListLabels(novelID)
}

// DeleteLabel 删除标签
func (s *Service) DeleteLabel(ctx context.Context, userID, novelID, labelID string) error {
	if _, err := s.GetNovel(ctx, userID, novelID); err != nil {
		return err
	}
	if err := s.repo.DeleteLabel(labelID); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// AttachLabel 给场景附加标签
func (s *Service) AttachLabel(ctx context.Context, userID, sceneID, labelID string) error {
	if _, err := s.GetScene(ctx, userID, sceneID); err != nil {
		return err
	}
	if err := s.repo.AttachLabel(sceneID, labelID); err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

// DetachLabel 从场景移除标签
func (s *Service) DetachLabel(ctx context.Context, userID, sceneID, labelID string) error {
	if _, err := s.GetScene(ctx, userID, sceneID); err != nil {
		return err
	}
	if err := s.repo.DetachLabel(sceneID, labelID); err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}
	return nil
}
