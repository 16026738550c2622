// Package chat 实现对话管理与聊天编排
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/llm"
	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/repository"
	"github.com/ZulfikarHD/inkwell/internal/service/connection"
	"github.com/ZulfikarHD/inkwell/internal/service/notify"
)

// Service 聊天服务
type Service struct {
	repo        repository.ChatRepository
	novels      repository.NovelRepository
	codex       repository.CodexRepository
	connections *connection.Service
	client      *llm.Client
	notifier    *notify.Notifier

	// 同一会话的 send/regenerate 必须串行，否则
	// "最近一条 assistant 消息" 的读写会竞争
	locks sync.Map // conversationID → *sync.Mutex
}

// NewService 创建聊天服务
func NewService(
	repo repository.ChatRepository,
	novels repository.NovelRepository,
	codex repository.CodexRepository,
	connections *connection.Service,
	client *llm.Client,
	notifier *notify.Notifier,
) *Service {
	return &Service{
		repo:        repo,
		novels:      novels,
		codex:       codex,
		connections: connections,
		client:      client,
		notifier:    notifier,
	}
}

// CreateConversationRequest 创建会话请求
type CreateConversationRequest struct {
	NovelID      string  `json:"novel_id" binding:"required"`
	Title        string  `json:"title"`
	ModelName    string  `json:"model_name"`
	SceneID      *string `json:"scene_id"`
	ConnectionID *string `json:"connection_id"`
}

// UpdateConversationRequest 更新会话请求（重命名、归档、固定模型/连接）
type UpdateConversationRequest struct {
	Title        string  `json:"title"`
	ModelName    *string `json:"model_name"`
	SceneID      *string `json:"scene_id"`
	ConnectionID *string `json:"connection_id"`
	IsArchived   *bool   `json:"is_archived"`
}

// CreateConversation 创建会话
func (s *Service) CreateConversation(ctx context.Context, userID string, req *CreateConversationRequest) (*model.Conversation, error) {
	conv := &model.Conversation{
		ID:           uuid.New().String(),
		UserID:       userID,
		NovelID:      req.NovelID,
		Title:        req.Title,
		ModelName:    req.ModelName,
		SceneID:      req.SceneID,
		ConnectionID: req.ConnectionID,
	}

	if err := s.repo.CreateConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation 获取会话
func (s *Service) GetConversation(ctx context.Context, userID, id string) (*model.Conversation, error) {
	return s.ownedConversation(userID, id)
}

// ListConversationsRequest 列出会话请求
type ListConversationsRequest struct {
	NovelID         string `json:"novel_id"`
	IncludeArchived bool   `json:"include_archived"`
	Page            int    `json:"page"`
	Size            int    `json:"size"`
}

// ListConversations 列出会话
func (s *Service) ListConversations(ctx context.Context, userID string, req *ListConversationsRequest) ([]*model.Conversation, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 100 {
		req.Size = 20
	}
	offset := (req.Page - 1) * req.Size

	convs, err := s.repo.ListConversations(userID, req.NovelID, req.IncludeArchived, offset, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// UpdateConversation 更新会话
func (s *Service) UpdateConversation(ctx context.Context, userID, id string, req *UpdateConversationRequest) (*model.Conversation, error) {
	conv, err := s.ownedConversation(userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		conv.Title = req.Title
	}
	if req.ModelName != nil {
		conv.ModelName = *req.ModelName
	}
	if req.SceneID != nil {
		conv.SceneID = req.SceneID
	}
	if req.ConnectionID != nil {
		conv.ConnectionID = req.ConnectionID
	}
	if req.IsArchived != nil {
		conv.IsArchived = *req.IsArchived
	}

	if err := s.repo.UpdateConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return conv, nil
}

// DeleteConversation 删除会话
func (s *Service) DeleteConversation(ctx context.Context, userID, id string) error {
	if _, err := s.ownedConversation(userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// ListTurns 按创建顺序列出会话消息
func (s *Service) ListTurns(ctx context.Context, userID, conversationID string) ([]*model.Turn, error) {
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListTurns(conversationID)
}

// ownedConversation 获取会话并校验归属
func (s *Service) ownedConversation(userID, id string) (*model.Conversation, error) {
	conv, err := s.repo.GetConversationByID(id)
	if err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if conv.UserID != userID {
		return nil, fmt.Errorf("conversation not found")
	}
	return conv, nil
}

// acquire 获取会话级互斥锁，已有生成在进行时返回 false
func (s *Service) acquire(conversationID string) (func(), bool) {
	v, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}
