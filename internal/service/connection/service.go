// Package connection 管理模型服务连接并实现连接解析
package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ZulfikarHD/inkwell/internal/llm"
	"github.com/ZulfikarHD/inkwell/internal/model"
	"github.com/ZulfikarHD/inkwell/internal/repository"
	"github.com/ZulfikarHD/inkwell/internal/secret"
)

// Service 连接服务
type Service struct {
	repo   repository.ConnectionRepository
	cipher *secret.Cipher
}

// NewService 创建连接服务
func NewService(repo repository.ConnectionRepository, cipher *secret.Cipher) *Service {
	return &Service{repo: repo, cipher: cipher}
}

// CreateConnectionRequest 创建连接请求
type CreateConnectionRequest struct {
	Provider  string `json:"provider" binding:"required"`
	Name      string `json:"name"`
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
	IsDefault bool   `json:"is_default"`
}

// UpdateConnectionRequest 更新连接请求
type UpdateConnectionRequest struct {
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	IsActive *bool  `json:"is_active"`
}

// Create 创建连接，API Key 加密后存储
func (s *Service) Create(ctx context.Context, userID string, req *CreateConnectionRequest) (*model.Connection, error) {
	if _, ok := llm.Lookup(req.Provider); !ok {
		return nil, fmt.Errorf("unsupported provider: %s", req.Provider)
	}

	encrypted, err := s.cipher.Encrypt(req.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api key: %w", err)
	}

	conn := &model.Connection{
		ID:              uuid.New().String(),
		UserID:          userID,
		Provider:        req.Provider,
		Name:            req.Name,
		APIKeyEncrypted: encrypted,
		BaseURL:         req.BaseURL,
		IsActive:        true,
	}
	if conn.Name == "" {
		conn.Name = req.Provider
	}

	if err := s.repo.Create(conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	if req.IsDefault {
		if err := s.repo.SetDefault(userID, conn.ID); err != nil {
			return nil, fmt.Errorf("failed to set default connection: %w", err)
		}
		conn.IsDefault = true
	}

	return conn, nil
}

// List 列出用户的连接
func (s *Service) List(ctx context.Context, userID string) ([]*model.Connection, error) {
	return s.repo.ListByUser(userID)
}

// Get 获取连接，校验归属
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Connection, error) {
	conn, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("connection not found: %w", err)
	}
	if conn.UserID != userID {
		return nil, errors.New("connection not found")
	}
	return conn, nil
}

// Update 更新连接
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateConnectionRequest) (*model.Connection, error) {
	conn, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		conn.Name = req.Name
	}
	if req.BaseURL != "" {
		conn.BaseURL = req.BaseURL
	}
	if req.APIKey != "" {
		encrypted, err := s.cipher.Encrypt(req.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt api key: %w", err)
		}
		conn.APIKeyEncrypted = encrypted
	}
	if req.IsActive != nil {
		conn.IsActive = *req.IsActive
	}

	if err := s.repo.Update(conn); err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	return conn, nil
}

// Delete 删除连接
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

// SetDefault 设为默认连接
func (s *Service) SetDefault(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.SetDefault(userID, id); err != nil {
		return fmt.Errorf("failed to set default connection: %w", err)
	}
	return nil
}

// APIKey 解密连接存储的凭证
func (s *Service) APIKey(conn *model.Connection) (string, error) {
	return s.cipher.Decrypt(conn.APIKeyEncrypted)
}

// Resolve 解析某次请求应使用的连接
// 优先级：显式指定 → 会话固定 → 用户默认 → 用户第一个活跃连接
// 没有可用连接时返回 (nil, nil)，由调用方转成面向用户的错误
func (s *Service) Resolve(ctx context.Context, conv *model.Conversation, explicitID, userID string) (*model.Connection, error) {
	if explicitID != "" {
		conn, err := s.repo.GetByID(explicitID)
		if err == nil && conn.UserID == userID && conn.IsActive {
			return conn, nil
		}
	}

	if conv.ConnectionID != nil && *conv.ConnectionID != "" {
		conn, err := s.repo.GetByID(*conv.ConnectionID)
		if err == nil && conn.IsActive {
			return conn, nil
		}
	}

	conn, err := s.repo.GetDefaultByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up default connection: %w", err)
	}
	if conn != nil {
		return conn, nil
	}

	active, err := s.repo.ListActiveByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	if len(active) > 0 {
		return active[0], nil
	}

	return nil, nil
}
