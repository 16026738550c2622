package service

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ZulfikarHD/inkwell/internal/config"
	"github.com/ZulfikarHD/inkwell/internal/llm"
	"github.com/ZulfikarHD/inkwell/internal/repository"
	"github.com/ZulfikarHD/inkwell/internal/secret"
	"github.com/ZulfikarHD/inkwell/internal/service/auth"
	"github.com/ZulfikarHD/inkwell/internal/service/chat"
	"github.com/ZulfikarHD/inkwell/internal/service/codex"
	"github.com/ZulfikarHD/inkwell/internal/service/connection"
	"github.com/ZulfikarHD/inkwell/internal/service/notify"
	"github.com/ZulfikarHD/inkwell/internal/service/novel"
	"github.com/ZulfikarHD/inkwell/internal/service/prompt"
)

// Services 服务集合
type Services struct {
	Auth       *auth.Service
	Novel      *novel.Service
	Codex      *codex.Service
	Prompt     *prompt.Service
	Connection *connection.Service
	Chat       *chat.Service

	Config *config.Config
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	cipher, err := secret.NewCipher(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	auth.SetJWTSecret(cfg.Security.JWTSecret)

	notifier := notify.NewNotifier(redisClient)
	client := llm.NewClient()
	connectionSvc := connection.NewService(repo.Connection, cipher)

	return &Services{
		Auth:       auth.NewService(repo.Auth),
		Novel:      novel.NewService(repo.Novel),
		Codex:      codex.NewService(repo.Codex, repo.Novel),
		Prompt:     prompt.NewService(repo.Prompt),
		Connection: connectionSvc,
		Chat:       chat.NewService(repo.Chat, repo.Novel, repo.Codex, connectionSvc, client, notifier),
		Config:     cfg,
	}, nil
}
