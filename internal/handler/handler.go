package handler

import (
	"github.com/ZulfikarHD/inkwell/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Novel      *NovelHandler
	Codex      *CodexHandler
	Prompt     *PromptHandler
	Connection *ConnectionHandler
	Chat       *ChatHandler
	System     *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc),
		Novel:      NewNovelHandler(svc),
		Codex:      NewCodexHandler(svc),
		Prompt:     NewPromptHandler(svc),
		Connection: NewConnectionHandler(svc),
		Chat:       NewChatHandler(svc),
		System:     NewSystemHandler(svc),
	}
}
