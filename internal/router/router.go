package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/handler"
	"github.com/ZulfikarHD/inkwell/internal/middleware"
	"github.com/ZulfikarHD/inkwell/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", h.System.Health)

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(svc))
	{
		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.GET("/validate", h.Auth.ValidateToken)
			authGroup.POST("/refresh", h.Auth.RefreshToken)
			authGroup.GET("/me", middleware.RequireAuth(svc), h.Auth.Me)
			authGroup.POST("/password", middleware.RequireAuth(svc), h.Auth.ChangePassword)
		}

		// Novel 小说与场景
		novels := v1.Group("/novels")
		{
			novels.POST("", h.Novel.CreateNovel)
			novels.GET("", h.Novel.ListNovels)
			novels.GET("/:id", h.Novel.GetNovel)
			novels.PUT("/:id", h.Novel.UpdateNovel)
			novels.DELETE("/:id", h.Novel.DeleteNovel)
			novels.POST("/:id/scenes", h.Novel.CreateScene)
			novels.GET("/:id/scenes", h.Novel.ListScenes)
			novels.POST("/:id/labels", h.Novel.CreateLabel)
			novels.GET("/:id/labels", h.Novel.ListLabels)
			novels.DELETE("/:id/labels/:label_id", h.Novel.DeleteLabel)
			novels.POST("/:id/codex", h.Codex.CreateEntry)
			novels.GET("/:id/codex", h.Codex.ListEntries)
		}

		// Scene 场景
		scenes := v1.Group("/scenes")
		{
			scenes.GET("/:id", h.Novel.GetScene)
			scenes.PUT("/:id", h.Novel.UpdateScene)
			scenes.DELETE("/:id", h.Novel.DeleteScene)
			scenes.POST("/:id/labels/:label_id", h.Novel.AttachLabel)
			scenes.DELETE("/:id/labels/:label_id", h.Novel.DetachLabel)
		}

		// Codex 设定集条目
		codexGroup := v1.Group("/codex")
		{
			codexGroup.GET("/:id", h.Codex.GetEntry)
			codexGroup.PUT("/:id", h.Codex.UpdateEntry)
			codexGroup.DELETE("/:id", h.Codex.DeleteEntry)
		}

		// Prompt 提示词模板
		prompts := v1.Group("/prompts")
		{
			prompts.POST("", h.Prompt.CreateTemplate)
			prompts.GET("", h.Prompt.ListTemplates)
			prompts.GET("/shared", h.Prompt.ListSharedTemplates)
			prompts.GET("/:id", h.Prompt.GetTemplate)
			prompts.PUT("/:id", h.Prompt.UpdateTemplate)
			prompts.DELETE("/:id", h.Prompt.DeleteTemplate)
		}

		// Connection 模型连接
		connections := v1.Group("/connections")
		{
			connections.GET("/providers", h.Connection.ListProviders)
			connections.POST("", h.Connection.CreateConnection)
			connections.GET("", h.Connection.ListConnections)
			connections.GET("/:id", h.Connection.GetConnection)
			connections.PUT("/:id", h.Connection.UpdateConnection)
			connections.DELETE("/:id", h.Connection.DeleteConnection)
			connections.POST("/:id/default", h.Connection.SetDefaultConnection)
		}

		// Conversation 会话
		conversations := v1.Group("/conversations")
		{
			conversations.POST("", h.Chat.CreateConversation)
			conversations.GET("", h.Chat.ListConversations)
			conversations.GET("/:id", h.Chat.GetConversation)
			conversations.PUT("/:id", h.Chat.UpdateConversation)
			conversations.DELETE("/:id", h.Chat.DeleteConversation)
			conversations.GET("/:id/turns", h.Chat.ListTurns)

			conversations.POST("/:id/context", h.Chat.AddContextItem)
			conversations.GET("/:id/context", h.Chat.ListContextItems)
			conversations.POST("/:id/context/:item_id/toggle", h.Chat.ToggleContextItem)
			conversations.DELETE("/:id/context/:item_id", h.Chat.RemoveContextItem)
			conversations.GET("/:id/context/budget", h.Chat.ContextBudget)

			conversations.POST("/:id/send", h.Chat.Send)
			conversations.POST("/:id/regenerate", h.Chat.Regenerate)
		}
	}

	return r
}
