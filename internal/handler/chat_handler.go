package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/service"
	"github.com/ZulfikarHD/inkwell/internal/service/chat"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	svc *service.Services
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(svc *service.Services) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// CreateConversation 创建会话
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	var req chat.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conv, err := h.svc.Chat.CreateConversation(c.Request.Context(), getUserID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, conv)
}

// GetConversation 获取会话
func (h *ChatHandler) GetConversation(c *gin.Context) {
	conv, err := h.svc.Chat.GetConversation(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, conv)
}

// ListConversations 列出会话
func (h *ChatHandler) ListConversations(c *gin.Context) {
	page, size := getPagination(c)
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("include_archived", "false"))

	convs, err := h.svc.Chat.ListConversations(c.Request.Context(), getUserID(c), &chat.ListConversationsRequest{
		NovelID:         c.Query("novel_id"),
		IncludeArchived: includeArchived,
		Page:            page,
		Size:            size,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": convs, "page": page, "size": size})
}

// UpdateConversation 更新会话
func (h *ChatHandler) UpdateConversation(c *gin.Context) {
	var req chat.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conv, err := h.svc.Chat.UpdateConversation(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, conv)
}

// DeleteConversation 删除会话
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	if err := h.svc.Chat.DeleteConversation(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}

// ListTurns 获取会话消息
func (h *ChatHandler) ListTurns(c *gin.Context) {
	turns, err := h.svc.Chat.ListTurns(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": turns})
}

// ========== 上下文条目 ==========

// AddContextItem 添加上下文条目
func (h *ChatHandler) AddContextItem(c *gin.Context) {
	var req chat.AddContextItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	item, err := h.svc.Chat.AddContextItem(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, item)
}

// ListContextItems 列出上下文条目
func (h *ChatHandler) ListContextItems(c *gin.Context) {
	items, err := h.svc.Chat.ListContextItems(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": items})
}

// ToggleContextItem 切换上下文条目启用状态
func (h *ChatHandler) ToggleContextItem(c *gin.Context) {
	item, err := h.svc.Chat.ToggleContextItem(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("item_id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, item)
}

// RemoveContextItem 移除上下文条目
func (h *ChatHandler) RemoveContextItem(c *gin.Context) {
	if err := h.svc.Chat.RemoveContextItem(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("item_id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}

// ContextBudget 估算当前上下文的 token 占用
func (h *ChatHandler) ContextBudget(c *gin.Context) {
	check, err := h.svc.Chat.Budget(c.Request.Context(), getUserID(c), c.Param("id"), c.Query("model_name"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, check)
}

// ========== 流式生成 ==========

// Send 发送消息并流式返回助手回复
func (h *ChatHandler) Send(c *gin.Context) {
	var req chat.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	stream := h.svc.Chat.Send(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	h.pump(c, stream)
}

// Regenerate 重新生成最近一条助手回复
// 所有字段均可选，允许不带请求体
func (h *ChatHandler) Regenerate(c *gin.Context) {
	var req chat.RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	stream := h.svc.Chat.Regenerate(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	h.pump(c, stream)
}

// pump 把事件流写成 SSE 响应
func (h *ChatHandler) pump(c *gin.Context, stream *chat.ChatStream) {
	defer stream.Close()

	// 设置 SSE 响应头
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	for {
		ev, err := stream.Recv()
		if err != nil {
			// io.EOF 表示流正常结束；上游错误已作为 error 事件发出
			return
		}

		select {
		case <-c.Request.Context().Done():
			return
		default:
			c.SSEvent("", ev)
			c.Writer.Flush()
		}
	}
}
