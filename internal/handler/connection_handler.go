package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/llm"
	"github.com/ZulfikarHD/inkwell/internal/service"
	"github.com/ZulfikarHD/inkwell/internal/service/connection"
)

// ConnectionHandler 模型连接处理器
type ConnectionHandler struct {
	svc *service.Services
}

// NewConnectionHandler 创建模型连接处理器
func NewConnectionHandler(svc *service.Services) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

// ListProviders 列出支持的提供方
func (h *ConnectionHandler) ListProviders(c *gin.Context) {
	success(c, gin.H{"providers": llm.ProviderNames()})
}

// CreateConnection 创建连接
func (h *ConnectionHandler) CreateConnection(c *gin.Context) {
	var req connection.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conn, err := h.svc.Connection.Create(c.Request.Context(), getUserID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, conn)
}

// GetConnection 获取连接
func (h *ConnectionHandler) GetConnection(c *gin.Context) {
	conn, err := h.svc.Connection.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, conn)
}

// ListConnections 列出连接
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	conns, err := h.svc.Connection.List(c.Request.Context(), getUserID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": conns})
}

// UpdateConnection 更新连接
func (h *ConnectionHandler) UpdateConnection(c *gin.Context) {
	var req connection.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conn, err := h.svc.Connection.Update(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, conn)
}

// DeleteConnection 删除连接
func (h *ConnectionHandler) DeleteConnection(c *gin.Context) {
	if err := h.svc.Connection.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}

// SetDefaultConnection 设为默认连接
func (h *ConnectionHandler) SetDefaultConnection(c *gin.Context) {
	if err := h.svc.Connection.SetDefault(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"message": "default connection updated"})
}
