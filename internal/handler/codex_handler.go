package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/service"
	"github.com/ZulfikarHD/inkwell/internal/service/codex"
)

// CodexHandler 设定集处理器
type CodexHandler struct {
	svc *service.Services
}

// NewCodexHandler 创建设定集处理器
func NewCodexHandler(svc *service.Services) *CodexHandler {
	return &CodexHandler{svc: svc}
}

// CreateEntry 创建条目
func (h *CodexHandler) CreateEntry(c *gin.Context) {
	var req codex.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Codex.Create(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, entry)
}

// GetEntry 获取条目
func (h *CodexHandler) GetEntry(c *gin.Context) {
	entry, err := h.svc.Codex.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, entry)
}

// ListEntries 列出条目，支持按类型筛选
func (h *CodexHandler) ListEntries(c *gin.Context) {
	entries, err := h.svc.Codex.List(c.Request.Context(), getUserID(c), c.Param("id"), c.Query("type"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": entries})
}

// UpdateEntry 更新条目
func (h *CodexHandler) UpdateEntry(c *gin.Context) {
	var req codex.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Codex.Update(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, entry)
}

// DeleteEntry 删除条目
func (h *CodexHandler) DeleteEntry(c *gin.Context) {
	if err := h.svc.Codex.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}
