package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/service"
	"github.com/ZulfikarHD/inkwell/internal/service/prompt"
)

// PromptHandler 提示词模板处理器
type PromptHandler struct {
	svc *service.Services
}

// NewPromptHandler 创建提示词模板处理器
func NewPromptHandler(svc *service.Services) *PromptHandler {
	return &PromptHandler{svc: svc}
}

// CreateTemplate 创建模板
func (h *PromptHandler) CreateTemplate(c *gin.Context) {
	var req prompt.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tmpl, err := h.svc.Prompt.Create(c.Request.Context(), getUserID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, tmpl)
}

// GetTemplate 获取模板
func (h *PromptHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.svc.Prompt.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, tmpl)
}

// ListTemplates 列出自己的模板
func (h *PromptHandler) ListTemplates(c *gin.Context) {
	page, size := getPagination(c)

	templates, err := h.svc.Prompt.List(c.Request.Context(), getUserID(c), page, size)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": templates, "page": page, "size": size})
}

// ListSharedTemplates 列出共享模板
func (h *PromptHandler) ListSharedTemplates(c *gin.Context) {
	page, size := getPagination(c)

	templates, err := h.svc.Prompt.ListShared(c.Request.Context(), page, size)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": templates, "page": page, "size": size})
}

// UpdateTemplate 更新模板
func (h *PromptHandler) UpdateTemplate(c *gin.Context) {
	var req prompt.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tmpl, err := h.svc.Prompt.Update(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, tmpl)
}

// DeleteTemplate 删除模板
func (h *PromptHandler) DeleteTemplate(c *gin.Context) {
	if err := h.svc.Prompt.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}
