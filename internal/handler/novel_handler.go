package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/service"
	"github.com/ZulfikarHD/inkwell/internal/service/novel"
)

// NovelHandler 小说处理器
type NovelHandler struct {
	svc *service.Services
}

// NewNovelHandler 创建小说处理器
func NewNovelHandler(svc *service.Services) *NovelHandler {
	return &NovelHandler{svc: svc}
}

// CreateNovel 创建小说
func (h *NovelHandler) CreateNovel(c *gin.Context) {
	var req novel.NovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	n, err := h.svc.Novel.CreateNovel(c.Request.Context(), getUserID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, n)
}

// GetNovel 获取小说
func (h *NovelHandler) GetNovel(c *gin.Context) {
	n, err := h.svc.Novel.GetNovel(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, n)
}

// ListNovels 列出小说
func (h *NovelHandler) ListNovels(c *gin.Context) {
	page, size := getPagination(c)

	novels, err := h.svc.Novel.ListNovels(c.Request.Context(), getUserID(c), page, size)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": novels, "page": page, "size": size})
}

// UpdateNovel 更新小说
func (h *NovelHandler) UpdateNovel(c *gin.Context) {
	var req novel.NovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	n, err := h.svc.Novel.UpdateNovel(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, n)
}

// DeleteNovel 删除小说
func (h *NovelHandler) DeleteNovel(c *gin.Context) {
	if err := h.svc.Novel.DeleteNovel(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}

// ========== 场景 ==========

// CreateScene 创建场景
func (h *NovelHandler) CreateScene(c *gin.Context) {
	var req novel.SceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	scene, err := h.svc.Novel.CreateScene(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, scene)
}

// GetScene 获取场景
func (h *NovelHandler) GetScene(c *gin.Context) {
	scene, err := h.svc.Novel.GetScene(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, scene)
}

// ListScenes 列出场景
func (h *NovelHandler) ListScenes(c *gin.Context) {
	scenes, err := h.svc.Novel.ListScenes(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": scenes})
}

// UpdateScene 更新场景
func (h *NovelHandler) UpdateScene(c *gin.Context) {
	var req novel.SceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	scene, err := h.svc.Novel.UpdateScene(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, scene)
}

// DeleteScene 删除场景
func (h *NovelHandler) DeleteScene(c *gin.Context) {
	if err := h.svc.Novel.DeleteScene(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}

// ========== 标签 ==========

// CreateLabel 创建标签
func (h *NovelHandler) CreateLabel(c *gin.Context) {
	var req novel.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	label, err := h.svc.Novel.CreateLabel(c.Request.Context(), getUserID(c), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, label)
}

// ListLabels 列出标签
func (h *NovelHandler) ListLabels(c *gin.Context) {
	labels, err := h.svc.Novel.ListLabels(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"items": labels})
}

// DeleteLabel 删除标签
func (h *NovelHandler) DeleteLabel(c *gin.Context) {
	if err := h.svc.Novel.DeleteLabel(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("label_id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}

// AttachLabel 给场景附加标签
func (h *NovelHandler) AttachLabel(c *gin.Context) {
	if err := h.svc.Novel.AttachLabel(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("label_id")); err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"message": "label attached"})
}

// DetachLabel 从场景移除标签
func (h *NovelHandler) DetachLabel(c *gin.Context) {
	if err := h.svc.Novel.DetachLabel(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("label_id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(204)
}
