package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZulfikarHD/inkwell/internal/middleware"
	"github.com/ZulfikarHD/inkwell/internal/service"
	"github.com/ZulfikarHD/inkwell/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	created(c, user.ToUserInfo())
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, resp)
}

// ValidateToken 验证令牌
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		badRequest(c, "Missing or malformed Authorization header")
		return
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	user, err := h.svc.Auth.ValidateToken(c.Request.Context(), token)
	if err != nil {
		badRequest(c, "Invalid or expired token")
		return
	}

	success(c, user.ToUserInfo())
}

// Me 获取当前用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		badRequest(c, "Not authenticated")
		return
	}

	success(c, user.ToUserInfo())
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters")
		return
	}

	accessToken, refreshToken, err := h.svc.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		badRequest(c, "Invalid refresh token")
		return
	}

	success(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	if err := h.svc.Auth.ChangePassword(c.Request.Context(), getUserID(c), req.OldPassword, req.NewPassword); err != nil {
		badRequest(c, err.Error())
		return
	}

	success(c, gin.H{"message": "password changed"})
}
