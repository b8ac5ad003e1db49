package ui

import (
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SessionView 会话状态响应
type SessionView struct {
	Identity      string `json:"identity"`
	Authenticated bool   `json:"authenticated"`
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password required")
		return
	}
	user, err := h.AuthService.Login(c.Request.Context(), gateway.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "login failed")
		return
	}
	response.Success(c, user)
}

// Register 注册并自动登录
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email, username and password required")
		return
	}
	user, err := h.AuthService.Register(c.Request.Context(), gateway.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "registration failed")
		return
	}
	response.Success(c, user)
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	if err := h.AuthService.Logout(); err != nil {
		respondError(c, response.CodeInternal, "logout failed", err)
		return
	}
	response.SuccessWithMsg(c, "logged out", nil)
}

// RefreshSession 刷新访问令牌
func (h *Handler) RefreshSession(c *gin.Context) {
	if err := h.AuthService.RefreshSession(c.Request.Context()); err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeUnauthorized, "failed to refresh session")
		return
	}
	response.SuccessWithMsg(c, "session refreshed", nil)
}

// GetCurrentUser 当前登录用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.AuthService.CurrentUser(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "failed to fetch user")
		return
	}
	response.Success(c, user)
}

// GetSession 会话状态（UI 启动时读取）
func (h *Handler) GetSession(c *gin.Context) {
	response.Success(c, SessionView{
		Identity:      h.AuthService.ActiveIdentity().Key(),
		Authenticated: h.AuthService.IsAuthenticated(),
	})
}
