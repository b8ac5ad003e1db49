package ui

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetNotifications 通知列表（新的在前）
func (h *Handler) GetNotifications(c *gin.Context) {
	items := h.NotificationService.List()
	response.Success(c, gin.H{"notifications": items, "count": len(items)})
}

// ClearNotifications 清空通知
func (h *Handler) ClearNotifications(c *gin.Context) {
	h.NotificationService.Clear()
	response.SuccessWithMsg(c, "notifications cleared", nil)
}
