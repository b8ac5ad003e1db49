package ui

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOrders 订单列表
func (h *Handler) GetOrders(c *gin.Context) {
	orders, err := h.OrderService.List(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeBadGateway, "failed to fetch orders")
		return
	}
	response.Success(c, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		respondWithMappedError(c, err, authErrorRules, response.CodeBadGateway, "failed to fetch order")
		return
	}
	response.Success(c, order)
}
