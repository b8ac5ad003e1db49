package ui

import (
	"time"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// FavoriteAddRequest 收藏请求
type FavoriteAddRequest struct {
	Product models.Product `json:"product" binding:"required"`
}

// FavoriteView 收藏项响应
type FavoriteView struct {
	ProductID string          `json:"product_id"`
	AddedAt   time.Time       `json:"added_at"`
	Product   *models.Product `json:"product,omitempty"`
}

// GetFavorites 获取收藏列表
func (h *Handler) GetFavorites(c *gin.Context) {
	items, err := h.FavoriteService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read favorites", err)
		return
	}
	views := make([]FavoriteView, 0, len(items))
	for _, item := range items {
		views = append(views, FavoriteView{
			ProductID: item.ProductID,
			AddedAt:   item.AddedAt,
			Product:   item.Product,
		})
	}
	response.Success(c, gin.H{"items": views, "count": len(views)})
}

// GetFavoriteCount 收藏数量（角标用）
func (h *Handler) GetFavoriteCount(c *gin.Context) {
	response.Success(c, gin.H{"count": h.FavoriteService.Count()})
}

// GetFavoriteStatus 商品是否已收藏
func (h *Handler) GetFavoriteStatus(c *gin.Context) {
	productID := c.Param("product_id")
	response.Success(c, gin.H{"favorite": h.FavoriteService.IsFavorite(productID)})
}

// AddFavorite 收藏商品
func (h *Handler) AddFavorite(c *gin.Context) {
	var req FavoriteAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := h.FavoriteService.Add(c.Request.Context(), req.Product); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "failed to add favorite")
		return
	}
	h.GetFavorites(c)
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	productID := c.Param("product_id")
	if err := h.FavoriteService.Remove(c.Request.Context(), productID); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "failed to remove favorite")
		return
	}
	h.GetFavorites(c)
}

// RefreshFavorites 整表回拉服务端收藏
func (h *Handler) RefreshFavorites(c *gin.Context) {
	if err := h.FavoriteService.Refresh(c.Request.Context()); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeBadGateway, "failed to refresh favorites")
		return
	}
	h.GetFavorites(c)
}
