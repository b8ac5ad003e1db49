package ui

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// CartAddRequest 加购请求
// UI 负责携带商品页的完整快照，代理端不反查商品目录。
type CartAddRequest struct {
	Product  models.Product `json:"product" binding:"required"`
	Quantity int            `json:"quantity"`
}

// CartQuantityRequest 数量变更请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineView 购物车行响应
type CartLineView struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	Subtotal  models.Money    `json:"subtotal"`
	Product   *models.Product `json:"product,omitempty"`
}

// CartView 购物车响应
type CartView struct {
	Lines     []CartLineView `json:"lines"`
	ItemCount int            `json:"item_count"`
	Subtotal  models.Money   `json:"subtotal"`
	Updating  bool           `json:"updating"`
	Loading   bool           `json:"loading"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	lines, err := h.CartService.Lines()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read cart", err)
		return
	}
	response.Success(c, h.buildCartView(lines))
}

// GetCartCount 获取购物车商品总数（角标轮询）
func (h *Handler) GetCartCount(c *gin.Context) {
	response.Success(c, gin.H{"count": h.CartService.ItemCount()})
}

// AddCartItem 加购
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := h.CartService.AddToCart(c.Request.Context(), req.Product, req.Quantity); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "failed to add item to cart")
		return
	}
	h.respondCart(c)
}

// UpdateCartItem 设置商品数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID := c.Param("product_id")
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := h.CartService.UpdateQuantity(c.Request.Context(), productID, req.Quantity); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "failed to update cart item")
		return
	}
	h.respondCart(c)
}

// RemoveCartItem 移除商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID := c.Param("product_id")
	if err := h.CartService.Remove(c.Request.Context(), productID); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "failed to remove cart item")
		return
	}
	h.respondCart(c)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.CartService.Clear(c.Request.Context()); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "failed to clear cart")
		return
	}
	h.respondCart(c)
}

// RefreshCart 整车回拉服务端购物车
func (h *Handler) RefreshCart(c *gin.Context) {
	if err := h.CartService.Refresh(c.Request.Context()); err != nil {
		respondWithMappedError(c, err, storeCommonErrorRules, response.CodeBadGateway, "failed to refresh cart")
		return
	}
	h.respondCart(c)
}

func (h *Handler) respondCart(c *gin.Context) {
	lines, err := h.CartService.Lines()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read cart", err)
		return
	}
	response.Success(c, h.buildCartView(lines))
}

func (h *Handler) buildCartView(lines []models.CartLine) CartView {
	view := CartView{
		Lines:    make([]CartLineView, 0, len(lines)),
		Updating: h.CartService.IsUpdating(),
		Loading:  h.CartService.IsLoading(),
	}
	for _, line := range lines {
		subtotal := line.Subtotal()
		view.Lines = append(view.Lines, CartLineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
			Product:   line.Product,
		})
		view.ItemCount += line.Quantity
		view.Subtotal = view.Subtotal.AddMoney(subtotal)
	}
	return view
}
