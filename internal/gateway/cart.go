package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// Product 远端商品对象
type Product struct {
	ID            RemoteID     `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Price         models.Money `json:"price"`
	DiscountPrice models.Money `json:"discount_price"`
	ImageURL      string       `json:"image_url"`
	Brand         string       `json:"brand"`
	CategoryID    RemoteID     `json:"category"`
	Stock         int          `json:"stock"`
	IsAvailable   bool         `json:"is_available"`
}

// Validate 校验商品对象
func (p *Product) Validate() error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: product missing id", ErrResponseInvalid)
	}
	return nil
}

// CartLine 远端购物车行
// ID 是服务端分配的购物车行 ID，与商品 ID 无关；携带完整商品对象，
// 客户端无需二次请求即可渲染。
type CartLine struct {
	ID       RemoteID     `json:"id"`
	Product  Product      `json:"product"`
	Quantity Quantity     `json:"quantity"`
	Price    models.Money `json:"price"`
	CartID   RemoteID     `json:"cart"`
}

// Validate 校验购物车行
func (l *CartLine) Validate() error {
	if l == nil || l.ID == "" {
		return fmt.Errorf("%w: cart line missing id", ErrResponseInvalid)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: cart line %s has quantity %d", ErrResponseInvalid, l.ID, l.Quantity)
	}
	return l.Product.Validate()
}

type cartItemPayload struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// FetchCart 拉取服务端购物车
func (c *Client) FetchCart(ctx context.Context) ([]CartLine, error) {
	body, err := c.do(ctx, http.MethodGet, "/cart/cartitems/", nil, true)
	if err != nil {
		return nil, err
	}
	var lines []CartLine
	if err := decodeData(body, &lines); err != nil {
		return nil, err
	}
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// AddCartItem 新增或累加服务端购物车行
// 服务端响应只含受影响的行，不反映整车状态；调用方必须把服务端当作
// 唯一事实来源，通过 FetchCart 重新拉取，而不是信任这里的部分响应。
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) error {
	if productID == "" || quantity < 1 {
		return fmt.Errorf("%w: invalid add input", ErrRequestFailed)
	}
	_, err := c.do(ctx, http.MethodPost, "/cart/cartitems/", cartItemPayload{Product: productID, Quantity: quantity}, true)
	return err
}

// UpdateCartItem 设置服务端购物车行的绝对数量
// 按服务端行 ID 寻址，不是商品 ID。
func (c *Client) UpdateCartItem(ctx context.Context, serverItemID, productID string, quantity int) error {
	if serverItemID == "" || quantity < 1 {
		return fmt.Errorf("%w: invalid update input", ErrRequestFailed)
	}
	path := fmt.Sprintf("/cart/cartitems/%s/", serverItemID)
	_, err := c.do(ctx, http.MethodPatch, path, cartItemPayload{Product: productID, Quantity: quantity}, true)
	return err
}

// RemoveCartItem 删除服务端购物车行
func (c *Client) RemoveCartItem(ctx context.Context, serverItemID string) error {
	if serverItemID == "" {
		return fmt.Errorf("%w: missing server item id", ErrRequestFailed)
	}
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/cartitems/%s/", serverItemID), nil, true)
	return err
}

// ClearCart 清空服务端购物车
// 优先调用批量清空端点；服务端不支持（405/404）时回退为逐行删除。
// 回退过程中的单行失败只记日志不上抛：结账后的清空是尽力而为的，
// 本地状态无论如何都会被清掉，不能让一次批删故障卡住结账流程。
func (c *Client) ClearCart(ctx context.Context, cartID string) error {
	if cartID != "" {
		_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%s/clear/", cartID), nil, true)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrMethodNotAllowed) && !errors.Is(err, ErrNotFound) {
			return err
		}
		logger.Warnw("cart_bulk_clear_unsupported", "cart_id", cartID, "error", err)
	}

	lines, err := c.FetchCart(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := c.RemoveCartItem(ctx, line.ID.String()); err != nil {
			logger.Warnw("cart_clear_line_failed", "server_item_id", line.ID.String(), "error", err)
		}
	}
	return nil
}
