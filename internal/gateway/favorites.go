package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// FetchFavorites 拉取服务端收藏列表
func (c *Client) FetchFavorites(ctx context.Context) ([]Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/favorites", nil, true)
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := decodeData(body, &products); err != nil {
		return nil, err
	}
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// AddFavorite 收藏商品（服务端幂等）
func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: missing product id", ErrRequestFailed)
	}
	_, err := c.do(ctx, http.MethodPost, "/favorites", map[string]string{"product": productID}, true)
	return err
}

// RemoveFavorite 取消收藏
func (c *Client) RemoveFavorite(ctx context.Context, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: missing product id", ErrRequestFailed)
	}
	_, err := c.do(ctx, http.MethodDelete, "/favorites/"+productID, nil, true)
	return err
}
