package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/storefront-next/internal/models"
)

// Timestamp 远端时间字段（容忍空串与 null）
type Timestamp struct {
	time.Time
}

// UnmarshalJSON 解析 RFC3339 时间，空值视为零值
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	return t.Time.UnmarshalJSON(b)
}

// OrderItem 远端订单项
type OrderItem struct {
	ID       RemoteID     `json:"id"`
	Product  Product      `json:"product"`
	Quantity Quantity     `json:"quantity"`
	Price    models.Money `json:"price"`
	Total    models.Money `json:"total"`
}

// Order 远端订单对象
type Order struct {
	ID           RemoteID     `json:"id"`
	User         RemoteID     `json:"user"`
	Status       string       `json:"status"`
	Total        models.Money `json:"total"`
	Items        []OrderItem  `json:"items"`
	CheckedOutAt Timestamp    `json:"checked_out_at"`
	CreatedAt    Timestamp    `json:"created_at"`
	UpdatedAt    Timestamp    `json:"updated_at"`
}

// Validate 校验订单对象
func (o *Order) Validate() error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("%w: order missing id", ErrResponseInvalid)
	}
	return nil
}

// FetchOrders 拉取当前用户可见的订单列表
func (c *Client) FetchOrders(ctx context.Context) ([]Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders", nil, true)
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := decodeData(body, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := orders[i].Validate(); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// FetchOrder 拉取单个订单
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrRequestFailed)
	}
	body, err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, true)
	if err != nil {
		return nil, err
	}
	var order Order
	if err := decodeData(body, &order); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return &order, nil
}
