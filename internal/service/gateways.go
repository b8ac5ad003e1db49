package service

import (
	"context"

	"github.com/storefront-next/internal/gateway"
)

// CartGateway 远端购物车接口
type CartGateway interface {
	FetchCart(ctx context.Context) ([]gateway.CartLine, error)
	AddCartItem(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, serverItemID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, serverItemID string) error
	ClearCart(ctx context.Context, cartID string) error
}

// FavoritesGateway 远端收藏接口
type FavoritesGateway interface {
	FetchFavorites(ctx context.Context) ([]gateway.Product, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
}

// AuthGateway 远端认证接口
type AuthGateway interface {
	Login(ctx context.Context, input gateway.LoginInput) (*gateway.TokenPair, error)
	Register(ctx context.Context, input gateway.RegisterInput) (*gateway.TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (*gateway.TokenPair, error)
	FetchCurrentUser(ctx context.Context) (*gateway.RemoteUser, error)
}

// OrdersGateway 远端订单接口
type OrdersGateway interface {
	FetchOrders(ctx context.Context) ([]gateway.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error)
}
