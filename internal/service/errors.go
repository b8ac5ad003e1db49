package service

import "errors"

var (
	// ErrCartBusy 已有购物车变更在途，拒绝并发变更
	ErrCartBusy = errors.New("cart mutation already in progress")
	// ErrInvalidQuantity 数量非法（进入网络调用前拦截）
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidProduct 商品引用非法
	ErrInvalidProduct = errors.New("product reference invalid")
	// ErrStaleLine 本地行缺少服务端行 ID，无法寻址远端资源
	ErrStaleLine = errors.New("cart line has no server item id")
	// ErrNotAuthenticated 当前会话未登录
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
)
