package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/session"
)

// 订单详情缓存 TTL
const orderCacheTTL = 5 * time.Minute

// OrderService 订单服务
// 订单只读：远端是权威数据源，本地只做离线兜底缓存，登出时清空。
type OrderService struct {
	orderRepo repository.OrderRepository
	session   *session.Store
	remote    OrdersGateway
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, sessionStore *session.Store, remote OrdersGateway) *OrderService {
	return &OrderService{orderRepo: orderRepo, session: sessionStore, remote: remote}
}

// List 当前用户的订单列表
// 正常路径拉远端并刷新本地缓存；远端失败时降级读缓存。
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	identity := s.session.ActiveIdentity()
	if identity.IsGuest() || !s.session.HasValidCredential() {
		return nil, ErrNotAuthenticated
	}
	userID := identity.UserID()

	remoteOrders, err := s.remote.FetchOrders(ctx)
	if err != nil {
		logger.Warnw("orders_fetch_failed", "user_id", userID, "error", err)
		cached, cacheErr := s.orderRepo.ListByUser(userID)
		if cacheErr != nil {
			return nil, err
		}
		return cached, nil
	}

	orders := make([]models.Order, 0, len(remoteOrders))
	for _, remoteOrder := range remoteOrders {
		// 远端按账号返回，仍按用户 ID 过滤一道防串号
		if remoteOrder.User.String() != "" && remoteOrder.User.String() != userID {
			continue
		}
		orders = append(orders, remoteOrderToModel(remoteOrder, userID))
	}
	if err := s.orderRepo.ReplaceForUser(userID, orders); err != nil {
		logger.Warnw("orders_cache_replace_failed", "user_id", userID, "error", err)
	}
	return orders, nil
}

// Get 订单详情（Redis → 本地缓存 → 远端）
func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	identity := s.session.ActiveIdentity()
	if identity.IsGuest() || !s.session.HasValidCredential() {
		return nil, ErrNotAuthenticated
	}
	userID := identity.UserID()
	cacheKey := fmt.Sprintf("order:%s:%s", userID, orderID)

	if cache.Enabled() {
		var cached models.Order
		found, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("order_cache_read_failed", "order_id", orderID, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	if local, err := s.orderRepo.GetByRemoteID(orderID); err == nil && local != nil && local.UserID == userID {
		return local, nil
	}

	remoteOrder, err := s.remote.FetchOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	order := remoteOrderToModel(*remoteOrder, userID)
	if err := s.orderRepo.Upsert(&order); err != nil {
		logger.Warnw("order_cache_upsert_failed", "order_id", orderID, "error", err)
	}
	if cache.Enabled() {
		if err := cache.SetJSON(ctx, cacheKey, order, orderCacheTTL); err != nil {
			logger.Warnw("order_cache_write_failed", "order_id", orderID, "error", err)
		}
	}
	return &order, nil
}

// ClearCache 清空当前用户的订单缓存（登出路径）
func (s *OrderService) ClearCache(userID string) error {
	return s.orderRepo.ClearByUser(userID)
}

// remoteOrderToModel 远端订单转本地缓存行
func remoteOrderToModel(remote gateway.Order, userID string) models.Order {
	items := make([]models.OrderItem, 0, len(remote.Items))
	for _, remoteItem := range remote.Items {
		items = append(items, models.OrderItem{
			RemoteID:  remoteItem.ID.String(),
			ProductID: remoteItem.Product.ID.String(),
			Name:      remoteItem.Product.Name,
			Quantity:  int(remoteItem.Quantity),
			Price:     remoteItem.Price,
			Total:     remoteItem.Total,
		})
	}
	return models.Order{
		RemoteID:     remote.ID.String(),
		UserID:       userID,
		Status:       remote.Status,
		Total:        remote.Total,
		CheckedOutAt: remote.CheckedOutAt.Time,
		CreatedAt:    remote.CreatedAt.Time,
		UpdatedAt:    remote.UpdatedAt.Time,
		Items:        items,
	}
}
