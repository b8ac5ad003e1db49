package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/session"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeOrdersGateway struct {
	orders []gateway.Order

	listErr error
	getErr  error
}

func (f *fakeOrdersGateway) FetchOrders(ctx context.Context) ([]gateway.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]gateway.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrdersGateway) FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, order := range f.orders {
		if order.ID.String() == orderID {
			o := order
			return &o, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func remoteOrder(id, userID, status string) gateway.Order {
	return gateway.Order{
		ID:     gateway.RemoteID(id),
		User:   gateway.RemoteID(userID),
		Status: status,
		Total:  mustMoney("19.80"),
		Items: []gateway.OrderItem{{
			ID:       gateway.RemoteID(id + "-item"),
			Product:  remoteProduct("p1"),
			Quantity: 2,
			Price:    mustMoney("9.90"),
			Total:    mustMoney("19.80"),
		}},
	}
}

func setupOrderServiceTest(t *testing.T) (*OrderService, *fakeOrdersGateway, *session.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:order_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	sessionStore, err := session.NewStore(repository.NewSettingRepository(db))
	if err != nil {
		t.Fatalf("init session failed: %v", err)
	}
	remote := &fakeOrdersGateway{}
	return NewOrderService(repository.NewOrderRepository(db), sessionStore, remote), remote, sessionStore
}

func TestOrderListRequiresLogin(t *testing.T) {
	svc, _, _ := setupOrderServiceTest(t)

	if _, err := svc.List(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated for guest, got %v", err)
	}
}

func TestOrderListFiltersByUser(t *testing.T) {
	svc, remote, store := setupOrderServiceTest(t)
	ctx := context.Background()
	loginTestSession(t, store, "u1")

	remote.orders = []gateway.Order{
		remoteOrder("o1", "u1", "completed"),
		remoteOrder("o2", "u2", "pending"),
	}

	orders, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].RemoteID != "o1" {
		t.Fatalf("expected only u1 orders, got %+v", orders)
	}
}

func TestOrderListFallsBackToCache(t *testing.T) {
	svc, remote, store := setupOrderServiceTest(t)
	ctx := context.Background()
	loginTestSession(t, store, "u1")

	remote.orders = []gateway.Order{remoteOrder("o1", "u1", "completed")}
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("warm cache failed: %v", err)
	}

	remote.listErr = gateway.ErrRequestFailed
	orders, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("expected cache fallback, got %v", err)
	}
	if len(orders) != 1 || orders[0].RemoteID != "o1" {
		t.Fatalf("expected cached order o1, got %+v", orders)
	}
}

func TestOrderGetNotFound(t *testing.T) {
	svc, _, store := setupOrderServiceTest(t)
	loginTestSession(t, store, "u1")

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderGetCachesLocally(t *testing.T) {
	svc, remote, store := setupOrderServiceTest(t)
	ctx := context.Background()
	loginTestSession(t, store, "u1")

	remote.orders = []gateway.Order{remoteOrder("o1", "u1", "completed")}
	order, err := svc.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.RemoteID != "o1" || len(order.Items) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}

	// 远端不可用时命中本地缓存
	remote.getErr = gateway.ErrRequestFailed
	cached, err := svc.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("expected local cache hit, got %v", err)
	}
	if cached.RemoteID != "o1" {
		t.Fatalf("unexpected cached order: %+v", cached)
	}
}
