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

// fakeFavoritesGateway 模拟远端收藏列表
type fakeFavoritesGateway struct {
	products []gateway.Product

	fetchErr  error
	addErr    error
	removeErr error

	addCalls    []string
	removeCalls []string
}

func newFakeFavoritesGateway() *fakeFavoritesGateway {
	return &fakeFavoritesGateway{}
}

func (f *fakeFavoritesGateway) FetchFavorites(ctx context.Context) ([]gateway.Product, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]gateway.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeFavoritesGateway) AddFavorite(ctx context.Context, productID string) error {
	f.addCalls = append(f.addCalls, productID)
	if f.addErr != nil {
		return f.addErr
	}
	for _, p := range f.products {
		if p.ID.String() == productID {
			return nil
		}
	}
	f.products = append(f.products, remoteProduct(productID))
	return nil
}

func (f *fakeFavoritesGateway) RemoveFavorite(ctx context.Context, productID string) error {
	f.removeCalls = append(f.removeCalls, productID)
	if f.removeErr != nil {
		return f.removeErr
	}
	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID.String() != productID {
			kept = append(kept, p)
		}
	}
	f.products = kept
	return nil
}

func setupFavoriteServiceTest(t *testing.T) (*FavoriteService, *fakeFavoritesGateway, *session.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:favorite_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}, &models.Product{}, &models.FavoriteItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	sessionStore, err := session.NewStore(repository.NewSettingRepository(db))
	if err != nil {
		t.Fatalf("init session failed: %v", err)
	}
	remote := newFakeFavoritesGateway()
	svc := NewFavoriteService(
		repository.NewFavoriteRepository(db),
		repository.NewProductRepository(db),
		sessionStore,
		remote,
		NewNotificationService(),
	)
	return svc, remote, sessionStore
}

func TestFavoriteAddIsIdempotent(t *testing.T) {
	svc, remote, _ := setupFavoriteServiceTest(t)
	ctx := context.Background()

	if err := svc.Add(ctx, localProduct("p1")); err != nil {
		t.Fatalf("add favorite failed: %v", err)
	}
	if err := svc.Add(ctx, localProduct("p1")); err != nil {
		t.Fatalf("repeat add failed: %v", err)
	}

	if count := svc.Count(); count != 1 {
		t.Fatalf("expected single favorite, got %d", count)
	}
	if !svc.IsFavorite("p1") {
		t.Fatalf("expected p1 favorited")
	}
	if len(remote.addCalls) != 0 {
		t.Fatalf("guest favorites must not touch remote, got %v", remote.addCalls)
	}
}

func TestFavoriteRemoveUnknownNoop(t *testing.T) {
	svc, _, _ := setupFavoriteServiceTest(t)

	if err := svc.Remove(context.Background(), "missing"); err != nil {
		t.Fatalf("expected harmless noop, got %v", err)
	}
}

func TestFavoriteAuthenticatedRemoteFailureRollsBack(t *testing.T) {
	svc, remote, store := setupFavoriteServiceTest(t)
	ctx := context.Background()
	loginTestSession(t, store, "u1")

	remote.products = []gateway.Product{remoteProduct("p1")}
	remote.addErr = gateway.ErrRequestFailed

	err := svc.Add(ctx, localProduct("p2"))
	if !errors.Is(err, gateway.ErrRequestFailed) {
		t.Fatalf("expected remote failure surfaced, got %v", err)
	}

	// 回滚后本地收藏等于服务端事实：只有 p1
	items, listErr := svc.List()
	if listErr != nil {
		t.Fatalf("list favorites failed: %v", listErr)
	}
	if len(items) != 1 || items[0].ProductID != "p1" {
		t.Fatalf("expected rollback to server favorites [p1], got %+v", items)
	}
}

func TestFavoriteRefreshReplacesLocal(t *testing.T) {
	svc, remote, store := setupFavoriteServiceTest(t)
	ctx := context.Background()
	loginTestSession(t, store, "u1")

	if err := svc.Add(ctx, localProduct("p9")); err != nil {
		t.Fatalf("add favorite failed: %v", err)
	}
	remote.products = []gateway.Product{remoteProduct("p1"), remoteProduct("p2")}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	items, _ := svc.List()
	if len(items) != 2 {
		t.Fatalf("expected server favorites after refresh, got %+v", items)
	}
}
