package service

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/session"
)

// FavoriteService 收藏服务
// 与购物车同一套乐观策略：先落本地，登录态下再推远端，失败整表回拉回滚。
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	session      *session.Store
	remote       FavoritesGateway
	notifier     *NotificationService
}

// NewFavoriteService 创建收藏服务
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
	sessionStore *session.Store,
	remote FavoritesGateway,
	notifier *NotificationService,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		session:      sessionStore,
		remote:       remote,
		notifier:     notifier,
	}
}

// List 当前身份的收藏列表
func (s *FavoriteService) List() ([]models.FavoriteItem, error) {
	return s.favoriteRepo.ListByIdentity(s.identityKey())
}

// Count 收藏数量（防御性读取，出错返回 0）
func (s *FavoriteService) Count() int {
	count, err := s.favoriteRepo.CountByIdentity(s.identityKey())
	if err != nil {
		logger.Warnw("favorite_count_failed", "error", err)
		return 0
	}
	return count
}

// IsFavorite 商品是否已收藏
func (s *FavoriteService) IsFavorite(productID string) bool {
	exists, err := s.favoriteRepo.Exists(s.identityKey(), productID)
	if err != nil {
		logger.Warnw("favorite_exists_failed", "product_id", productID, "error", err)
		return false
	}
	return exists
}

// Add 收藏商品（重复收藏为无害空操作）
func (s *FavoriteService) Add(ctx context.Context, snapshot models.Product) error {
	if strings.TrimSpace(snapshot.ID) == "" {
		return ErrInvalidProduct
	}
	if err := s.productRepo.UpsertSnapshot(&snapshot); err != nil {
		return err
	}
	if err := s.favoriteRepo.Add(s.identityKey(), snapshot.ID); err != nil {
		return err
	}

	if !s.session.HasValidCredential() {
		s.notifier.Success(constants.NotifyTopicFavorites, "Added to favorites")
		return nil
	}

	if err := s.remote.AddFavorite(ctx, snapshot.ID); err != nil {
		s.rollbackFromRemote(ctx, "add")
		s.notifier.Error(constants.NotifyTopicFavorites, "Failed to add favorite")
		return err
	}
	s.notifier.Success(constants.NotifyTopicFavorites, "Added to favorites")
	return nil
}

// Remove 取消收藏
func (s *FavoriteService) Remove(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProduct
	}
	if err := s.favoriteRepo.DeleteByIdentityAndProduct(s.identityKey(), productID); err != nil {
		return err
	}

	if !s.session.HasValidCredential() {
		s.notifier.Success(constants.NotifyTopicFavorites, "Removed from favorites")
		return nil
	}

	if err := s.remote.RemoveFavorite(ctx, productID); err != nil {
		s.rollbackFromRemote(ctx, "remove")
		s.notifier.Error(constants.NotifyTopicFavorites, "Failed to remove favorite")
		return err
	}
	s.notifier.Success(constants.NotifyTopicFavorites, "Removed from favorites")
	return nil
}

// Refresh 整表回拉服务端收藏并替换本地状态
func (s *FavoriteService) Refresh(ctx context.Context) error {
	if !s.session.HasValidCredential() {
		return nil
	}
	remoteProducts, err := s.remote.FetchFavorites(ctx)
	if err != nil {
		return err
	}
	return s.replaceLocal(s.identityKey(), remoteProducts)
}

// replaceLocal 把远端收藏写入指定身份切片
func (s *FavoriteService) replaceLocal(identityKey string, remoteProducts []gateway.Product) error {
	if err := s.favoriteRepo.ClearByIdentity(identityKey); err != nil {
		return err
	}
	for _, remoteProduct := range remoteProducts {
		snapshot := remoteProductToModel(remoteProduct)
		if err := s.productRepo.UpsertSnapshot(&snapshot); err != nil {
			return err
		}
		if err := s.favoriteRepo.Add(identityKey, snapshot.ID); err != nil {
			return err
		}
	}
	return nil
}

// rollbackFromRemote 远端失败后的回滚：重新拉取服务端事实
func (s *FavoriteService) rollbackFromRemote(ctx context.Context, op string) {
	remoteProducts, err := s.remote.FetchFavorites(ctx)
	if err != nil {
		logger.Warnw("favorite_rollback_fetch_failed", "op", op, "error", err)
		return
	}
	if err := s.replaceLocal(s.identityKey(), remoteProducts); err != nil {
		logger.Warnw("favorite_rollback_replace_failed", "op", op, "error", err)
	}
}

func (s *FavoriteService) identityKey() string {
	return s.session.ActiveIdentity().Key()
}
