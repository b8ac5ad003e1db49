package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/session"
)

// SyncService 登录态合并服务
// 登录成功后把游客切片的购物车与收藏推送到服务端账号，然后以服务端
// 结果替换用户切片。每个用户只合并一次，用合并标记保证重复登录不会
// 把同一批游客商品再推一遍。
type SyncService struct {
	cartRepo     repository.CartRepository
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	settingRepo  repository.SettingRepository
	session      *session.Store
	cartRemote   CartGateway
	favRemote    FavoritesGateway
}

// NewSyncService 创建合并服务
func NewSyncService(
	cartRepo repository.CartRepository,
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
	settingRepo repository.SettingRepository,
	sessionStore *session.Store,
	cartRemote CartGateway,
	favRemote FavoritesGateway,
) *SyncService {
	return &SyncService{
		cartRepo:     cartRepo,
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		settingRepo:  settingRepo,
		session:      sessionStore,
		cartRemote:   cartRemote,
		favRemote:    favRemote,
	}
}

// MergeGuestState 把游客状态合并进用户账号
// 必须在凭证写入会话之后调用（远端调用依赖 Bearer 头）。单个商品的
// 推送失败只记日志，不中断整体合并。
func (s *SyncService) MergeGuestState(ctx context.Context, userID string) error {
	guestKey := models.GuestIdentity().Key()
	userKey := models.UserIdentity(userID).Key()

	if s.alreadyMerged(userID) {
		logger.Infow("guest_merge_skipped", "user_id", userID, "reason", "already merged")
		return s.pullRemoteState(ctx, userKey)
	}

	guestLines, err := s.cartRepo.ListByIdentity(guestKey)
	if err != nil {
		return err
	}
	guestFavorites, err := s.favoriteRepo.ListByIdentity(guestKey)
	if err != nil {
		return err
	}

	s.pushGuestCart(ctx, guestLines)
	s.pushGuestFavorites(ctx, guestFavorites)

	if err := s.pullRemoteStateOrSeed(ctx, userKey, guestLines, guestFavorites); err != nil {
		return err
	}

	if err := s.markMerged(userID); err != nil {
		logger.Warnw("guest_merge_mark_failed", "user_id", userID, "error", err)
	}
	if err := s.cartRepo.ClearByIdentity(guestKey); err != nil {
		logger.Warnw("guest_cart_clear_failed", "error", err)
	}
	if err := s.favoriteRepo.ClearByIdentity(guestKey); err != nil {
		logger.Warnw("guest_favorites_clear_failed", "error", err)
	}
	logger.Infow("guest_merge_done", "user_id", userID,
		"cart_lines", len(guestLines), "favorites", len(guestFavorites))
	return nil
}

// pushGuestCart 把游客购物车行推送到服务端
// 服务端的新增接口对已有商品做数量累加，因此只推送服务端尚不存在的
// 商品，避免重复合并把数量翻倍。
func (s *SyncService) pushGuestCart(ctx context.Context, guestLines []models.CartLine) {
	if len(guestLines) == 0 {
		return
	}
	remoteProducts := map[string]bool{}
	if remoteLines, err := s.cartRemote.FetchCart(ctx); err != nil {
		logger.Warnw("guest_merge_cart_fetch_failed", "error", err)
	} else {
		for _, line := range remoteLines {
			remoteProducts[line.Product.ID.String()] = true
		}
	}
	for _, line := range guestLines {
		if remoteProducts[line.ProductID] {
			continue
		}
		if err := s.cartRemote.AddCartItem(ctx, line.ProductID, line.Quantity); err != nil {
			logger.Warnw("guest_merge_cart_push_failed", "product_id", line.ProductID, "error", err)
		}
	}
}

// pushGuestFavorites 把游客收藏推送到服务端
func (s *SyncService) pushGuestFavorites(ctx context.Context, guestFavorites []models.FavoriteItem) {
	if len(guestFavorites) == 0 {
		return
	}
	remoteProducts := map[string]bool{}
	if remote, err := s.favRemote.FetchFavorites(ctx); err != nil {
		logger.Warnw("guest_merge_favorites_fetch_failed", "error", err)
	} else {
		for _, product := range remote {
			remoteProducts[product.ID.String()] = true
		}
	}
	for _, item := range guestFavorites {
		if remoteProducts[item.ProductID] {
			continue
		}
		if err := s.favRemote.AddFavorite(ctx, item.ProductID); err != nil {
			logger.Warnw("guest_merge_favorite_push_failed", "product_id", item.ProductID, "error", err)
		}
	}
}

// pullRemoteState 以服务端结果替换用户切片
func (s *SyncService) pullRemoteState(ctx context.Context, userKey string) error {
	remoteLines, err := s.cartRemote.FetchCart(ctx)
	if err != nil {
		return err
	}
	if err := s.replaceCart(userKey, remoteLines); err != nil {
		return err
	}
	remoteFavorites, err := s.favRemote.FetchFavorites(ctx)
	if err != nil {
		return err
	}
	return s.replaceFavorites(userKey, remoteFavorites)
}

// pullRemoteStateOrSeed 回拉服务端状态；回拉失败时退化为用游客数据
// 预填用户切片，保证登录后购物车不会凭空清零。
func (s *SyncService) pullRemoteStateOrSeed(ctx context.Context, userKey string, guestLines []models.CartLine, guestFavorites []models.FavoriteItem) error {
	err := s.pullRemoteState(ctx, userKey)
	if err == nil {
		return nil
	}
	logger.Warnw("guest_merge_pull_failed", "error", err)
	seeded := make([]models.CartLine, 0, len(guestLines))
	now := time.Now()
	for _, line := range guestLines {
		seeded = append(seeded, models.CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := s.cartRepo.ReplaceForIdentity(userKey, seeded); err != nil {
		return err
	}
	for _, item := range guestFavorites {
		if err := s.favoriteRepo.Add(userKey, item.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// replaceCart 把远端购物车行写入用户切片
func (s *SyncService) replaceCart(userKey string, remoteLines []gateway.CartLine) error {
	lines := make([]models.CartLine, 0, len(remoteLines))
	now := time.Now()
	for _, remoteLine := range remoteLines {
		snapshot := remoteProductToModel(remoteLine.Product)
		if err := s.productRepo.UpsertSnapshot(&snapshot); err != nil {
			return err
		}
		lines = append(lines, models.CartLine{
			ProductID:    snapshot.ID,
			Quantity:     int(remoteLine.Quantity),
			ServerItemID: remoteLine.ID.String(),
			CartID:       remoteLine.CartID.String(),
			UnitPrice:    remoteLine.Price,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return s.cartRepo.ReplaceForIdentity(userKey, lines)
}

// replaceFavorites 把远端收藏写入用户切片
func (s *SyncService) replaceFavorites(userKey string, remoteProducts []gateway.Product) error {
	if err := s.favoriteRepo.ClearByIdentity(userKey); err != nil {
		return err
	}
	for _, remoteProduct := range remoteProducts {
		snapshot := remoteProductToModel(remoteProduct)
		if err := s.productRepo.UpsertSnapshot(&snapshot); err != nil {
			return err
		}
		if err := s.favoriteRepo.Add(userKey, snapshot.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) alreadyMerged(userID string) bool {
	_, found, err := s.settingRepo.Get(constants.SettingKeyMergedPrefix + userID)
	if err != nil {
		logger.Warnw("guest_merge_marker_read_failed", "user_id", userID, "error", err)
		return false
	}
	return found
}

func (s *SyncService) markMerged(userID string) error {
	return s.settingRepo.Set(constants.SettingKeyMergedPrefix+userID, time.Now().Format(time.RFC3339))
}
