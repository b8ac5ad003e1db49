package service

import (
	"context"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/session"
)

// AuthService 认证服务
// 登录 / 注册 / 登出的完整编排：令牌写入会话、拉取用户信息、
// 同步执行游客状态合并。合并在登录调用返回前完成，保证 UI 在
// 登录成功的下一次读取就能看到合并后的购物车。
type AuthService struct {
	remote       AuthGateway
	session      *session.Store
	cartRepo     repository.CartRepository
	favoriteRepo repository.FavoriteRepository
	orderRepo    repository.OrderRepository
	settingRepo  repository.SettingRepository
	sync         *SyncService
	notifier     *NotificationService
}

// NewAuthService 创建认证服务
func NewAuthService(
	remote AuthGateway,
	sessionStore *session.Store,
	cartRepo repository.CartRepository,
	favoriteRepo repository.FavoriteRepository,
	orderRepo repository.OrderRepository,
	settingRepo repository.SettingRepository,
	syncService *SyncService,
	notifier *NotificationService,
) *AuthService {
	return &AuthService{
		remote:       remote,
		session:      sessionStore,
		cartRepo:     cartRepo,
		favoriteRepo: favoriteRepo,
		orderRepo:    orderRepo,
		settingRepo:  settingRepo,
		sync:         syncService,
		notifier:     notifier,
	}
}

// Login 登录
// 合并失败不阻塞登录：会话已经是登录态，合并问题以通知和日志暴露。
func (s *AuthService) Login(ctx context.Context, input gateway.LoginInput) (*gateway.RemoteUser, error) {
	tokens, err := s.remote.Login(ctx, input)
	if err != nil {
		s.notifier.Error(constants.NotifyTopicAuth, "Login failed")
		return nil, err
	}
	user, err := s.establishSession(ctx, tokens)
	if err != nil {
		return nil, err
	}
	s.notifier.Success(constants.NotifyTopicAuth, "Logged in")
	return user, nil
}

// Register 注册并自动登录
func (s *AuthService) Register(ctx context.Context, input gateway.RegisterInput) (*gateway.RemoteUser, error) {
	tokens, err := s.remote.Register(ctx, input)
	if err != nil {
		s.notifier.Error(constants.NotifyTopicAuth, "Registration failed")
		return nil, err
	}
	user, err := s.establishSession(ctx, tokens)
	if err != nil {
		return nil, err
	}
	s.notifier.Success(constants.NotifyTopicAuth, "Account created")
	return user, nil
}

// establishSession 令牌落会话、拉取用户、执行游客合并
func (s *AuthService) establishSession(ctx context.Context, tokens *gateway.TokenPair) (*gateway.RemoteUser, error) {
	// 先写令牌再拉用户信息，后续远端调用依赖 Bearer 头
	if err := s.session.UpdateTokens(tokens.Access, tokens.Refresh); err != nil {
		return nil, err
	}
	user, err := s.remote.FetchCurrentUser(ctx)
	if err != nil {
		if logoutErr := s.session.Logout(); logoutErr != nil {
			logger.Warnw("session_reset_failed", "error", logoutErr)
		}
		return nil, err
	}
	userID := user.ID.String()
	if err := s.session.SetAuthenticated(userID, tokens.Access, tokens.Refresh); err != nil {
		return nil, err
	}
	if err := s.sync.MergeGuestState(ctx, userID); err != nil {
		logger.Warnw("guest_merge_failed", "user_id", userID, "error", err)
		s.notifier.Error(constants.NotifyTopicCart, "Failed to sync your cart")
	}
	return user, nil
}

// RefreshSession 用刷新令牌换新访问令牌
func (s *AuthService) RefreshSession(ctx context.Context) error {
	refresh := s.session.RefreshToken()
	if refresh == "" {
		return ErrNotAuthenticated
	}
	tokens, err := s.remote.RefreshToken(ctx, refresh)
	if err != nil {
		return err
	}
	return s.session.UpdateTokens(tokens.Access, tokens.Refresh)
}

// CurrentUser 当前登录用户信息
func (s *AuthService) CurrentUser(ctx context.Context) (*gateway.RemoteUser, error) {
	if !s.session.HasValidCredential() {
		return nil, ErrNotAuthenticated
	}
	return s.remote.FetchCurrentUser(ctx)
}

// Logout 登出
// 清空用户切片的本地状态与合并标记，回到游客身份。游客切片不动，
// 登出后立刻回到登录前的游客购物车。
func (s *AuthService) Logout() error {
	identity := s.session.ActiveIdentity()
	if !identity.IsGuest() {
		userKey := identity.Key()
		userID := identity.UserID()
		if err := s.cartRepo.ClearByIdentity(userKey); err != nil {
			logger.Warnw("logout_cart_clear_failed", "error", err)
		}
		if err := s.favoriteRepo.ClearByIdentity(userKey); err != nil {
			logger.Warnw("logout_favorites_clear_failed", "error", err)
		}
		if err := s.orderRepo.ClearByUser(userID); err != nil {
			logger.Warnw("logout_orders_clear_failed", "error", err)
		}
		if err := s.settingRepo.Delete(constants.SettingKeyMergedPrefix + userID); err != nil {
			logger.Warnw("logout_marker_clear_failed", "error", err)
		}
	}
	if err := s.session.Logout(); err != nil {
		return err
	}
	s.notifier.Success(constants.NotifyTopicAuth, "Logged out")
	return nil
}

// ActiveIdentity 当前身份（UI 路由守卫使用）
func (s *AuthService) ActiveIdentity() models.Identity {
	return s.session.ActiveIdentity()
}

// IsAuthenticated 当前会话是否处于可用的登录态
func (s *AuthService) IsAuthenticated() bool {
	return s.session.HasValidCredential()
}
