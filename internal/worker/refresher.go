package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"
)

const refreshCheckInterval = time.Minute

// RefresherService 令牌保活服务
// 周期检查会话凭证：访问令牌临近过期但仍持有刷新令牌时主动换新，
// 让 UI 免于在下一次操作时撞上 401。
type RefresherService struct {
	name      string
	container *provider.Container
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// NewRefresherService 创建令牌保活服务
func NewRefresherService(c *provider.Container) (*RefresherService, error) {
	if c == nil {
		return nil, errors.New("container is nil")
	}
	return &RefresherService{
		name:      "token-refresher",
		container: c,
		interval:  refreshCheckInterval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Name 服务名称
func (s *RefresherService) Name() string {
	if s == nil || s.name == "" {
		return "token-refresher"
	}
	return s.name
}

// Start 启动服务
func (s *RefresherService) Start(ctx context.Context) error {
	if s == nil || s.container == nil {
		return errors.New("refresher not initialized")
	}
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.refreshOnce(ctx)
		}
	}
}

// Stop 停止服务
func (s *RefresherService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// refreshOnce 单次保活检查
// 只在“有刷新令牌但访问令牌已不可用”时动作，其余情况静默跳过。
func (s *RefresherService) refreshOnce(ctx context.Context) {
	sessionStore := s.container.Session
	if sessionStore == nil || s.container.AuthService == nil {
		return
	}
	if sessionStore.ActiveIdentity().IsGuest() {
		return
	}
	if sessionStore.HasValidCredential() {
		return
	}
	if sessionStore.RefreshToken() == "" {
		return
	}
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.container.AuthService.RefreshSession(refreshCtx); err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			return
		}
		logger.Warnw("token_refresh_failed", "error", err)
		return
	}
	logger.Infow("token_refreshed")
}
