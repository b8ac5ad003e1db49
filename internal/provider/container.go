package provider

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
	"github.com/storefront-next/internal/session"
)

// Container 依赖注入容器
type Container struct {
	Config  *config.Config
	Session *session.Store
	Gateway *gateway.Client

	// Repositories
	SettingRepo  repository.SettingRepository
	ProductRepo  repository.ProductRepository
	CartRepo     repository.CartRepository
	FavoriteRepo repository.FavoriteRepository
	OrderRepo    repository.OrderRepository

	// Services
	NotificationService *service.NotificationService
	CartService         *service.CartService
	FavoriteService     *service.FavoriteService
	SyncService         *service.SyncService
	OrderService        *service.OrderService
	AuthService         *service.AuthService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 会话必须先于网关：网关的凭证来源就是会话
	sessionStore, err := session.NewStore(c.SettingRepo)
	if err != nil {
		return nil, err
	}
	c.Session = sessionStore
	c.Gateway = gateway.New(cfg.Remote.BaseURL, cfg.Remote.Timeout(), sessionStore)

	// 3. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.SettingRepo = repository.NewSettingRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.FavoriteRepo = repository.NewFavoriteRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	c.NotificationService = service.NewNotificationService()
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.Session, c.Gateway, c.NotificationService)
	c.FavoriteService = service.NewFavoriteService(c.FavoriteRepo, c.ProductRepo, c.Session, c.Gateway, c.NotificationService)
	c.SyncService = service.NewSyncService(c.CartRepo, c.FavoriteRepo, c.ProductRepo, c.SettingRepo, c.Session, c.Gateway, c.Gateway)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.Session, c.Gateway)
	c.AuthService = service.NewAuthService(c.Gateway, c.Session, c.CartRepo, c.FavoriteRepo, c.OrderRepo, c.SettingRepo, c.SyncService, c.NotificationService)
}
