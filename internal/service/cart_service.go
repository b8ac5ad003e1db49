package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/session"
)

// CartSummary 购物车汇总（头部角标等派生读取）
type CartSummary struct {
	ItemCount int          `json:"item_count"`
	Subtotal  models.Money `json:"subtotal"`
}

// CartService 购物车服务
// 本地存储是当前会话购物车的唯一事实来源；持有有效凭证时，每次变更
// 先乐观落地本地，再调用远端，成功后整车回拉对齐，失败时回拉回滚。
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	session     *session.Store
	remote      CartGateway
	notifier    *NotificationService

	mu         sync.Mutex
	isUpdating bool
	isLoading  bool
}

// NewCartService 创建购物车服务
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	sessionStore *session.Store,
	remote CartGateway,
	notifier *NotificationService,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		session:     sessionStore,
		remote:      remote,
		notifier:    notifier,
	}
}

// IsUpdating 是否有变更在途
// UI 以该标志禁用相关控件，防止连点造成交叠的乐观变更。
func (s *CartService) IsUpdating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isUpdating
}

// IsLoading 是否正在整车拉取
func (s *CartService) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// Lines 当前身份的购物车行（按插入顺序）
func (s *CartService) Lines() ([]models.CartLine, error) {
	return s.cartRepo.ListByIdentity(s.identityKey())
}

// ItemCount 商品总数量
// 防御性读取：任何底层异常都返回 0，绝不向 UI 抛错。
func (s *CartService) ItemCount() int {
	total, err := s.cartRepo.SumQuantity(s.identityKey())
	if err != nil {
		logger.Warnw("cart_item_count_failed", "error", err)
		return 0
	}
	return total
}

// Summary 购物车汇总
func (s *CartService) Summary() CartSummary {
	lines, err := s.Lines()
	if err != nil {
		logger.Warnw("cart_summary_failed", "error", err)
		return CartSummary{}
	}
	summary := CartSummary{}
	for _, line := range lines {
		summary.ItemCount += line.Quantity
		summary.Subtotal = summary.Subtotal.AddMoney(line.Subtotal())
	}
	return summary
}

// AddToCart 加购商品
// 同一商品重复加购只累加数量，绝不产生重复行。
func (s *CartService) AddToCart(ctx context.Context, snapshot models.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(snapshot.ID) == "" {
		return ErrInvalidProduct
	}
	if err := s.beginUpdate(); err != nil {
		return err
	}
	defer s.endUpdate()

	if err := s.productRepo.UpsertSnapshot(&snapshot); err != nil {
		return err
	}
	if err := s.addLocal(snapshot, quantity); err != nil {
		return err
	}

	if !s.session.HasValidCredential() {
		s.notifier.Success(constants.NotifyTopicCart, "Item added to cart")
		return nil
	}

	if err := s.remote.AddCartItem(ctx, snapshot.ID, quantity); err != nil {
		s.rollbackFromRemote(ctx, "add")
		s.notifier.Error(constants.NotifyTopicCart, "Failed to add item to cart")
		return err
	}
	s.reconcileFromRemote(ctx, "add")
	s.notifier.Success(constants.NotifyTopicCart, "Item added to cart")
	return nil
}

// UpdateQuantity 设置商品的绝对数量
// 数量 <= 0 等价于移除；商品不在购物车时为无害空操作。
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	if err := s.beginUpdate(); err != nil {
		return err
	}
	defer s.endUpdate()

	line, err := s.cartRepo.GetByIdentityAndProduct(s.identityKey(), productID)
	if err != nil {
		return err
	}
	if line == nil {
		return nil
	}

	authenticated := s.session.HasValidCredential()
	if authenticated && line.ServerItemID == "" {
		// 本地缓存缺少服务端行 ID：静默跳过会让 UI 与服务端脱节，必须显式报错并强制对齐
		s.rollbackFromRemote(ctx, "update")
		return ErrStaleLine
	}

	prevQuantity := line.Quantity
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	if err := s.cartRepo.Update(line); err != nil {
		return err
	}

	if !authenticated {
		s.notifier.Success(constants.NotifyTopicCart, "Cart updated")
		return nil
	}

	if err := s.remote.UpdateCartItem(ctx, line.ServerItemID, productID, quantity); err != nil {
		logger.Warnw("cart_update_remote_failed", "product_id", productID, "prev_quantity", prevQuantity, "error", err)
		s.rollbackFromRemote(ctx, "update")
		s.notifier.Error(constants.NotifyTopicCart, "Failed to update cart item")
		return err
	}
	s.reconcileFromRemote(ctx, "update")
	s.notifier.Success(constants.NotifyTopicCart, "Cart updated")
	return nil
}

// Remove 移除商品
func (s *CartService) Remove(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProduct
	}
	if err := s.beginUpdate(); err != nil {
		return err
	}
	defer s.endUpdate()

	identityKey := s.identityKey()
	line, err := s.cartRepo.GetByIdentityAndProduct(identityKey, productID)
	if err != nil {
		return err
	}
	if line == nil {
		return nil
	}

	authenticated := s.session.HasValidCredential()
	if authenticated && line.ServerItemID == "" {
		s.rollbackFromRemote(ctx, "remove")
		return ErrStaleLine
	}

	if err := s.cartRepo.DeleteByIdentityAndProduct(identityKey, productID); err != nil {
		return err
	}

	if !authenticated {
		s.notifier.Success(constants.NotifyTopicCart, "Item removed from cart")
		return nil
	}

	if err := s.remote.RemoveCartItem(ctx, line.ServerItemID); err != nil {
		s.rollbackFromRemote(ctx, "remove")
		s.notifier.Error(constants.NotifyTopicCart, "Failed to remove cart item")
		return err
	}
	s.reconcileFromRemote(ctx, "remove")
	s.notifier.Success(constants.NotifyTopicCart, "Item removed from cart")
	return nil
}

// Clear 清空购物车
// 远端清空是结账场景的尽力而为：失败只记日志，本地状态必定清空，
// 不让一次批删故障阻塞 UI。
func (s *CartService) Clear(ctx context.Context) error {
	if err := s.beginUpdate(); err != nil {
		return err
	}
	defer s.endUpdate()

	identityKey := s.identityKey()
	cartID := ""
	if lines, err := s.cartRepo.ListByIdentity(identityKey); err == nil {
		for _, line := range lines {
			if line.CartID != "" {
				cartID = line.CartID
				break
			}
		}
	}

	if err := s.cartRepo.ClearByIdentity(identityKey); err != nil {
		return err
	}

	if s.session.HasValidCredential() {
		if err := s.remote.ClearCart(ctx, cartID); err != nil {
			logger.Warnw("cart_clear_remote_failed", "cart_id", cartID, "error", err)
		}
	}
	return nil
}

// Refresh 整车回拉服务端购物车并替换本地状态
// 仅在持有有效凭证时有意义；拉取失败保留本地状态。
func (s *CartService) Refresh(ctx context.Context) error {
	if !s.session.HasValidCredential() {
		return nil
	}
	s.setLoading(true)
	defer s.setLoading(false)

	remoteLines, err := s.remote.FetchCart(ctx)
	if err != nil {
		return err
	}
	return s.replaceLocal(s.identityKey(), remoteLines)
}

// replaceLocal 把远端购物车行写入指定身份切片
func (s *CartService) replaceLocal(identityKey string, remoteLines []gateway.CartLine) error {
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
	return s.cartRepo.ReplaceForIdentity(identityKey, lines)
}

// addLocal 本地加购（同商品累加）
func (s *CartService) addLocal(snapshot models.Product, quantity int) error {
	identityKey := s.identityKey()
	existing, err := s.cartRepo.GetByIdentityAndProduct(identityKey, snapshot.ID)
	if err != nil {
		return err
	}
	now := time.Now()
	if existing != nil {
		existing.Quantity += quantity
		existing.UpdatedAt = now
		return s.cartRepo.Update(existing)
	}
	return s.cartRepo.Create(&models.CartLine{
		IdentityKey: identityKey,
		ProductID:   snapshot.ID,
		Quantity:    quantity,
		UnitPrice:   snapshot.EffectivePrice(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// reconcileFromRemote 变更成功后的整车对齐（尽力而为）
func (s *CartService) reconcileFromRemote(ctx context.Context, op string) {
	remoteLines, err := s.remote.FetchCart(ctx)
	if err != nil {
		logger.Warnw("cart_reconcile_fetch_failed", "op", op, "error", err)
		return
	}
	if err := s.replaceLocal(s.identityKey(), remoteLines); err != nil {
		logger.Warnw("cart_reconcile_replace_failed", "op", op, "error", err)
	}
}

// rollbackFromRemote 变更失败后的回滚：重新拉取服务端事实，丢弃乐观修改
func (s *CartService) rollbackFromRemote(ctx context.Context, op string) {
	remoteLines, err := s.remote.FetchCart(ctx)
	if err != nil {
		logger.Warnw("cart_rollback_fetch_failed", "op", op, "error", err)
		return
	}
	if err := s.replaceLocal(s.identityKey(), remoteLines); err != nil {
		logger.Warnw("cart_rollback_replace_failed", "op", op, "error", err)
	}
}

func (s *CartService) identityKey() string {
	return s.session.ActiveIdentity().Key()
}

func (s *CartService) beginUpdate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isUpdating {
		return ErrCartBusy
	}
	s.isUpdating = true
	return nil
}

func (s *CartService) endUpdate() {
	s.mu.Lock()
	s.isUpdating = false
	s.mu.Unlock()
}

func (s *CartService) setLoading(loading bool) {
	s.mu.Lock()
	s.isLoading = loading
	s.mu.Unlock()
}

// remoteProductToModel 远端商品对象转本地快照
func remoteProductToModel(p gateway.Product) models.Product {
	return models.Product{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		ImageURL:      p.ImageURL,
		Brand:         p.Brand,
		CategoryID:    p.CategoryID.String(),
		Stock:         p.Stock,
		IsAvailable:   p.IsAvailable,
		SnapshotAt:    time.Now(),
	}
}
