package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 本地购物车数据访问接口
type CartRepository interface {
	ListByIdentity(identityKey string) ([]models.CartLine, error)
	GetByIdentityAndProduct(identityKey, productID string) (*models.CartLine, error)
	Create(line *models.CartLine) error
	Update(line *models.CartLine) error
	DeleteByIdentityAndProduct(identityKey, productID string) error
	ClearByIdentity(identityKey string) error
	ReplaceForIdentity(identityKey string, lines []models.CartLine) error
	SumQuantity(identityKey string) (int, error)
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// ListByIdentity 获取身份下的购物车行
// 按本地行 ID 升序返回，保证后台刷新不会改变展示顺序。
func (r *GormCartRepository) ListByIdentity(identityKey string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Preload("Product").Where("identity_key = ?", identityKey).Order("id asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// GetByIdentityAndProduct 按身份与商品查询行，不存在时返回 nil
func (r *GormCartRepository) GetByIdentityAndProduct(identityKey, productID string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.Preload("Product").Where("identity_key = ? AND product_id = ?", identityKey, productID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Create 新增购物车行
func (r *GormCartRepository) Create(line *models.CartLine) error {
	if line == nil {
		return nil
	}
	return r.db.Create(line).Error
}

// Update 更新购物车行
func (r *GormCartRepository) Update(line *models.CartLine) error {
	if line == nil || line.ID == 0 {
		return nil
	}
	return r.db.Model(&models.CartLine{ID: line.ID}).Updates(map[string]interface{}{
		"quantity":       line.Quantity,
		"server_item_id": line.ServerItemID,
		"cart_id":        line.CartID,
		"unit_price":     line.UnitPrice,
		"updated_at":     line.UpdatedAt,
	}).Error
}

// DeleteByIdentityAndProduct 删除购物车行
func (r *GormCartRepository) DeleteByIdentityAndProduct(identityKey, productID string) error {
	return r.db.Where("identity_key = ? AND product_id = ?", identityKey, productID).Delete(&models.CartLine{}).Error
}

// ClearByIdentity 清空身份下的购物车
func (r *GormCartRepository) ClearByIdentity(identityKey string) error {
	return r.db.Where("identity_key = ?", identityKey).Delete(&models.CartLine{}).Error
}

// ReplaceForIdentity 用服务端结果整体替换身份下的购物车
func (r *GormCartRepository) ReplaceForIdentity(identityKey string, lines []models.CartLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_key = ?", identityKey).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].IdentityKey = identityKey
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SumQuantity 统计身份下的商品总数量
func (r *GormCartRepository) SumQuantity(identityKey string) (int, error) {
	var total int64
	err := r.db.Model(&models.CartLine{}).Where("identity_key = ?", identityKey).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
