package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品快照数据访问接口
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	UpsertSnapshot(product *models.Product) error
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品快照仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// GetByID 按远端商品 ID 查询快照，不存在时返回 nil
func (r *GormProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertSnapshot 写入或刷新商品快照
func (r *GormProductRepository) UpsertSnapshot(product *models.Product) error {
	if product == nil || product.ID == "" {
		return nil
	}
	product.SnapshotAt = time.Now()
	var existing models.Product
	err := r.db.Where("id = ?", product.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(product).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"name":           product.Name,
		"description":    product.Description,
		"price":          product.Price,
		"discount_price": product.DiscountPrice,
		"image_url":      product.ImageURL,
		"brand":          product.Brand,
		"category_id":    product.CategoryID,
		"stock":          product.Stock,
		"is_available":   product.IsAvailable,
		"snapshot_at":    product.SnapshotAt,
	}).Error
}
