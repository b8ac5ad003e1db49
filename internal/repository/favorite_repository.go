package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository 本地收藏数据访问接口
type FavoriteRepository interface {
	ListByIdentity(identityKey string) ([]models.FavoriteItem, error)
	Exists(identityKey, productID string) (bool, error)
	Add(identityKey, productID string) error
	DeleteByIdentityAndProduct(identityKey, productID string) error
	ClearByIdentity(identityKey string) error
	CountByIdentity(identityKey string) (int, error)
}

// GormFavoriteRepository GORM 实现
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓库
func NewFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// ListByIdentity 获取身份下的收藏项
func (r *GormFavoriteRepository) ListByIdentity(identityKey string) ([]models.FavoriteItem, error) {
	var items []models.FavoriteItem
	if err := r.db.Preload("Product").Where("identity_key = ?", identityKey).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Exists 判断商品是否已收藏
func (r *GormFavoriteRepository) Exists(identityKey, productID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.FavoriteItem{}).
		Where("identity_key = ? AND product_id = ?", identityKey, productID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add 添加收藏（已存在时幂等）
func (r *GormFavoriteRepository) Add(identityKey, productID string) error {
	var existing models.FavoriteItem
	err := r.db.Where("identity_key = ? AND product_id = ?", identityKey, productID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.FavoriteItem{
			IdentityKey: identityKey,
			ProductID:   productID,
			AddedAt:     time.Now(),
		}).Error
	}
	return err
}

// DeleteByIdentityAndProduct 取消收藏
func (r *GormFavoriteRepository) DeleteByIdentityAndProduct(identityKey, productID string) error {
	return r.db.Where("identity_key = ? AND product_id = ?", identityKey, productID).Delete(&models.FavoriteItem{}).Error
}

// ClearByIdentity 清空身份下的收藏
func (r *GormFavoriteRepository) ClearByIdentity(identityKey string) error {
	return r.db.Where("identity_key = ?", identityKey).Delete(&models.FavoriteItem{}).Error
}

// CountByIdentity 统计身份下的收藏数量
func (r *GormFavoriteRepository) CountByIdentity(identityKey string) (int, error) {
	var count int64
	err := r.db.Model(&models.FavoriteItem{}).Where("identity_key = ?", identityKey).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
