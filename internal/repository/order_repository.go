package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单缓存数据访问接口
type OrderRepository interface {
	ListByUser(userID string) ([]models.Order, error)
	GetByRemoteID(remoteID string) (*models.Order, error)
	ReplaceForUser(userID string, orders []models.Order) error
	Upsert(order *models.Order) error
	ClearByUser(userID string) error
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单缓存仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// ListByUser 获取用户的订单缓存
func (r *GormOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetByRemoteID 按远端订单 ID 查询缓存，不存在时返回 nil
func (r *GormOrderRepository) GetByRemoteID(remoteID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("remote_id = ?", remoteID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ReplaceForUser 用远端列表整体替换用户订单缓存
func (r *GormOrderRepository) ReplaceForUser(userID string, orders []models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteOrdersByUser(tx, userID); err != nil {
			return err
		}
		for i := range orders {
			orders[i].ID = 0
			orders[i].UserID = userID
			if err := tx.Create(&orders[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Upsert 写入或刷新单个订单缓存
func (r *GormOrderRepository) Upsert(order *models.Order) error {
	if order == nil || order.RemoteID == "" {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.Where("remote_id = ?", order.RemoteID).First(&existing).Error
		if err == nil {
			if err := tx.Where("order_id = ?", existing.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		order.ID = 0
		return tx.Create(order).Error
	})
}

// ClearByUser 清空用户订单缓存
func (r *GormOrderRepository) ClearByUser(userID string) error {
	return deleteOrdersByUser(r.db, userID)
}

func deleteOrdersByUser(tx *gorm.DB, userID string) error {
	var ids []uint
	if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := tx.Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Order{}).Error
}
