package models

import (
	"time"
)

// Product 商品快照表
// 远端商品对象的本地缓存副本，仅用于离线展示。商品生命周期归远端所有，
// ID 为远端分配的商品 ID，不是本地自增主键。
type Product struct {
	ID            string    `gorm:"primarykey;type:varchar(64)" json:"id"`             // 远端商品ID
	Name          string    `gorm:"not null" json:"name"`                              // 商品名称
	Description   string    `json:"description"`                                       // 商品描述
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`// 原价
	DiscountPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_price"` // 折扣价
	ImageURL      string    `json:"image_url"`                                         // 主图地址
	Brand         string    `json:"brand"`                                             // 品牌
	CategoryID    string    `gorm:"index;type:varchar(64)" json:"category_id"`         // 远端分类ID
	Stock         int       `json:"stock"`                                             // 库存快照
	IsAvailable   bool      `gorm:"default:true" json:"is_available"`                  // 是否可购买
	SnapshotAt    time.Time `json:"snapshot_at"`                                       // 快照时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// EffectivePrice 返回展示价（有折扣价时优先）
func (p Product) EffectivePrice() Money {
	if p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price.Decimal) {
		return p.DiscountPrice
	}
	return p.Price
}
