package models

import (
	"time"
)

// CartLine 购物车行
// 同一身份下每个商品至多一行（唯一索引保证），重复加购只增加数量。
// ServerItemID 为远端分配的购物车行 ID，游客本地行为空，与商品 ID 无关。
type CartLine struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                    // 本地行ID（自增，决定展示顺序）
	IdentityKey  string    `gorm:"not null;index;uniqueIndex:idx_cart_identity_product" json:"-"`           // 身份键
	ProductID    string    `gorm:"not null;type:varchar(64);uniqueIndex:idx_cart_identity_product" json:"product_id"` // 远端商品ID
	Quantity     int       `gorm:"not null" json:"quantity"`                                                // 数量（恒 >= 1）
	ServerItemID string    `gorm:"type:varchar(64);index" json:"server_item_id,omitempty"`                  // 远端购物车行ID
	CartID       string    `gorm:"type:varchar(64)" json:"cart_id,omitempty"`                               // 远端购物车ID
	UnitPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                 // 加购时单价快照
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                                 // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                              // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品快照
}

// TableName 指定表名
func (CartLine) TableName() string {
	return "cart_lines"
}

// Subtotal 行小计
func (l CartLine) Subtotal() Money {
	return l.UnitPrice.MulInt(l.Quantity)
}
