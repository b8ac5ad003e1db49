package models

import (
	"time"
)

// Order 订单缓存表
// 远端订单的只读副本，按用户过滤后落库，登出时清空。
type Order struct {
	ID           uint      `gorm:"primarykey" json:"-"`                              // 本地行ID
	RemoteID     string    `gorm:"uniqueIndex;not null;type:varchar(64)" json:"id"`  // 远端订单ID
	UserID       string    `gorm:"index;not null;type:varchar(64)" json:"user"`      // 远端用户ID
	Status       string    `gorm:"index;not null" json:"status"`                     // 订单状态
	Total        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total"` // 订单总额
	CheckedOutAt time.Time `json:"checked_out_at"`                                   // 结算时间
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                       // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项缓存
type OrderItem struct {
	ID        uint   `gorm:"primarykey" json:"-"`                             // 本地行ID
	OrderID   uint   `gorm:"index;not null" json:"-"`                         // 所属订单本地ID
	RemoteID  string `gorm:"not null;type:varchar(64)" json:"id"`             // 远端订单项ID
	ProductID string `gorm:"not null;type:varchar(64)" json:"product_id"`     // 远端商品ID
	Name      string `json:"name"`                                            // 商品名称快照
	Quantity  int    `gorm:"not null" json:"quantity"`                        // 数量
	Price     Money  `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价快照
	Total     Money  `gorm:"type:decimal(20,2);not null;default:0" json:"total"` // 小计
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
