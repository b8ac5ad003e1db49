package models

import (
	"time"
)

// FavoriteItem 收藏项
// 与购物车共用身份切片模式：按身份键分区，登录时游客切片并入用户切片。
type FavoriteItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                  // 本地行ID
	IdentityKey string    `gorm:"not null;index;uniqueIndex:idx_fav_identity_product" json:"-"`          // 身份键
	ProductID   string    `gorm:"not null;type:varchar(64);uniqueIndex:idx_fav_identity_product" json:"product_id"` // 远端商品ID
	AddedAt     time.Time `gorm:"index" json:"added_at"`                                                 // 收藏时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品快照
}

// TableName 指定表名
func (FavoriteItem) TableName() string {
	return "favorite_items"
}
