package models

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/constants"
)

// Identity 会话身份（游客或已登录用户）
// 购物车与收藏均按身份切片存储，同一时刻只有一个身份处于激活状态。
type Identity struct {
	kind   string
	userID string
}

// GuestIdentity 游客身份
func GuestIdentity() Identity {
	return Identity{kind: constants.IdentityKindGuest}
}

// UserIdentity 已登录用户身份
func UserIdentity(userID string) Identity {
	return Identity{kind: constants.IdentityKindUser, userID: strings.TrimSpace(userID)}
}

// IsGuest 是否游客身份
func (i Identity) IsGuest() bool {
	return i.kind != constants.IdentityKindUser
}

// UserID 用户 ID（游客身份返回空串）
func (i Identity) UserID() string {
	if i.IsGuest() {
		return ""
	}
	return i.userID
}

// Key 持久化用的身份键
func (i Identity) Key() string {
	if i.IsGuest() {
		return constants.IdentityKindGuest
	}
	return constants.IdentityKindUser + ":" + i.userID
}

// String 实现 Stringer
func (i Identity) String() string {
	return i.Key()
}

// ParseIdentityKey 解析持久化的身份键
// 无法识别的键按游客处理，保证重载后状态可用。
func ParseIdentityKey(key string) Identity {
	key = strings.TrimSpace(key)
	if key == "" || key == constants.IdentityKindGuest {
		return GuestIdentity()
	}
	prefix := constants.IdentityKindUser + ":"
	if strings.HasPrefix(key, prefix) {
		userID := strings.TrimPrefix(key, prefix)
		if userID != "" {
			return UserIdentity(userID)
		}
	}
	return GuestIdentity()
}

// MustUser 校验身份为已登录用户
func (i Identity) MustUser() error {
	if i.IsGuest() {
		return fmt.Errorf("identity is not an authenticated user: %s", i.Key())
	}
	return nil
}
