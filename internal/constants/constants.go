package constants

// 身份类别常量
const (
	IdentityKindGuest = "guest"
	IdentityKindUser  = "user"
)

// 会话设置键常量（本地 KV 存储）
const (
	SettingKeyActiveIdentity = "session.active_identity"
	SettingKeyGuestID        = "session.guest_id"
	SettingKeyAccessToken    = "session.access_token"
	SettingKeyRefreshToken   = "session.refresh_token"
	SettingKeyMergedPrefix   = "sync.merged." // 后接用户 ID
)

// 订单状态常量（远端订单缓存）
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// 通知级别常量
const (
	NotifyLevelSuccess = "success"
	NotifyLevelError   = "error"
)

// 通知主题常量
const (
	NotifyTopicCart      = "cart"
	NotifyTopicFavorites = "favorites"
	NotifyTopicAuth      = "auth"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "sf"
)

// NotificationRingSize 通知中心保留的最大条数
const NotificationRingSize = 50
