package session

import (
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 过期前的提前量，避免在途请求携带临界令牌
const expiryLeeway = 30 * time.Second

// Store 会话存储
// 持有访问令牌与激活身份，经设置仓库持久化，跨重启恢复。
// 身份切换只改激活键：游客数据在登录后休眠，登出后重新可见。
type Store struct {
	mu       sync.RWMutex
	settings repository.SettingRepository

	access   string
	refresh  string
	identity models.Identity
	guestID  string
}

// NewStore 创建并恢复会话存储
// 持久化数据缺失或无法识别时回落为全新游客会话，不报错。
func NewStore(settings repository.SettingRepository) (*Store, error) {
	s := &Store{settings: settings, identity: models.GuestIdentity()}

	if key, ok, err := settings.Get(constants.SettingKeyActiveIdentity); err != nil {
		return nil, err
	} else if ok {
		s.identity = models.ParseIdentityKey(key)
	}
	if token, ok, err := settings.Get(constants.SettingKeyAccessToken); err != nil {
		return nil, err
	} else if ok {
		s.access = token
	}
	if token, ok, err := settings.Get(constants.SettingKeyRefreshToken); err != nil {
		return nil, err
	} else if ok {
		s.refresh = token
	}

	guestID, ok, err := settings.Get(constants.SettingKeyGuestID)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(guestID) == "" {
		guestID = uuid.NewString()
		if err := settings.Set(constants.SettingKeyGuestID, guestID); err != nil {
			return nil, err
		}
	}
	s.guestID = guestID

	// 身份为用户但令牌已丢失时，回落为游客身份
	if !s.identity.IsGuest() && s.access == "" {
		logger.Warnw("session_restore_user_without_token", "identity", s.identity.Key())
		s.identity = models.GuestIdentity()
		_ = settings.Set(constants.SettingKeyActiveIdentity, s.identity.Key())
	}
	return s, nil
}

// ActiveIdentity 当前激活身份
func (s *Store) ActiveIdentity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// GuestID 本机游客 ID
func (s *Store) GuestID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guestID
}

// AccessToken 返回可用的访问令牌
// 实现 gateway.CredentialSource：令牌缺失或本地可判定已过期时返回 false，
// 调用方据此回退为纯本地模式，省掉一次注定 401 的往返。
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" {
		return "", false
	}
	if tokenExpired(s.access) {
		return "", false
	}
	return s.access, true
}

// RefreshToken 当前刷新令牌
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// HasValidCredential 是否持有可用访问令牌
func (s *Store) HasValidCredential() bool {
	_, ok := s.AccessToken()
	return ok
}

// SetAuthenticated 登录成功后切换为用户身份并保存令牌
func (s *Store) SetAuthenticated(userID, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := models.UserIdentity(userID)
	if err := identity.MustUser(); err != nil {
		return err
	}
	if err := s.settings.Set(constants.SettingKeyAccessToken, access); err != nil {
		return err
	}
	if err := s.settings.Set(constants.SettingKeyRefreshToken, refresh); err != nil {
		return err
	}
	if err := s.settings.Set(constants.SettingKeyActiveIdentity, identity.Key()); err != nil {
		return err
	}
	s.access = access
	s.refresh = refresh
	s.identity = identity
	return nil
}

// UpdateTokens 刷新令牌后更新存储
func (s *Store) UpdateTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.Set(constants.SettingKeyAccessToken, access); err != nil {
		return err
	}
	if refresh != "" {
		if err := s.settings.Set(constants.SettingKeyRefreshToken, refresh); err != nil {
			return err
		}
		s.refresh = refresh
	}
	s.access = access
	return nil
}

// Logout 清除令牌并切回游客身份
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.Delete(constants.SettingKeyAccessToken); err != nil {
		return err
	}
	if err := s.settings.Delete(constants.SettingKeyRefreshToken); err != nil {
		return err
	}
	identity := models.GuestIdentity()
	if err := s.settings.Set(constants.SettingKeyActiveIdentity, identity.Key()); err != nil {
		return err
	}
	s.access = ""
	s.refresh = ""
	s.identity = identity
	return nil
}

// tokenExpired 本地判断 JWT 是否过期
// 只做不验签的声明解析——签名校验是远端的职责；无法解析的令牌按
// 不透明令牌处理，交给远端判定。
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < expiryLeeway
}
