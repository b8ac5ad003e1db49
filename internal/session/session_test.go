package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func setupSessionTest(t *testing.T) repository.SettingRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:session_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repository.NewSettingRepository(db)
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return signed
}

func TestNewStoreDefaultsToGuest(t *testing.T) {
	settings := setupSessionTest(t)

	store, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	if !store.ActiveIdentity().IsGuest() {
		t.Fatalf("expected guest identity, got %s", store.ActiveIdentity().Key())
	}
	if store.GuestID() == "" {
		t.Fatalf("expected generated guest id")
	}
	if store.HasValidCredential() {
		t.Fatalf("fresh session must not have credentials")
	}
}

func TestNewStoreRestoresAuthenticatedSession(t *testing.T) {
	settings := setupSessionTest(t)

	first, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	guestID := first.GuestID()
	if err := first.SetAuthenticated("u1", "access-token", "refresh-token"); err != nil {
		t.Fatalf("set authenticated failed: %v", err)
	}

	second, err := NewStore(settings)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if second.ActiveIdentity().Key() != models.UserIdentity("u1").Key() {
		t.Fatalf("expected user identity restored, got %s", second.ActiveIdentity().Key())
	}
	if !second.HasValidCredential() {
		t.Fatalf("expected restored credential")
	}
	if second.GuestID() != guestID {
		t.Fatalf("guest id must be stable across restarts")
	}
}

func TestNewStoreCorruptIdentityFallsBackToGuest(t *testing.T) {
	settings := setupSessionTest(t)
	if err := settings.Set(constants.SettingKeyActiveIdentity, "???bogus"); err != nil {
		t.Fatalf("seed corrupt identity failed: %v", err)
	}

	store, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	if !store.ActiveIdentity().IsGuest() {
		t.Fatalf("corrupt identity must fall back to guest, got %s", store.ActiveIdentity().Key())
	}
}

func TestNewStoreUserWithoutTokenFallsBackToGuest(t *testing.T) {
	settings := setupSessionTest(t)
	if err := settings.Set(constants.SettingKeyActiveIdentity, models.UserIdentity("u1").Key()); err != nil {
		t.Fatalf("seed identity failed: %v", err)
	}

	store, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	if !store.ActiveIdentity().IsGuest() {
		t.Fatalf("user identity without token must fall back to guest")
	}
}

func TestAccessTokenExpiryChecks(t *testing.T) {
	settings := setupSessionTest(t)
	store, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}

	// 已过期的 JWT 视为无凭证
	if err := store.SetAuthenticated("u1", signedToken(t, time.Now().Add(-time.Hour)), "refresh"); err != nil {
		t.Fatalf("set authenticated failed: %v", err)
	}
	if store.HasValidCredential() {
		t.Fatalf("expired jwt must be rejected")
	}

	// 远未过期的 JWT 有效
	if err := store.UpdateTokens(signedToken(t, time.Now().Add(time.Hour)), ""); err != nil {
		t.Fatalf("update tokens failed: %v", err)
	}
	if !store.HasValidCredential() {
		t.Fatalf("valid jwt must be accepted")
	}

	// 无法解析的不透明令牌按有效处理，过期判定交给远端
	if err := store.UpdateTokens("opaque-token", ""); err != nil {
		t.Fatalf("update tokens failed: %v", err)
	}
	if !store.HasValidCredential() {
		t.Fatalf("opaque token must be treated as valid")
	}
}

func TestUpdateTokensKeepsRefreshWhenAbsent(t *testing.T) {
	settings := setupSessionTest(t)
	store, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	if err := store.SetAuthenticated("u1", "access-1", "refresh-1"); err != nil {
		t.Fatalf("set authenticated failed: %v", err)
	}

	if err := store.UpdateTokens("access-2", ""); err != nil {
		t.Fatalf("update tokens failed: %v", err)
	}
	if store.RefreshToken() != "refresh-1" {
		t.Fatalf("expected refresh token kept, got %q", store.RefreshToken())
	}
}

func TestLogoutReturnsToGuest(t *testing.T) {
	settings := setupSessionTest(t)
	store, err := NewStore(settings)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	guestID := store.GuestID()
	if err := store.SetAuthenticated("u1", "access", "refresh"); err != nil {
		t.Fatalf("set authenticated failed: %v", err)
	}

	if err := store.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !store.ActiveIdentity().IsGuest() {
		t.Fatalf("expected guest identity after logout")
	}
	if store.HasValidCredential() {
		t.Fatalf("expected credentials cleared")
	}
	if store.GuestID() != guestID {
		t.Fatalf("guest id must survive logout")
	}
}
