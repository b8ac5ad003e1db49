package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// TokenPair 访问令牌与刷新令牌
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RemoteUser 远端用户对象
type RemoteUser struct {
	ID        RemoteID `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      string   `json:"role"`
}

// Validate 校验用户对象
func (u *RemoteUser) Validate() error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("%w: user missing id", ErrResponseInvalid)
	}
	return nil
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Login 登录并获取令牌
func (c *Client) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrRequestFailed)
	}
	body, err := c.do(ctx, http.MethodPost, "/auth/token/", input, false)
	if err != nil {
		return nil, err
	}
	return decodeTokenPair(body)
}

// Register 注册账号
// 远端注册成功即返回令牌对，行为与登录一致。
func (c *Client) Register(ctx context.Context, input RegisterInput) (*TokenPair, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrRequestFailed)
	}
	body, err := c.do(ctx, http.MethodPost, "/users/register/", input, false)
	if err != nil {
		return nil, err
	}
	return decodeTokenPair(body)
}

// RefreshToken 刷新访问令牌
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	if refresh == "" {
		return nil, fmt.Errorf("%w: refresh token required", ErrRequestFailed)
	}
	body, err := c.do(ctx, http.MethodPost, "/auth/token/refresh/", map[string]string{"refresh": refresh}, false)
	if err != nil {
		return nil, err
	}
	var pair TokenPair
	if err := decodeData(body, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("%w: refresh response missing access token", ErrResponseInvalid)
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	return &pair, nil
}

// FetchCurrentUser 获取当前登录用户
func (c *Client) FetchCurrentUser(ctx context.Context) (*RemoteUser, error) {
	body, err := c.do(ctx, http.MethodGet, "/users/me", nil, true)
	if err != nil {
		return nil, err
	}
	var user RemoteUser
	if err := decodeData(body, &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return &user, nil
}

func decodeTokenPair(body []byte) (*TokenPair, error) {
	var pair TokenPair
	if err := decodeData(body, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("%w: auth response missing access token", ErrResponseInvalid)
	}
	return &pair, nil
}
