package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoCredential     = errors.New("gateway: no access credential")
	ErrUnauthorized     = errors.New("gateway: unauthorized")
	ErrNotFound         = errors.New("gateway: resource not found")
	ErrMethodNotAllowed = errors.New("gateway: method not allowed")
	ErrRequestFailed    = errors.New("gateway: request failed")
	ErrResponseInvalid  = errors.New("gateway: response invalid")
)

// CredentialSource 提供访问令牌
// 令牌缺失或过期时返回 false，调用方回退为纯本地模式。
type CredentialSource interface {
	AccessToken() (string, bool)
}

// Client 远端商城 REST 客户端
// 无状态、不重试，所有失败原样上抛，由乐观更新层负责回滚。
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialSource
}

// New 创建远端客户端
func New(baseURL string, timeout time.Duration, credentials CredentialSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
	}
}

// do 发起一次请求并返回响应体
// authenticated 为 true 时必须携带有效令牌，否则直接返回 ErrNoCredential。
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, authenticated bool) ([]byte, error) {
	var token string
	if authenticated {
		t, ok := c.credentials.AccessToken()
		if !ok {
			return nil, ErrNoCredential
		}
		token = t
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal payload: %v", ErrRequestFailed, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusMethodNotAllowed:
		return nil, ErrMethodNotAllowed
	default:
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
}

// decodeData 解析响应数据
// 远端统一使用 {"data": ...} 信封，部分列表端点直接返回数组，两者都接受；
// 其余形态一律按 ErrResponseInvalid 拒绝，不做静默兜底。
func decodeData(body []byte, dest interface{}) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrResponseInvalid)
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}

// RemoteID 远端资源 ID
// 远端历史上对同一资源混用字符串与数字 ID，统一解析为字符串。
type RemoteID string

// UnmarshalJSON 解析字符串或数字形式的 ID
func (id *RemoteID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RemoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("remote id must be string or number: %w", err)
	}
	*id = RemoteID(n.String())
	return nil
}

// String 返回字符串形式
func (id RemoteID) String() string {
	return string(id)
}

// MarshalJSON 输出字符串形式
func (id RemoteID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// Quantity 远端数量字段（防御字符串形式的数字）
type Quantity int

// UnmarshalJSON 解析数字或字符串形式的数量
func (q *Quantity) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*q = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("quantity must be an integer: %w", err)
	}
	*q = Quantity(n)
	return nil
}
