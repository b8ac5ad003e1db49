package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type staticCredentials struct {
	token string
	ok    bool
}

func (c staticCredentials) AccessToken() (string, bool) {
	return c.token, c.ok
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second, staticCredentials{token: "test-token", ok: true}), server
}

func TestFetchCartDecodesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart/cartitems/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"data":[{"id":7,"product":{"id":"p1","name":"Widget","price":"9.90"},"quantity":"2","price":9.90,"cart":3}]}`))
	}))

	lines, err := client.FetchCart(context.Background())
	if err != nil {
		t.Fatalf("fetch cart failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	line := lines[0]
	// 数字 ID、字符串数量等宽松形态都要归一
	if line.ID != "7" || line.CartID != "3" {
		t.Fatalf("expected normalized ids, got %+v", line)
	}
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}
	if line.Product.ID != "p1" {
		t.Fatalf("expected product p1, got %s", line.Product.ID)
	}
}

func TestFetchCartAcceptsBareArray(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"11","product":{"id":"p2","name":"Gadget","price":"1.50"},"quantity":1,"price":"1.50","cart":"3"}]`))
	}))

	lines, err := client.FetchCart(context.Background())
	if err != nil {
		t.Fatalf("fetch cart failed: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != "11" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestFetchCartRejectsInvalidLine(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"","quantity":0}]}`))
	}))

	if _, err := client.FetchCart(context.Background()); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}

func TestFetchCartWithoutCredential(t *testing.T) {
	client := New("http://unused.invalid", time.Second, staticCredentials{ok: false})

	if _, err := client.FetchCart(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusMethodNotAllowed, ErrMethodNotAllowed},
		{http.StatusInternalServerError, ErrRequestFailed},
	}
	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		if _, err := client.FetchCart(context.Background()); !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestAddCartItemValidatesInput(t *testing.T) {
	client := New("http://unused.invalid", time.Second, staticCredentials{token: "t", ok: true})

	if err := client.AddCartItem(context.Background(), "", 1); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected validation error for empty product, got %v", err)
	}
	if err := client.AddCartItem(context.Background(), "p1", 0); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestClearCartBulkEndpoint(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.ClearCart(context.Background(), "3"); err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "DELETE /cart/3/clear/" {
		t.Fatalf("expected single bulk delete, got %v", paths)
	}
}

func TestClearCartFallsBackToPerLineDelete(t *testing.T) {
	var mu sync.Mutex
	var deletes []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/cart/3/clear/":
			// 旧版服务端没有批量清空端点
			w.WriteHeader(http.StatusMethodNotAllowed)
		case r.Method == http.MethodGet && r.URL.Path == "/cart/cartitems/":
			w.Write([]byte(`{"data":[
				{"id":"1","product":{"id":"p1","name":"A","price":"1.00"},"quantity":1,"price":"1.00","cart":"3"},
				{"id":"2","product":{"id":"p2","name":"B","price":"2.00"},"quantity":1,"price":"2.00","cart":"3"}
			]}`))
		case r.Method == http.MethodDelete:
			deletes = append(deletes, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := client.ClearCart(context.Background(), "3"); err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}
	if len(deletes) != 2 {
		t.Fatalf("expected 2 per-line deletes, got %v", deletes)
	}
}

func TestClearCartPerLineFailureSwallowed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/cart/3/clear/":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodGet && r.URL.Path == "/cart/cartitems/":
			w.Write([]byte(`{"data":[{"id":"1","product":{"id":"p1","name":"A","price":"1.00"},"quantity":1,"price":"1.00","cart":"3"}]}`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	// 单行删除失败只记日志，不上抛
	if err := client.ClearCart(context.Background(), "3"); err != nil {
		t.Fatalf("per-line failure must be swallowed, got %v", err)
	}
}
