package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/storefront-next/internal/logger"
)

// HTTPService 本地 UI API 服务
type HTTPService struct {
	addr   string
	server *http.Server
}

// NewHTTPService 创建本地 API 服务
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "local-api"
}

// Start 启动服务，阻塞直到监听结束
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	logger.Infow("local_api_listen", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅停止服务
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
