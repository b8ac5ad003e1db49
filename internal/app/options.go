package app

import (
	"os"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：api 只起本地 API，refresh 只起令牌保活，all 两者都起。
const (
	ModeAll     = "all"
	ModeAPI     = "api"
	ModeRefresh = "refresh"
)

// ValidMode 是否为可识别的启动模式
func ValidMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeRefresh:
		return true
	}
	return false
}

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		// 本地进程没有在途外部请求要等，5 秒足够排空
		opts.ShutdownTimeout = 5 * time.Second
	}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
