package app

import (
	"errors"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/router"
	"github.com/storefront-next/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !ValidMode(mode) {
		return nil, errors.New("unknown mode: " + mode)
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化令牌保活服务
	if mode == ModeAll || mode == ModeRefresh {
		refresher, err := worker.NewRefresherService(container)
		if err != nil {
			return nil, err
		}
		services = append(services, refresher)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
