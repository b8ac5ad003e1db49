package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可启停的长驻服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 按注册顺序启动服务，退出时逆序停止
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 启动所有服务，任一服务退出或上下文取消时整体收束
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.S()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(r.services))
	for _, svc := range r.services {
		if svc == nil {
			return errors.New("service is nil")
		}
		service := svc
		log.Infow("service_start", "service", service.Name())
		go func() {
			if err := service.Start(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", service.Name(), err)
				return
			}
			errCh <- nil
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case err := <-errCh:
		runErr = err
	}
	cancel()

	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	// 逆序停止：先停对外的 API，再停后台任务
	for i := len(r.services) - 1; i >= 0; i-- {
		service := r.services[i]
		if err := service.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", service.Name(), "error", err)
			continue
		}
		log.Infow("service_stop", "service", service.Name())
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
