package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/storefront-next/internal/app"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := cfg.Validate(); err != nil {
		stdLog.Fatalf("配置校验失败: %v", err)
	}

	// 初始化本地状态库
	if err := models.InitDB(cfg.State.DSN); err != nil {
		stdLog.Fatalf("本地状态库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("本地状态库迁移失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, refresh")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + ansiBold + "Storefront Session Agent" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
