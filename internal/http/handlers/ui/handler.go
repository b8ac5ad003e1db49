package ui

import "github.com/storefront-next/internal/provider"

// Handler 本地 UI 接口处理器入口
// 说明：该处理器只服务本机界面进程，不对外网暴露。
type Handler struct {
	*provider.Container
}

// New 创建 UI 处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
