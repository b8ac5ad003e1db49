package service

import (
	"sync"
	"time"

	"github.com/storefront-next/internal/constants"

	"github.com/google/uuid"
)

// Notification 用户可见通知
// 每个购物车/收藏变更要么产生一条成功通知，要么产生一条失败通知；
// 明确标记为尽力而为的路径（结账清空、登录合并单行失败）除外。
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Topic     string    `json:"topic"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService 通知中心
// 内存环形缓冲，只保留最近 N 条，UI 轮询读取。
type NotificationService struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewNotificationService 创建通知中心
func NewNotificationService() *NotificationService {
	return &NotificationService{limit: constants.NotificationRingSize}
}

// Success 记录成功通知
func (s *NotificationService) Success(topic, message string) {
	s.push(constants.NotifyLevelSuccess, topic, message)
}

// Error 记录失败通知
func (s *NotificationService) Error(topic, message string) {
	s.push(constants.NotifyLevelError, topic, message)
}

// List 返回通知列表（新的在前）
func (s *NotificationService) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	for i, item := range s.items {
		out[len(s.items)-1-i] = item
	}
	return out
}

// Clear 清空通知
func (s *NotificationService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *NotificationService) push(level, topic, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Topic:     topic,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(s.items) > s.limit {
		s.items = s.items[len(s.items)-s.limit:]
	}
}
