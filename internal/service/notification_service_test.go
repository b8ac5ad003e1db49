package service

import (
	"fmt"
	"testing"

	"github.com/storefront-next/internal/constants"
)

func TestNotificationNewestFirst(t *testing.T) {
	svc := NewNotificationService()
	svc.Success(constants.NotifyTopicCart, "first")
	svc.Error(constants.NotifyTopicCart, "second")

	items := svc.List()
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}
	if items[0].Message != "second" || items[1].Message != "first" {
		t.Fatalf("expected newest first, got %+v", items)
	}
	if items[0].Level != constants.NotifyLevelError {
		t.Fatalf("expected error level, got %s", items[0].Level)
	}
}

func TestNotificationRingBufferCapped(t *testing.T) {
	svc := NewNotificationService()
	for i := 0; i < constants.NotificationRingSize+10; i++ {
		svc.Success(constants.NotifyTopicCart, fmt.Sprintf("msg-%d", i))
	}

	items := svc.List()
	if len(items) != constants.NotificationRingSize {
		t.Fatalf("expected capped at %d, got %d", constants.NotificationRingSize, len(items))
	}
	if items[0].Message != fmt.Sprintf("msg-%d", constants.NotificationRingSize+9) {
		t.Fatalf("expected latest message kept, got %s", items[0].Message)
	}
}

func TestNotificationClear(t *testing.T) {
	svc := NewNotificationService()
	svc.Success(constants.NotifyTopicAuth, "hello")
	svc.Clear()
	if items := svc.List(); len(items) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(items))
	}
}
