package models

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化本地状态数据库
// 会话状态是单用户嵌入式存储，固定使用 sqlite。
func InitDB(dsn string) error {
	if dir := filepath.Dir(dsn); dir != "" && dir != "." && dir != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir failed: %w", err)
		}
	}
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	// sqlite 单写者
	sqlDB.SetMaxOpenConns(1)
	return nil
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate() error {
	return DB.AutoMigrate(
		&Product{},
		&CartLine{},
		&FavoriteItem{},
		&Order{},
		&OrderItem{},
		&Setting{},
	)
}
