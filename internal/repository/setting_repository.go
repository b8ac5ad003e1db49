package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// SettingRepository 会话设置数据访问接口
type SettingRepository interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// Get 读取设置值
func (r *GormSettingRepository) Get(key string) (string, bool, error) {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set 写入设置值
func (r *GormSettingRepository) Set(key, value string) error {
	var existing models.Setting
	err := r.db.Where("key = ?", key).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&existing).Update("value", value).Error
}

// Delete 删除设置值
func (r *GormSettingRepository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&models.Setting{}).Error
}
