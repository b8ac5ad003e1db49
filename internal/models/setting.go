package models

// Setting 会话设置表（键值对存储）
// 存放激活身份键、令牌等跨重启保留的会话元数据。
type Setting struct {
	Key   string `gorm:"primarykey" json:"key"`  // 配置键
	Value string `gorm:"type:text" json:"value"` // 配置值
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
