package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server Server      `mapstructure:"server"`
	Log    LogConfig   `mapstructure:"log"`
	State  StateConfig `mapstructure:"state"`
	Remote Remote      `mapstructure:"remote"`
	Redis  RedisConfig `mapstructure:"redis"`
	CORS   CORSConfig  `mapstructure:"cors"`
}

// Server 本地 API 服务配置
type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// StateConfig 本地会话状态存储配置
type StateConfig struct {
	DSN string `mapstructure:"dsn"` // sqlite 文件路径
}

// Remote 远端商城 API 配置
type Remote struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout 返回请求超时时间
func (r Remote) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CORSConfig 跨域配置（本地 UI 访问）
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")   // 如果从 cmd/agent 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", "7180")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "agent.log")
	viper.SetDefault("log.max_size_mb", 50)
	viper.SetDefault("log.max_backups", 5)
	viper.SetDefault("log.max_age_days", 14)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("state.dsn", "./db/storefront.db")
	viper.SetDefault("remote.base_url", "")
	viper.SetDefault("remote.timeout_seconds", 15)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "sf")
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allow_credentials", false)
	viper.SetDefault("cors.max_age", 3600)

	if err := viper.ReadInConfig(); err != nil {
		// 配置文件缺失时使用默认值启动
		fmt.Printf("config file not found, using defaults: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Printf("config unmarshal failed: %v\n", err)
		return &Config{}
	}
	cfg.normalize()
	return &cfg
}

func (c *Config) normalize() {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
}

// Validate 校验启动所需的关键配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	if strings.TrimSpace(c.State.DSN) == "" {
		return fmt.Errorf("state.dsn is required")
	}
	return nil
}
