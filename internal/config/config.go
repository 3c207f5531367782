package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 平台名（platforms 下的 key）
const (
	PlatformAirtable = "airtable"
	PlatformWebflow  = "webflow"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig            `mapstructure:"database"`  // 同步记录库配置（可选）
	Sync      SyncConfig                `mapstructure:"sync"`      // 同步调度配置
	Log       LogConfig                 `mapstructure:"log"`       // 日志配置
	Platforms map[string]PlatformConfig `mapstructure:"platforms"` // airtable / webflow 独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`            // 服务端口
	Mode           string   `mapstructure:"mode"`            // Gin运行模式：debug/release/test
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS 白名单
}

// DatabaseConfig PostgreSQL配置，DSN 为空时不记录同步历史
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Interval         time.Duration `mapstructure:"interval"`           // Airtable→Webflow 同步周期
	PublishInterval  time.Duration `mapstructure:"publish_interval"`   // 发布扫描周期
	RunOnStart       bool          `mapstructure:"run_on_start"`       // 启动时立即执行一次
	AllowEmptySource bool          `mapstructure:"allow_empty_source"` // 允许 Airtable 返回空表（会删除整个集合！）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// PlatformConfig 单个平台的独立配置
type PlatformConfig struct {
	BaseURL          string `mapstructure:"base_url"`           // API基础地址
	Timeout          int    `mapstructure:"timeout"`            // 请求超时（秒）
	AuthToken        string `mapstructure:"auth_token"`         // Bearer Token
	Proxy            string `mapstructure:"proxy"`              // 代理地址
	PageSize         int    `mapstructure:"page_size"`          // 分页大小
	BaseID           string `mapstructure:"base_id"`            // Airtable base
	Table            string `mapstructure:"table"`              // Airtable 表名
	CollectionID     string `mapstructure:"collection_id"`      // Webflow 集合ID
	SiteID           string `mapstructure:"site_id"`            // Webflow 站点ID（按名称解析集合时用）
	CollectionName   string `mapstructure:"collection_name"`    // Webflow 集合显示名
	PublishBatchSize int    `mapstructure:"publish_batch_size"` // 单次发布的最大条数
	MaxImageBytes    int64  `mapstructure:"max_image_bytes"`    // 图片指纹下载上限
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// .env 可不存在
	_ = godotenv.Load()
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml；文件不存在时使用默认值
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if cfg.Platforms == nil {
		cfg.Platforms = make(map[string]PlatformConfig)
	}
	fillPlatformDefaults(&cfg)

	// 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 6000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("sync.interval", 30*time.Second)
	v.SetDefault("sync.publish_interval", 15*time.Second)
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// fillPlatformDefaults 两个平台的默认地址与分页
func fillPlatformDefaults(cfg *Config) {
	at := cfg.Platforms[PlatformAirtable]
	if at.BaseURL == "" {
		at.BaseURL = "https://api.airtable.com/v0"
	}
	if at.Timeout <= 0 {
		at.Timeout = 30
	}
	if at.PageSize <= 0 || at.PageSize > 100 {
		at.PageSize = 100
	}
	cfg.Platforms[PlatformAirtable] = at

	wf := cfg.Platforms[PlatformWebflow]
	if wf.BaseURL == "" {
		wf.BaseURL = "https://api.webflow.com/v2"
	}
	if wf.Timeout <= 0 {
		wf.Timeout = 30
	}
	if wf.PageSize <= 0 || wf.PageSize > 100 {
		wf.PageSize = 100
	}
	if wf.PublishBatchSize <= 0 {
		wf.PublishBatchSize = 100
	}
	if wf.MaxImageBytes <= 0 {
		wf.MaxImageBytes = 20 << 20
	}
	cfg.Platforms[PlatformWebflow] = wf
}

// overrideFromEnv 用环境变量覆盖敏感配置，兼容旧脚本的变量名
func overrideFromEnv(cfg *Config) {
	at := cfg.Platforms[PlatformAirtable]
	if v := firstEnv("AIRTABLE_API_KEY", "airtableApiKey"); v != "" {
		at.AuthToken = v
	}
	if v := firstEnv("AIRTABLE_BASE_ID", "airtableBaseId"); v != "" {
		at.BaseID = v
	}
	if v := firstEnv("AIRTABLE_TABLE_NAME", "airtableClassTableName"); v != "" {
		at.Table = v
	}
	if v := os.Getenv("AIRTABLE_PROXY"); v != "" {
		at.Proxy = v
	}
	cfg.Platforms[PlatformAirtable] = at

	wf := cfg.Platforms[PlatformWebflow]
	if v := firstEnv("WEBFLOW_API_KEY", "webflowApiKey"); v != "" {
		wf.AuthToken = v
	}
	if v := firstEnv("WEBFLOW_COLLECTION_ID", "webflowCollectionId"); v != "" {
		wf.CollectionID = v
	}
	if v := os.Getenv("WEBFLOW_SITE_ID"); v != "" {
		wf.SiteID = v
	}
	if v := os.Getenv("WEBFLOW_PROXY"); v != "" {
		wf.Proxy = v
	}
	cfg.Platforms[PlatformWebflow] = wf

	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// Validate 启动前检查必填项
func (c *Config) Validate() error {
	var missing []string
	at := c.Platforms[PlatformAirtable]
	if at.AuthToken == "" {
		missing = append(missing, "platforms.airtable.auth_token")
	}
	if at.BaseID == "" {
		missing = append(missing, "platforms.airtable.base_id")
	}
	if at.Table == "" {
		missing = append(missing, "platforms.airtable.table")
	}
	wf := c.Platforms[PlatformWebflow]
	if wf.AuthToken == "" {
		missing = append(missing, "platforms.webflow.auth_token")
	}
	if wf.CollectionID == "" && (wf.SiteID == "" || wf.CollectionName == "") {
		missing = append(missing, "platforms.webflow.collection_id (或 site_id + collection_name)")
	}
	if c.Sync.Interval <= 0 || c.Sync.PublishInterval <= 0 {
		missing = append(missing, "sync.interval / sync.publish_interval")
	}
	if len(missing) > 0 {
		return fmt.Errorf("配置缺失: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Platform 获取平台配置副本
func (c *Config) Platform(name string) PlatformConfig {
	return c.Platforms[name]
}
