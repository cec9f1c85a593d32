package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App    `yaml:"app"`
	Server    Server `yaml:"server"`
	Database  DB     `yaml:"database"`
	Cache     Cache  `yaml:"cache"`
	Auth      Auth   `yaml:"auth"`
	RateLimit Limit  `yaml:"rate_limit"`
	Log       Log    `yaml:"log"`
	Portal    Portal `yaml:"portal"`
	Events    Events `yaml:"events"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
}

// 服务器配置
type Server struct {
	Port           int      `yaml:"port"`
	ReadTimeout    int      `yaml:"read_timeout"`
	WriteTimeout   int      `yaml:"write_timeout"`
	TrustedProxies []string `yaml:"trusted_proxies"` // 为空时不信任任何代理头，客户端IP取连接地址
}

// 数据库配置，driver 取值 mysql / sqlite
type DB struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Path     string `yaml:"path"` // sqlite 文件路径
}

// 缓存配置（Redis），Host 为空时不启用
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	AliasTTL int    `yaml:"alias_ttl_hours"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
	AdminPassword   string `yaml:"admin_password"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// 二维码门户配置
type Portal struct {
	BaseURL    string `yaml:"base_url"`
	PrettyURLs bool   `yaml:"pretty_urls"`
	AssetDir   string `yaml:"asset_dir"`
	QRSize     int    `yaml:"qr_size"`
}

// 扫码事件总线配置
type Events struct {
	Enabled    bool   `yaml:"enabled"`
	BufferSize int    `yaml:"buffer_size"`
	Topic      string `yaml:"topic"`
}

// 加载配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults 为未配置的字段设置默认值
func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "qr-portal"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "qrportal.db"
	}
	if c.Cache.AliasTTL == 0 {
		c.Cache.AliasTTL = 24
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.App.Name
	}
	if c.Auth.ExpirationHours == 0 {
		c.Auth.ExpirationHours = 24
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 120
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = c.RateLimit.Requests
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = "./logs/app.log"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
	if c.Portal.BaseURL == "" {
		c.Portal.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Portal.AssetDir == "" {
		c.Portal.AssetDir = "./data/qr"
	}
	if c.Portal.QRSize == 0 {
		c.Portal.QRSize = 512
	}
	if c.Events.BufferSize == 0 {
		c.Events.BufferSize = 256
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "qr.scanned"
	}
}
