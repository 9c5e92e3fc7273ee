package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"coursepage/internal/logger"

	"gopkg.in/yaml.v3"
)

// BuildDefaultUseEmbed 用于通过 -ldflags 注入发布版本的默认嵌入开关（"true"/"1" 为开启）
// 在未设置环境变量 COURSES_USE_EMBED 时，此值作为默认值生效
var BuildDefaultUseEmbed = ""

// 课程目录来源
const (
	SourceFS       = "fs"
	SourcePostgres = "postgres"
)

// Config 应用程序配置结构
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Page    PageConfig    `json:"page" yaml:"page"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Host           string   `json:"host" yaml:"host"`                     // 服务器监听地址
	Port           int      `json:"port" yaml:"port"`                     // 服务器监听端口
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"` // CORS 允许的来源
}

// CatalogConfig 课程目录配置
// Source 为 fs 时从磁盘或嵌入式FS读取，为 postgres 时从数据库读取
type CatalogConfig struct {
	Source         string `json:"source" yaml:"source"`
	Dir            string `json:"dir" yaml:"dir"`                       // 课程文件目录路径
	UseEmbed       bool   `json:"useEmbed" yaml:"useEmbed"`             // 是否使用嵌入式FS
	Reload         bool   `json:"reload" yaml:"reload"`                 // 是否启用热重载
	ReloadInterval int    `json:"reloadInterval" yaml:"reloadInterval"` // 热重载轮询间隔（秒）
	DatabaseURL    string `json:"databaseUrl" yaml:"databaseUrl"`
}

// PageConfig 课程详情页展示配置
type PageConfig struct {
	DescriptionLimit int    `json:"descriptionLimit" yaml:"descriptionLimit"` // 描述截断长度（字符）
	Educator         string `json:"educator" yaml:"educator"`                 // 课程未指定讲师时的默认名称
}

// LogConfig 日志系统相关配置
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // 日志级别 (debug, info, warn, error)
	Format string `json:"format" yaml:"format"` // 日志格式 (json, text)
}

// ReloadEvery 返回热重载轮询间隔
func (c CatalogConfig) ReloadEvery() time.Duration {
	return time.Duration(c.ReloadInterval) * time.Second
}

// Default 返回未叠加任何外部输入的默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           3006,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Catalog: CatalogConfig{
			Source:         SourceFS,
			Dir:            "./courses",
			UseEmbed:       BuildDefaultUseEmbed == "true" || BuildDefaultUseEmbed == "1",
			Reload:         true,
			ReloadInterval: 5,
		},
		Page: PageConfig{
			DescriptionLimit: 300,
			Educator:         "Sudheer",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 加载配置：默认值 → CONFIG_FILE 指向的 YAML 文件 → 环境变量
// 支持的环境变量:
//   - SERVER_HOST / SERVER_PORT / CORS_ALLOWED_ORIGINS（逗号分隔）
//   - CATALOG_SOURCE (fs|postgres) / DATABASE_URL
//   - COURSE_DIR / COURSES_USE_EMBED / COURSES_RELOAD / COURSES_RELOAD_INTERVAL
//   - PAGE_DESCRIPTION_LIMIT / PAGE_EDUCATOR
//   - LOG_LEVEL / LOG_FORMAT
//
// 配置校验失败时返回错误
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Catalog.Source = strings.ToLower(getEnv("CATALOG_SOURCE", cfg.Catalog.Source))
	cfg.Catalog.DatabaseURL = getEnv("DATABASE_URL", cfg.Catalog.DatabaseURL)
	cfg.Catalog.Dir = getEnv("COURSE_DIR", cfg.Catalog.Dir)
	cfg.Catalog.UseEmbed = getEnvBool("COURSES_USE_EMBED", cfg.Catalog.UseEmbed)
	cfg.Catalog.Reload = getEnvBool("COURSES_RELOAD", cfg.Catalog.Reload)
	cfg.Catalog.ReloadInterval = getEnvInt("COURSES_RELOAD_INTERVAL", cfg.Catalog.ReloadInterval)

	cfg.Page.DescriptionLimit = getEnvInt("PAGE_DESCRIPTION_LIMIT", cfg.Page.DescriptionLimit)
	cfg.Page.Educator = getEnv("PAGE_EDUCATOR", cfg.Page.Educator)

	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", cfg.Log.Format))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	// 应用全局日志级别与格式，确保后续新建的 Logger 统一遵循配置
	logger.SetGlobalLevel(logger.ParseLogLevel(cfg.Log.Level))
	logger.SetGlobalFormat(cfg.Log.Format)

	return cfg, nil
}

// loadFile 将 YAML 配置文件叠加到 cfg 上，文件中未出现的字段保持原值
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// validateConfig 验证配置的有效性
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d, must be between 1 and 65535", cfg.Server.Port)
	}

	switch cfg.Catalog.Source {
	case SourceFS:
		// 仅在非嵌入模式下检查课程目录是否存在
		if !cfg.Catalog.UseEmbed {
			if _, err := os.Stat(cfg.Catalog.Dir); os.IsNotExist(err) {
				return fmt.Errorf("course directory does not exist: %s", cfg.Catalog.Dir)
			}
		}
	case SourcePostgres:
		if cfg.Catalog.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when catalog source is %s", SourcePostgres)
		}
	default:
		return fmt.Errorf("invalid catalog source: %s, must be one of: fs, postgres", cfg.Catalog.Source)
	}

	if cfg.Catalog.Reload && cfg.Catalog.ReloadInterval < 1 {
		return fmt.Errorf("invalid reload interval: %d, must be positive", cfg.Catalog.ReloadInterval)
	}

	if cfg.Page.DescriptionLimit < 1 {
		return fmt.Errorf("invalid description limit: %d, must be positive", cfg.Page.DescriptionLimit)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s, must be one of: debug, info, warn, error", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be one of: json, text", cfg.Log.Format)
	}

	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 获取整数类型的环境变量，如果不存在或转换失败则返回默认值
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		tempLogger := logger.NewLogger(logger.WARN)
		tempLogger.Warn("failed to parse %s as integer: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量，如果不存在或转换失败则返回默认值
// 支持的布尔值格式: true, false, 1, 0, t, f, T, F, TRUE, FALSE
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		tempLogger := logger.NewLogger(logger.WARN)
		tempLogger.Warn("failed to parse %s as boolean: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvList 获取逗号分隔的列表类型环境变量，忽略空项
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
