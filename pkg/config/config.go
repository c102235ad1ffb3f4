package config

import (
	"log"
	"os"
	"time"

	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/util"
)

// Config 服务全局配置，全部来自环境变量或 .env 文件
type Config struct {
	Addr          string `env:"ADDR"`
	Mode          string `env:"MODE"`
	APIPrefix     string `env:"API_PREFIX"`
	StorageDriver string `env:"STORAGE_DRIVER"`
	DBDriver      string `env:"DB_DRIVER"`
	DSN           string `env:"DSN"`
	Log           logger.LogConfig

	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	LLMProvider  string        `env:"LLM_PROVIDER"`
	LLMApiKey    string        `env:"LLM_API_KEY"`
	LLMBaseURL   string        `env:"LLM_BASE_URL"`
	LLMModel     string        `env:"LLM_MODEL"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT"`

	CacheType     string `env:"CACHE_TYPE"`
	CacheLayered  bool   `env:"CACHE_LAYERED"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	RateLimit       string `env:"RATE_LIMIT"`
	MetricsEnabled  bool   `env:"METRICS_ENABLED"`
	SearchEnabled   bool   `env:"SEARCH_ENABLED"`
	LanguageEnabled bool   `env:"LANGUAGE_ENABLED"`

	BackupEnabled  bool   `env:"BACKUP_ENABLED"`
	BackupPath     string `env:"BACKUP_PATH"`
	BackupSchedule string `env:"BACKUP_SCHEDULE"`
}

var GlobalConfig *Config

// Load 加载 .env 文件与环境变量到 GlobalConfig
func Load() error {
	// 1. 根据环境加载 .env 文件
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. 组装全局配置
	GlobalConfig = &Config{
		Addr:          util.GetEnvOr("ADDR", ":5000"),
		Mode:          util.GetEnvOr("MODE", "debug"),
		APIPrefix:     util.GetEnvOr("API_PREFIX", "/api"),
		StorageDriver: util.GetEnvOr("STORAGE_DRIVER", "memory"),
		DBDriver:      util.GetEnvOr("DB_DRIVER", "sqlite"),
		DSN:           util.GetEnv("DSN"),
		Log: logger.LogConfig{
			Level:      util.GetEnvOr("LOG_LEVEL", "info"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		// 兼容前端遗留的 VITE_ 前缀
		GeminiAPIKey: util.GetEnvOr("GEMINI_API_KEY", util.GetEnv("VITE_GEMINI_API_KEY")),
		LLMProvider:  util.GetEnvOr("LLM_PROVIDER", "gemini"),
		LLMApiKey:    util.GetEnv("LLM_API_KEY"),
		LLMBaseURL:   util.GetEnv("LLM_BASE_URL"),
		LLMModel:     util.GetEnv("LLM_MODEL"),
		LLMTimeout:   util.GetDurationEnv("LLM_TIMEOUT", 30*time.Second),

		CacheType:     util.GetEnvOr("CACHE_TYPE", "local"),
		CacheLayered:  util.GetBoolEnv("CACHE_LAYERED"),
		RedisAddr:     util.GetEnvOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: util.GetEnv("REDIS_PASSWORD"),
		RedisDB:       int(util.GetIntEnv("REDIS_DB")),

		RateLimit:       util.GetEnvOr("RATE_LIMIT", "100-M"),
		MetricsEnabled:  util.GetBoolEnvOr("METRICS_ENABLED", true),
		SearchEnabled:   util.GetBoolEnvOr("SEARCH_ENABLED", true),
		LanguageEnabled: util.GetBoolEnvOr("LANGUAGE_ENABLED", true),

		BackupEnabled:  util.GetBoolEnv("BACKUP_ENABLED"),
		BackupPath:     util.GetEnvOr("BACKUP_PATH", "./backups"),
		BackupSchedule: util.GetEnvOr("BACKUP_SCHEDULE", "0 3 * * *"),
	}
	return nil
}

// LLMKey 当前 provider 使用的密钥，gemini 优先读取 GEMINI_API_KEY
func (c *Config) LLMKey() string {
	if c.LLMProvider == "gemini" && c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.LLMApiKey
}
