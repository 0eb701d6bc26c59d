package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/terminusgps/terminusgps-notifications/pkg/database"
	"github.com/terminusgps/terminusgps-notifications/pkg/redis"
)

// Config 通知配置服务配置
type Config struct {
	Database database.Config
	Redis    redis.Config

	// HTTP 服务配置
	HTTP struct {
		Addr string
	}

	// 远程平台 API 配置
	Remote struct {
		BaseURL      string        // 远程平台 API 地址
		CallbackURL  string        // 通知投递回调地址（短信/语音网关）
		ResourceName string        // 通知资源名称（首次使用时按名解析）
		Timeout      time.Duration // 单次请求超时
	}

	// 配置向导
	Workflow struct {
		DraftTTL    time.Duration // 草稿在 Redis 中的存活时间
		EventStream string        // 通知生命周期事件流名称
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
// 优先读取环境变量；存在 .env 文件时先行加载（不覆盖已设置的变量）
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "notifications")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Remote.BaseURL = getEnv("REMOTE_BASE_URL", "https://hst-api.wialon.com")
	cfg.Remote.CallbackURL = getEnv("REMOTE_CALLBACK_URL", "https://api.terminusgps.com/v2/notify")
	cfg.Remote.ResourceName = getEnv("REMOTE_RESOURCE_NAME", "terminusgps_notifications")
	cfg.Remote.Timeout = time.Duration(getEnvInt("REMOTE_TIMEOUT_SECONDS", 30)) * time.Second

	cfg.Workflow.DraftTTL = time.Duration(getEnvInt("WORKFLOW_DRAFT_TTL_SECONDS", 1800)) * time.Second
	cfg.Workflow.EventStream = getEnv("WORKFLOW_EVENT_STREAM", "notify:events")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
