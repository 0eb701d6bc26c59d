package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "postgres", cfg.Database.Password)
	assert.Equal(t, "notifications", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "https://hst-api.wialon.com", cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)

	assert.Equal(t, 30*time.Minute, cfg.Workflow.DraftTTL)
	assert.Equal(t, "notify:events", cfg.Workflow.EventStream)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "15432")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("REMOTE_BASE_URL", "http://remote.test")
	os.Setenv("WORKFLOW_DRAFT_TTL_SECONDS", "60")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	// 验证环境变量覆盖
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 15432, cfg.Database.Port)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "http://remote.test", cfg.Remote.BaseURL)
	assert.Equal(t, time.Minute, cfg.Workflow.DraftTTL)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 清理环境变量
	os.Clearenv()
}

func TestGetEnvInt(t *testing.T) {
	os.Clearenv()
	assert.Equal(t, 42, getEnvInt("TEST_INT", 42))

	os.Setenv("TEST_INT", "7")
	assert.Equal(t, 7, getEnvInt("TEST_INT", 42))

	// 非法值回退默认值
	os.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 42))

	os.Unsetenv("TEST_INT")
}
