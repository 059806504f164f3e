package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("APP_ENV", "test")
		t.Setenv("YKS_SHOP_ID", "shop-1")
		t.Setenv("YKS_SECRET_KEY", "yks_secret")
		t.Setenv("YKS_WEBHOOK_TOKEN", "hook-token")
		t.Setenv("YKS_SEND_RECEIPT", "true")
		t.Setenv("GATEWAY_TIMEOUT", "5s")
		t.Setenv("SMTP_PORT", "587")
		t.Setenv("TRUST_PROXY", "true")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "shop-1", cfg.YKSShopID)
		assert.Equal(t, "yks_secret", cfg.YKSSecretKey)
		assert.Equal(t, "hook-token", cfg.YKSWebhookToken)
		assert.True(t, cfg.YKSSendReceipt)
		assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, 587, cfg.SMTPPort)
		assert.True(t, cfg.TrustProxy)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("BASE_URL", "")
		t.Setenv("YKS_API_URL", "")
		t.Setenv("YKS_SEND_RECEIPT", "")
		t.Setenv("GATEWAY_TIMEOUT", "not-a-duration")
		t.Setenv("SMTP_PORT", "abc")

		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
		assert.Equal(t, "https://api.yookassa.ru/v3", cfg.YKSAPIURL)
		assert.False(t, cfg.YKSSendReceipt)
		assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, 465, cfg.SMTPPort)
	})
}
