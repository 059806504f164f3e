package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	BaseURL    string
	CORSOrigin string
	TrustProxy bool

	// YooKassa
	YKSShopID       string
	YKSSecretKey    string
	YKSWebhookToken string
	YKSSendReceipt  bool
	YKSAPIURL       string
	GatewayTimeout  time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	AdminEmail   string
	NotifyWorker int

	// Support staff
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		TrustProxy: os.Getenv("TRUST_PROXY") == "true",

		YKSShopID:       os.Getenv("YKS_SHOP_ID"),
		YKSSecretKey:    os.Getenv("YKS_SECRET_KEY"),
		YKSWebhookToken: os.Getenv("YKS_WEBHOOK_TOKEN"),
		YKSSendReceipt:  os.Getenv("YKS_SEND_RECEIPT") == "true",
		YKSAPIURL:       getEnv("YKS_API_URL", "https://api.yookassa.ru/v3"),
		GatewayTimeout:  getDuration("GATEWAY_TIMEOUT", 15*time.Second),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 465),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		AdminEmail:   os.Getenv("ADMIN_EMAIL"),
		NotifyWorker: getInt("NOTIFY_WORKERS", 2),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
