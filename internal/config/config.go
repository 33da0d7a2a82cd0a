package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	ProxyHeader string

	DatabaseURL    string
	MigrationsPath string

	RedisURL        string
	ThrottleBackend string

	JWTSecret      string
	JWTOwnerExpiry time.Duration
	JWTAdminExpiry time.Duration

	AdminLogin    string
	AdminPassword string

	HCaptchaSecret    string
	HCaptchaSiteKey   string
	HCaptchaVerifyURL string
	HCaptchaTimeout   time.Duration

	TelegramBotToken string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	SenderLimitRegular  int
	SenderLimitCritical int
	OwnerLimitPerDay    int
	SendDelay           time.Duration
	DispatchTimeout     time.Duration

	APIRateLimitRPS   float64
	APIRateLimitBurst int

	MinIOEnabled        bool
	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicUseSSL   bool

	CORSOrigins string
	SiteURL     string
	DefaultLang string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		ProxyHeader: getEnv("PROXY_HEADER", ""),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		ThrottleBackend: getEnv("THROTTLE_BACKEND", "redis"),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTOwnerExpiry: getDurationEnv("JWT_OWNER_EXPIRY", 30*24*time.Hour),
		JWTAdminExpiry: getDurationEnv("JWT_ADMIN_EXPIRY", 7*24*time.Hour),

		AdminLogin:    getEnv("ADMIN_LOGIN", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		HCaptchaSecret:    getEnv("HCAPTCHA_SECRET", ""),
		HCaptchaSiteKey:   getEnv("HCAPTCHA_SITEKEY", ""),
		HCaptchaVerifyURL: getEnv("HCAPTCHA_VERIFY_URL", "https://hcaptcha.com/siteverify"),
		HCaptchaTimeout:   getDurationEnv("HCAPTCHA_TIMEOUT", 5*time.Second),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: getEnv("VAPID_SUBSCRIBER", "mailto:exelix@localhost"),

		SenderLimitRegular:  getIntEnv("SENDER_LIMIT_REGULAR", 3),
		SenderLimitCritical: getIntEnv("SENDER_LIMIT_CRITICAL", 2),
		OwnerLimitPerDay:    getIntEnv("OWNER_LIMIT_PER_DAY", 10),
		SendDelay:           getDurationEnv("SEND_DELAY", 4*time.Second),
		DispatchTimeout:     getDurationEnv("DISPATCH_TIMEOUT", 15*time.Second),

		APIRateLimitRPS:   getFloatEnv("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst: getIntEnv("API_RATE_LIMIT_BURST", 20),

		MinIOEnabled:        getBoolEnv("MINIO_ENABLED", true),
		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOPublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "exelix-photos"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOPublicUseSSL:   getBoolEnv("MINIO_PUBLIC_USE_SSL", true),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		SiteURL:     getEnv("SITE_URL", getEnv("API_URL", "http://localhost:5173")),
		DefaultLang: getEnv("DEFAULT_LANG", "ru"),
	}
}

// CaptchaEnabled requires both halves of the key pair.
func (c *Config) CaptchaEnabled() bool {
	return c.HCaptchaSecret != "" && c.HCaptchaSiteKey != ""
}

func (c *Config) AdminJWTSecret() string {
	return c.JWTSecret + "-admin"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
