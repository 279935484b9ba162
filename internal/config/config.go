package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	DatabaseURL   string
	AutoMigrate   bool
	LogLevel      string
	JWTSecret     string
	FrontendURL   string
	Redis         RedisConfig
	Gateway       GatewayConfig
	SMTP          SMTPConfig
	Minio         MinioConfig
	AutoGenerate  bool
	CallbackLimit int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GatewayConfig struct {
	APIURL         string
	UID            string
	Password       string
	Secret         string
	CallbackURL    string
	TimeoutSeconds int
}

func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Enabled reports whether callback archiving is configured.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

// Load reads .env (if present), then the environment, then the optional
// gateway TOML file named by GATEWAY_CONFIG_FILE.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getBool("DB_AUTO_MIGRATE", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Gateway: GatewayConfig{
			APIURL:         getEnv("TAHSEEEL_API_URL", "https://lounge.tahseeel.com/api/"),
			UID:            getEnv("TAHSEEEL_UID", ""),
			Password:       getEnv("TAHSEEEL_PWD", ""),
			Secret:         getEnv("TAHSEEEL_SECRET", ""),
			CallbackURL:    getEnv("TAHSEEEL_CALLBACK_URL", ""),
			TimeoutSeconds: getInt("TAHSEEEL_TIMEOUT_SECONDS", 30),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:    getBool("MINIO_USE_SSL", false),
			Bucket:    getEnv("MINIO_CALLBACK_BUCKET", "payment-callbacks"),
		},
		AutoGenerate:  getBool("PAYMENT_AUTOGEN_ENABLED", false),
		CallbackLimit: getInt("CALLBACK_RATE_LIMIT", 60),
	}

	if path := getEnv("GATEWAY_CONFIG_FILE", ""); path != "" {
		file, err := LoadGatewayFile(path)
		if err != nil {
			return nil, err
		}
		file.apply(&cfg.Gateway)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Gateway.TimeoutSeconds <= 0 {
		cfg.Gateway.TimeoutSeconds = 30
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func getBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}
