// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret は開発環境専用のフォールバック署名鍵。
// 本番環境（APP_ENV=production）ではこの値での起動を拒否する。
const DefaultSessionSecret = "insecure-dev-session-secret-0123456789abcdef"

// minSessionSecretBytes はHS256署名鍵に要求する最小バイト長。
const minSessionSecretBytes = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Environment
	AppEnv string

	// Database
	DatabaseURL string

	// Session
	SessionSecret string
	SessionTTL    time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitLogin   int
}

// Production はConfigが本番環境向けかを返す。
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（未設定の変数のみ反映される）。
// 必須環境変数の欠落、および本番環境での安全でない署名鍵はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。存在しなければ無視する。
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnvString("APP_ENV", "development")

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.SessionSecret = getEnvString("SESSION_SECRET", DefaultSessionSecret)
	if err := validateSessionSecret(cfg); err != nil {
		return nil, err
	}

	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)

	return cfg, nil
}

// validateSessionSecret は署名鍵の安全性を検証する。
// フォールバック鍵のまま本番環境で起動することは設定エラーとして扱う。
func validateSessionSecret(cfg *Config) error {
	if len(cfg.SessionSecret) < minSessionSecretBytes {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretBytes)
	}
	if cfg.Production() && cfg.SessionSecret == DefaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be overridden in production")
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
