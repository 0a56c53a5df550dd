// Package config は環境変数と .env ファイルから設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"jo3qma.com/marketplace/internal/infrastructure/httpx"
	"jo3qma.com/marketplace/internal/infrastructure/kakao"
)

// Config はクライアントの実行時設定です
type Config struct {
	APIBaseURL     string
	KakaoAPIKey    string
	KakaoBaseURL   string
	StoragePath    string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	BearerPrefix   bool
	LogLevel       slog.Level
}

// LookupFunc は環境変数の参照方法です（os.LookupEnv と同じ形）
type LookupFunc func(key string) (string, bool)

// Load はカレントディレクトリの .env があれば読み込んでから、環境変数で設定を作成します
// すでに設定されている環境変数は .env で上書きしません
func Load(logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}
	return FromEnv(os.LookupEnv, logger)
}

// FromEnv は lookup から設定を作成します
// 不正な値は既定値に戻して警告を出します。APIのベースURLがない場合はエラーです
func FromEnv(lookup LookupFunc, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	env := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	cfg := &Config{
		APIBaseURL:     env("MARKET_API_BASEURL", "EXPO_PUBLIC_HONO_API_BASEURL"),
		KakaoAPIKey:    env("KAKAO_RESTAPI_KEY", "EXPO_PUBLIC_KAKAO_RESTAPI_KEY"),
		KakaoBaseURL:   env("KAKAO_API_BASEURL"),
		StoragePath:    env("MARKET_STORAGE_PATH"),
		RequestTimeout: httpx.DefaultTimeout,
		UploadTimeout:  httpx.UploadTimeout,
		LogLevel:       slog.LevelInfo,
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("MARKET_API_BASEURL is required")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return nil, fmt.Errorf("MARKET_API_BASEURL must be an http(s) URL: %q", cfg.APIBaseURL)
	}
	if cfg.KakaoBaseURL == "" {
		cfg.KakaoBaseURL = kakao.DefaultBaseURL
	}
	if cfg.KakaoAPIKey == "" {
		logger.Warn("KAKAO_RESTAPI_KEY is not set. Address lookup will be unavailable.")
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath(logger)
	}

	if v := env("MARKET_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = duration(logger, "MARKET_REQUEST_TIMEOUT", v, httpx.DefaultTimeout)
	}
	if v := env("MARKET_UPLOAD_TIMEOUT"); v != "" {
		cfg.UploadTimeout = duration(logger, "MARKET_UPLOAD_TIMEOUT", v, httpx.UploadTimeout)
	}
	if v := env("MARKET_BEARER_PREFIX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("Invalid MARKET_BEARER_PREFIX. Falling back to default.", "value", v)
		}
		cfg.BearerPrefix = b
	}
	if v := env("MARKET_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			logger.Warn("Invalid MARKET_LOG_LEVEL. Falling back to info.", "value", v)
			cfg.LogLevel = slog.LevelInfo
		}
	}

	return cfg, nil
}

func duration(logger *slog.Logger, key, v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("Invalid duration. Falling back to default.", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func defaultStoragePath(logger *slog.Logger) string {
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("failed to resolve home directory, storing session in the working directory", "error", err)
		return filepath.Join(".market", "device.db")
	}
	return filepath.Join(home, ".market", "device.db")
}
