// Package config はサーバーの設定を読み込みます。
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// DatabaseConfig はデータベース接続の設定です。
type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite3" または "mysql"
	Path   string `toml:"path"`   // sqlite3 のデータベースファイル

	// mysql 用
	User     string `toml:"user"`
	Password string `toml:"password"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Name     string `toml:"name"`
}

// CORSConfig はクロスオリジンリクエストの設定です。
type CORSConfig struct {
	AllowOrigin string `toml:"allow_origin"`
}

// Config はアプリケーション全体の設定です。
type Config struct {
	Port     string         `toml:"port"`
	LogLevel string         `toml:"log_level"`
	GinMode  string         `toml:"gin_mode"`
	DB       DatabaseConfig `toml:"database"`
	CORS     CORSConfig     `toml:"cors"`
}

// Default はデフォルト値の Config を返します。
func Default() *Config {
	return &Config{
		Port:     "8000",
		LogLevel: "info",
		GinMode:  "release",
		DB: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "./todos.db",
			Host:   "localhost",
			Port:   "3306",
		},
		CORS: CORSConfig{
			AllowOrigin: "http://localhost:5173",
		},
	}
}

// Load はデフォルト値、CONFIG_FILE で指定された TOML ファイル、環境変数の順に設定を読み込みます。
// .env の読み込みは main で godotenv.Load() を呼び出して行います。
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.DB.Driver = getEnv("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.Path = getEnv("DB_PATH", cfg.DB.Path)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASS", cfg.DB.Password)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.CORS.AllowOrigin = getEnv("CORS_ORIGIN", cfg.CORS.AllowOrigin)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("database path is required for driver %s", c.DB.Driver)
		}
	case DriverMySQL:
		if c.DB.Name == "" {
			return fmt.Errorf("database name is required for driver %s", c.DB.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported gin mode %q", c.GinMode)
	}
	if c.CORS.AllowOrigin == "" {
		return fmt.Errorf("cors allow_origin must not be empty")
	}
	return nil
}

// DSN はドライバーに応じた接続文字列を構築します。
func (db *DatabaseConfig) DSN() string {
	switch db.Driver {
	case DriverMySQL:
		// 例: user:pass@tcp(db:3306)/dbname?parseTime=true
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", db.User, db.Password, db.Host, db.Port, db.Name)
	case DriverSQLite:
		// ロック待ちで即エラーにならないよう busy_timeout を付ける
		return fmt.Sprintf("file:%s?_busy_timeout=5000", db.Path)
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
