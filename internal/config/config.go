// Package config 讀取服務設定：.env → 設定檔 → LEDGER_ 環境變數 → 旗標，後者覆蓋前者。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ledger/internal/bank"
)

// ErrInvalidConfig 代表設定值不合法。
var ErrInvalidConfig = errors.New("invalid configuration")

// Config 為服務的完整設定。
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Fees    bank.Settings `mapstructure:"fees"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults 登錄所有鍵的預設值。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.path", "data.json")
	v.SetDefault("fees.overdraft", bank.DefaultOverdraftFee)
	v.SetDefault("fees.management", bank.DefaultManagementFee)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load 讀取設定。cfgFile 為空時在 $HOME/.config/ledger 與工作目錄尋找 config.yaml；找不到不算錯誤。
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env 僅補齊尚未設定的環境變數；檔案不存在時略過
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ledger"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 檢查設定值。
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%w: storage.path is required for driver %q", ErrInvalidConfig, c.Storage.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("%w: storage.driver %q (want json, sqlite or memory)", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("%w: log.format %q (want text, json or logfmt)", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}
