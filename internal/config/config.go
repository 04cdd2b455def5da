package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Qbittorrent QbittorrentConfig `mapstructure:"qbittorrent"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Log         LogConfig         `mapstructure:"log"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
}

// QbittorrentConfig points at the WebUI the bridge drives.
type QbittorrentConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Path       string        `mapstructure:"path"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Proxy      string        `mapstructure:"proxy"`
	CookieName string        `mapstructure:"cookie_name"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug or release
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

var AppConfig *Config

func LoadConfig(configPath string) error {
	v := viper.New()

	v.SetDefault("qbittorrent.base_url", "http://localhost:9091/")
	v.SetDefault("qbittorrent.path", "/api/v2")
	v.SetDefault("qbittorrent.username", "admin")
	v.SetDefault("qbittorrent.password", "")
	v.SetDefault("qbittorrent.timeout", "5s")
	v.SetDefault("qbittorrent.proxy", "")
	v.SetDefault("qbittorrent.cookie_name", "SID")
	v.SetDefault("server.port", 8307)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/qbit-bridge.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("monitor.interval", "10s")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	// QBIT_QBITTORRENT_BASE_URL, QBIT_SERVER_PORT, ...
	v.SetEnvPrefix("QBIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", cfg.Monitor.Interval)
	}

	AppConfig = cfg
	return nil
}
