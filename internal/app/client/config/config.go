package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".gophtasks"
	defaultPullPolicy    = "protect_pending"
)

type Config struct {
	Env            string `mapstructure:"app_env"`
	ServerAddress  string `mapstructure:"server_address"`
	EnableTLS      bool   `mapstructure:"enable_tls"`
	ConfigDir      string `mapstructure:"config_dir"`
	DataPath       string `mapstructure:"data_path"`
	TokenPath      string `mapstructure:"token_path"`
	LogPath        string `mapstructure:"log_path"`
	SyncInterval   int    `mapstructure:"sync_interval_seconds"`
	RequestTimeout int    `mapstructure:"request_timeout_seconds"`
	BreakerFails   int    `mapstructure:"breaker_max_failures"`
	BreakerOpen    int    `mapstructure:"breaker_open_seconds"`
	PullPolicy     string `mapstructure:"pull_policy"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile дополнительно читает YAML-файл конфигурации. Переменные окружения
// имеют приоритет над значениями из файла.
func LoadFile(path string) (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("SYNC_INTERVAL_SECONDS", 30)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_SECONDS", 30)
	v.SetDefault("PULL_POLICY", defaultPullPolicy)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		EnableTLS:      v.GetBool("ENABLE_TLS"),
		ConfigDir:      configDir,
		DataPath:       pathOr(v.GetString("DATA_PATH"), filepath.Join(configDir, "tasks.db")),
		TokenPath:      pathOr(v.GetString("TOKEN_PATH"), filepath.Join(configDir, "token")),
		LogPath:        pathOr(v.GetString("LOG_PATH"), filepath.Join(configDir, "client.log")),
		SyncInterval:   v.GetInt("SYNC_INTERVAL_SECONDS"),
		RequestTimeout: v.GetInt("REQUEST_TIMEOUT_SECONDS"),
		BreakerFails:   v.GetInt("BREAKER_MAX_FAILURES"),
		BreakerOpen:    v.GetInt("BREAKER_OPEN_SECONDS"),
		PullPolicy:     v.GetString("PULL_POLICY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func pathOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds должен быть положительным")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds должен быть положительным")
	}
	if c.BreakerFails <= 0 {
		return fmt.Errorf("breaker_max_failures должен быть положительным")
	}
	if c.PullPolicy != "protect_pending" && c.PullPolicy != "server_wins" {
		return fmt.Errorf("неизвестная pull_policy: %q", c.PullPolicy)
	}
	return nil
}

// BaseURL возвращает адрес сервера со схемой.
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerOpen) * time.Second
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
