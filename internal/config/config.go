package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"traffic-signal-optimizer-go/internal/estimate"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yml"

// Config структура конфигурации приложения
type Config struct {
	Environment string `yaml:"environment" validate:"oneof=development production test"`
	Server      struct {
		Port     int    `yaml:"port" validate:"min=1,max=65535"`
		GRPCPort int    `yaml:"grpc_port" validate:"min=0,max=65535"`
		Host     string `yaml:"host"`
		TempDir  string `yaml:"temp_dir"`
	} `yaml:"server"`
	ForecastAPI struct {
		BaseURL string `yaml:"base_url" validate:"omitempty,url"`
		Timeout int    `yaml:"timeout_seconds" validate:"min=1"` // в секундах
	} `yaml:"forecast_api"`
	Optimizer struct {
		ClassifierMode string          `yaml:"classifier_mode" validate:"oneof=statistical percentile fixed schedule fixed-schedule"`
		Strategy       string          `yaml:"strategy" validate:"oneof=weighted genetic ga"`
		Seed           uint64          `yaml:"seed"`
		Estimator      estimate.Config `yaml:"estimator"`
	} `yaml:"optimizer"`
	Logging struct {
		Level string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	} `yaml:"logging"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	cfg := &Config{Environment: "development"}
	cfg.Server.Port = 8080
	cfg.Server.GRPCPort = 9090
	cfg.Server.Host = "0.0.0.0"
	cfg.ForecastAPI.Timeout = 60
	cfg.Optimizer.ClassifierMode = "statistical"
	cfg.Optimizer.Strategy = "weighted"
	cfg.Optimizer.Estimator = estimate.DefaultConfig()
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML файл
// (CONFIG_FILE или config.yml, если есть), затем переменные окружения
func LoadConfig() (*Config, error) {
	cfg := Default()

	path := getEnv("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFile(path); err != nil {
		// config.yml необязателен, явно указанный файл обязателен
		if !(errors.Is(err, os.ErrNotExist) && os.Getenv("CONFIG_FILE") == "") {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	// Конфигурация сервера
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.GRPCPort = getEnvInt("GRPC_PORT", c.Server.GRPCPort)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.TempDir = getEnv("TEMP_DIR", c.Server.TempDir)

	// Конфигурация сервиса прогноза
	c.ForecastAPI.BaseURL = getEnv("FORECAST_API_BASE_URL", c.ForecastAPI.BaseURL)
	c.ForecastAPI.Timeout = getEnvInt("FORECAST_API_TIMEOUT_SECONDS", c.ForecastAPI.Timeout)

	c.Optimizer.ClassifierMode = getEnv("CLASSIFIER_MODE", c.Optimizer.ClassifierMode)
	c.Optimizer.Strategy = getEnv("ALLOCATOR_STRATEGY", c.Optimizer.Strategy)

	// Конфигурация логирования
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает int значение переменной окружения или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
