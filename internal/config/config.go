package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	PaymentGateway PaymentGatewayConfig `toml:"payment_gateway"`
	Reconciliation ReconciliationConfig `toml:"reconciliation"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // seconds
	WriteTimeout    int `toml:"write_timeout"`    // seconds
	IdleTimeout     int `toml:"idle_timeout"`     // seconds
	ShutdownTimeout int `toml:"shutdown_timeout"` // seconds
}

// DatabaseConfig настройки подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // seconds
}

// DSN возвращает строку подключения lib/pq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PaymentGatewayConfig настройки клиента платёжного провайдера
type PaymentGatewayConfig struct {
	URL           string `toml:"url"`
	Timeout       int    `toml:"timeout"` // seconds
	APIKey        string `toml:"api_key"`
	WebhookSecret string `toml:"webhook_secret"`
}

// ReconciliationConfig настройки фоновой сверки платежей
type ReconciliationConfig struct {
	Enabled             bool   `toml:"enabled"`
	RetrySpec           string `toml:"retry_spec"`             // cron spec, например "@every 1m"
	ExpireSpec          string `toml:"expire_spec"`            // cron spec, например "@every 15m"
	PendingPaymentHours int    `toml:"pending_payment_hours"`  // окно, после которого pending оплата считается протухшей
	RetryBatchSize      int    `toml:"retry_batch_size"`
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if c.PaymentGateway.URL == "" {
		return fmt.Errorf("config: payment_gateway.url is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "consult-booking-service"
	}
	if c.PaymentGateway.Timeout <= 0 {
		c.PaymentGateway.Timeout = 10
	}
	if c.Reconciliation.RetrySpec == "" {
		c.Reconciliation.RetrySpec = "@every 1m"
	}
	if c.Reconciliation.ExpireSpec == "" {
		c.Reconciliation.ExpireSpec = "@every 15m"
	}
	if c.Reconciliation.PendingPaymentHours <= 0 {
		c.Reconciliation.PendingPaymentHours = 24
	}
	if c.Reconciliation.RetryBatchSize <= 0 {
		c.Reconciliation.RetryBatchSize = 50
	}
}
