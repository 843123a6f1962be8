package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	StoreDriverREST     = "rest"
	StoreDriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Backend  BackendConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Export   ExportConfig
	Notify   NotifyConfig
	Company  CompanyConfig
	Orders   OrdersConfig
	Reports  ReportsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// StoreConfig selects the system of record.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"rest"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            int    `env:"DB_PORT" envDefault:"5432"`
	User            string `env:"DB_USER" envDefault:"postgres"`
	Password        string `env:"DB_PASSWORD"`
	Database        string `env:"DB_NAME" envDefault:"pharmaops"`
	MaxConnections  int    `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConnections  int    `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	MaxConnLifetime int    `env:"DB_MAX_CONN_LIFETIME" envDefault:"300"` // seconds
	AutoMigrate     bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// BackendConfig points at the external REST system of record.
type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL"`
	Token   string        `env:"BACKEND_TOKEN"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string `env:"API_KEY"`
}

// ExportConfig holds artifact storage configuration.
type ExportConfig struct {
	S3Enabled bool   `env:"EXPORT_S3_ENABLED" envDefault:"false"`
	Bucket    string `env:"EXPORT_S3_BUCKET"`
	Region    string `env:"EXPORT_S3_REGION" envDefault:"ap-south-1"`
	Prefix    string `env:"EXPORT_S3_PREFIX" envDefault:"exports/"`
	LocalDir  string `env:"EXPORT_LOCAL_DIR" envDefault:"exports"`
}

// NotifyConfig holds status-change notification and metrics configuration.
type NotifyConfig struct {
	SQSEnabled       bool   `env:"NOTIFY_SQS_ENABLED" envDefault:"false"`
	QueueURL         string `env:"NOTIFY_SQS_QUEUE_URL"`
	Region           string `env:"AWS_REGION" envDefault:"ap-south-1"`
	MetricsEnabled   bool   `env:"METRICS_CLOUDWATCH_ENABLED" envDefault:"false"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"PharmaOps"`
}

// CompanyConfig is the seller header printed on invoices.
type CompanyConfig struct {
	Name    string `env:"COMPANY_NAME" envDefault:"Pharma Ops"`
	Address string `env:"COMPANY_ADDRESS"`
	GSTIN   string `env:"COMPANY_GSTIN"`
	Email   string `env:"COMPANY_EMAIL"`
	Phone   string `env:"COMPANY_PHONE"`
}

// OrdersConfig holds order lifecycle configuration.
type OrdersConfig struct {
	TransitionPolicy string `env:"ORDER_TRANSITION_POLICY" envDefault:"permissive"`
}

// ReportsConfig holds list and export configuration.
type ReportsConfig struct {
	Timezone        string `env:"REPORT_TIMEZONE" envDefault:"Local"`
	DefaultPageSize int    `env:"REPORT_DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize     int    `env:"REPORT_MAX_PAGE_SIZE" envDefault:"200"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreDriverREST:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend base URL is required when store driver is rest")
		}
		if c.Backend.Timeout <= 0 {
			return fmt.Errorf("backend timeout must be positive")
		}
	case StoreDriverPostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be rest or postgres)", c.Store.Driver)
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Export.S3Enabled {
		if c.Export.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 export is enabled")
		}
		if c.Export.Region == "" {
			return fmt.Errorf("S3 region is required when S3 export is enabled")
		}
	}

	if c.Notify.SQSEnabled && c.Notify.QueueURL == "" {
		return fmt.Errorf("SQS queue URL is required when notifications are enabled")
	}

	if p := strings.ToLower(c.Orders.TransitionPolicy); p != "permissive" && p != "strict" {
		return fmt.Errorf("invalid transition policy: %s (must be permissive or strict)", c.Orders.TransitionPolicy)
	}

	if _, err := c.Reports.Location(); err != nil {
		return err
	}

	if c.Reports.DefaultPageSize < 1 || c.Reports.DefaultPageSize > c.Reports.MaxPageSize {
		return fmt.Errorf("default page size must be between 1 and %d", c.Reports.MaxPageSize)
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Location resolves the calendar used for date filters.
func (c *ReportsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone: %s", c.Timezone)
	}
	return loc, nil
}
