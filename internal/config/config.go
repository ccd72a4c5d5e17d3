// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"monetrax-ledger/internal/domain"
	"monetrax-ledger/pkg/db" // Import db package for its Config struct
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverWAL      = "wal"
	DriverPostgres = "postgres"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort    string        `yaml:"server_port"`
	StoreDriver   string        `yaml:"store_driver"`
	StorePath     string        `yaml:"store_path"`
	DB            db.Config     `yaml:"db"`
	RetentionCap  int           `yaml:"retention_cap"`
	ImportLimit   int           `yaml:"import_limit"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	Currency      string        `yaml:"currency"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
}

// Default returns the configuration used when nothing is set.
func Default() *AppConfig {
	return &AppConfig{
		ServerPort:  "8080",
		StoreDriver: DriverFile,
		DB: db.Config{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "password",
			DBName:   "monetrax",
			SSLMode:  "disable",
		},
		RetentionCap:  domain.DefaultRetentionCap,
		ImportLimit:   domain.DefaultImportLimit,
		FlushInterval: 5 * time.Second,
		Currency:      money.USD,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by MONETRAX_CONFIG, and environment variables, in that order.
func LoadConfig() (*AppConfig, error) {
	cfg := Default()

	if path := os.Getenv("MONETRAX_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes the YAML file over cfg; keys absent from the file keep
// their current values.
func (c *AppConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

func (c *AppConfig) mergeEnv() error {
	setString(&c.ServerPort, "SERVER_PORT")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.StorePath, "STORE_PATH")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.DBName, "DB_NAME")
	setString(&c.DB.SSLMode, "DB_SSLMODE")
	setString(&c.Currency, "CURRENCY")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if err := setInt(&c.DB.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.RetentionCap, "RETENTION_CAP"); err != nil {
		return err
	}
	if err := setInt(&c.ImportLimit, "IMPORT_LIMIT"); err != nil {
		return err
	}
	if v := os.Getenv("FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "invalid FLUSH_INTERVAL")
		}
		c.FlushInterval = d
	}
	return nil
}

// Validate checks value ranges and normalizes case-insensitive settings.
func (c *AppConfig) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverMemory, DriverFile, DriverWAL, DriverPostgres:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RetentionCap <= 0 {
		return errors.Errorf("RETENTION_CAP must be positive, got %d", c.RetentionCap)
	}
	if c.ImportLimit <= 0 {
		return errors.Errorf("IMPORT_LIMIT must be positive, got %d", c.ImportLimit)
	}
	if c.FlushInterval <= 0 {
		return errors.Errorf("FLUSH_INTERVAL must be positive, got %s", c.FlushInterval)
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if money.GetCurrency(c.Currency) == nil {
		return errors.Errorf("unknown CURRENCY %q", c.Currency)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}
	*dst = n
	return nil
}
