package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logger   LoggerConfig   `yaml:"logger"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"` // 0 selects the driver's default port
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type MetricsConfig struct {
	// DataPath is where counter samples are persisted; empty keeps them in memory
	DataPath string `yaml:"data_path"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverMySQL,
			Host:            "localhost",
			User:            "cafe",
			Name:            "cafe",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logger: LoggerConfig{
			Mode:     "development",
			Filename: "logs/cafe-api.log",
		},
	}
}

// Load reads the YAML file named by CAFE_CONFIG (if any), then .env, then the environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CAFE_CONFIG"), ".env")
}

// LoadFrom applies, in order, defaults, yamlPath and envFile (both optional when empty
// or missing on disk) and finally the process environment.
func LoadFrom(yamlPath, envFile string) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if envFile != "" {
		// variables already set in the environment win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabasePort returns the configured port or the default of the selected driver
func (c *Config) DatabasePort() int {
	if c.Database.Port > 0 {
		return c.Database.Port
	}
	if c.Database.Driver == DriverPostgres {
		return 5432
	}
	return 3306
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Server.Addr == "" {
		return errors.New("SERVER_ADDR must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Logger.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("unsupported LOG_MODE %q", c.Logger.Mode)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []string

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := cast.ToIntE(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := cast.ToBoolE(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := cast.ToDurationE(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = d
		}
	}

	setString("SERVER_ADDR", &c.Server.Addr)
	setDuration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	setString("DB_DRIVER", &c.Database.Driver)
	setString("DB_HOST", &c.Database.Host)
	setInt("DB_PORT", &c.Database.Port)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.Name)
	setString("DB_SSL_MODE", &c.Database.SSLMode)
	setInt("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	setDuration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)

	setString("LOG_MODE", &c.Logger.Mode)
	setBool("LOG_FILE_ENABLE", &c.Logger.FileEnable)
	setString("LOG_FILENAME", &c.Logger.Filename)

	setString("METRICS_DATA_PATH", &c.Metrics.DataPath)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, ", "))
	}
	return nil
}
