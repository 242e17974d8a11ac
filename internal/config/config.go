// Package config handles loading and parsing application configuration.
// It supports two sources, applied in this order:
//  1. An optional YAML file, located by CONFIG_PATH or --config
//  2. Environment variables, which override the file and fall back to
//     the env-default values declared on each field
//
// Running with no file at all is valid: every setting has an environment
// variable and a default, so a container can be configured purely by env.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
)

// Supported values for Database.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	Database   Database `yaml:"database"`
	CORS       CORS     `yaml:"cors"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8000".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8000"`
}

// Database describes how to reach the store of record.
//
// Host, Port, Name, User, Password and SSLMode are used by the postgres
// driver. StoragePath is the .db file used by the sqlite driver.
type Database struct {
	Driver      string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host        string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port        int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name        string `yaml:"name" env:"DB_NAME" env-default:"school_db"`
	User        string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode     string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"storage/students.db"`

	// MaxIdleConns of 0 makes every request open and close its own
	// connection.
	MaxOpenConns int `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns int `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
}

// DSN returns the postgres connection URL for d.
// The password is escaped, so any character is safe to use in it.
func (d Database) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// CORS is the cross-origin policy. Only requests from AllowedOrigins get
// CORS headers back; all methods and headers are permitted from them.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://127.0.0.1:5500"`
}

// Load reads the config file at path (when path is non-empty), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("invalid config: database host and name are required for postgres")
		}
	case DriverSQLite:
		if c.Database.StoragePath == "" {
			return errors.New("invalid config: storage_path is required for sqlite")
		}
	default:
		return fmt.Errorf("invalid config: unknown database driver %q", c.Database.Driver)
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("invalid config: at least one allowed origin is required")
	}

	return nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to exit on failure. If this
// function returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
