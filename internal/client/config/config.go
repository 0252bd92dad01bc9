package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// Config holds runtime settings for the lessonbook CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - ServerHTTPURL: base URL of the backend HTTP endpoint.
//   - Transport: which of the two the CLI talks to.
//   - DatabasePath: local SQLite file keeping the refresh token.
//   - RequestTimeout: upper bound for one command.
//   - RefreshTimeout: upper bound for one token rotation.
type Config struct {
	ServerEndpointAddr string
	ServerHTTPURL      string
	Transport          string
	DatabasePath       string
	RequestTimeout     time.Duration
	RefreshTimeout     time.Duration
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ServerHTTPURL = "http://127.0.0.1:8080"
	c.Transport = TransportGRPC
	c.DatabasePath = "lessonbook-cli.db"
	c.RequestTimeout = 10 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

func (c *Config) Validate() error {
	if c.Transport != TransportGRPC && c.Transport != TransportHTTP {
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}
	if c.DatabasePath == "" {
		return errors.New("database path must not be empty")
	}
	if c.RequestTimeout <= 0 || c.RefreshTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args exclude the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
