package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lessonbook/internal/flagx"
	"github.com/dmitrijs2005/lessonbook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After
// parsing, non-zero values are copied into the runtime Config.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	ServerHTTPURL      string         `json:"server_http_url"`
	Transport          string         `json:"transport"`
	DatabasePath       string         `json:"database_path"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	RefreshTimeout     timex.Duration `json:"refresh_timeout"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by -c
// or -config. Without either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, v := range map[*string]string{
		&cfg.ServerEndpointAddr: jc.ServerEndpointAddr,
		&cfg.ServerHTTPURL:      jc.ServerHTTPURL,
		&cfg.Transport:          jc.Transport,
		&cfg.DatabasePath:       jc.DatabasePath,
		&cfg.LogLevel:           jc.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshTimeout.Duration != 0 {
		cfg.RefreshTimeout = jc.RefreshTimeout.Duration
	}
	return nil
}
