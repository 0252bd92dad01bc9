package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-u", "http://x:1", "-t", "http", "-f", "c.db", "-i", "3", "-r", "4", "-l", "debug"},
			expected: &Config{
				ServerEndpointAddr: "127.0.0.1:9090",
				ServerHTTPURL:      "http://x:1",
				Transport:          "http",
				DatabasePath:       "c.db",
				RequestTimeout:     3 * time.Second,
				RefreshTimeout:     4 * time.Second,
				LogLevel:           "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-config", "x.json", "-z", "1", "-a", ":1"},
			expected: &Config{ServerEndpointAddr: ":1"},
		},
		{
			name:    "incorrect timeout",
			args:    []string{"-i", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
