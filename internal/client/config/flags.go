package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in the package doc are considered; the rest of args
// is left for other components. Timeouts are given in seconds.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-u", "-t", "-f", "-i", "-r", "-l"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.ServerHTTPURL, "u", cfg.ServerHTTPURL, "base URL of the HTTP server")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport (grpc|http)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	requestTimeout := fs.Int("i", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	refreshTimeout := fs.Int("r", int(cfg.RefreshTimeout.Seconds()), "refresh timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.RefreshTimeout = time.Duration(*refreshTimeout) * time.Second
	return nil
}
