// Package config loads runtime configuration for the lessonbook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-u string   base URL of the backend HTTP endpoint
//	-t string   transport: grpc or http
//	-f string   path of the local SQLite file
//	-i int      request timeout (seconds)
//	-r int      refresh timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "server_http_url": "http://127.0.0.1:8080",
//	  "transport": "grpc",
//	  "database_path": "lessonbook-cli.db",
//	  "request_timeout": "10s",
//	  "refresh_timeout": "10s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
