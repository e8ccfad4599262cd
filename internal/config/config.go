// Package config provides functionality for managing configuration options
// for the client and the reference backend using command-line flags, an
// optional JSON file and environment variables.
//
// Sources are applied in order: flags (with defaults), then the JSON file,
// then environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
)

// ServerOptions holds the configuration values for the reference backend.
type ServerOptions struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN selects PostgreSQL storage for accounts. Empty keeps them in memory.
	DatabaseDSN string `json:"database_dsn"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// TLS reports whether the server should listen with HTTPS.
func (o *ServerOptions) TLS() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// ClientOptions holds the configuration values for the client shell.
type ClientOptions struct {
	// APIURL is the backend base URL.
	APIURL string `json:"api_url"`

	// StoragePath is the JSON file holding the persisted session.
	StoragePath string `json:"storage_path"`

	// StorageDSN, when set, persists the session in PostgreSQL instead.
	StorageDSN string `json:"storage_dsn"`

	// CAFile is an optional PEM bundle trusted for the backend's certificate.
	CAFile string `json:"ca_file"`

	// MetricsAddr, when set, serves the gateway's metrics on ip:port.
	MetricsAddr string `json:"metrics_addr"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// ShowVersion prints build information and exits.
	ShowVersion bool `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ParseServer reads the backend configuration from args and the environment.
func ParseServer(args []string) (*ServerOptions, error) {
	options := &ServerOptions{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "server certificate PEM")
	fs.StringVar(&options.TLSKey, "tls-key", "", "server key PEM")
	configFlags(fs, &options.Config)

	if err := load(fs, args, &options.Config, options); err != nil {
		return nil, err
	}

	env(&options.Port, "SERVER_ADDRESS")
	env(&options.DatabaseDSN, "DATABASE_DSN")
	env(&options.LogLevel, "LOG_LEVEL")
	env(&options.TLSCert, "TLS_CERT")
	env(&options.TLSKey, "TLS_KEY")
	return options, nil
}

// ParseClient reads the client configuration from args and the environment.
func ParseClient(args []string) (*ClientOptions, error) {
	options := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&options.APIURL, "api", "http://localhost:8080", "backend base URL")
	fs.StringVar(&options.StoragePath, "storage", "session.json", "session file")
	fs.StringVar(&options.StorageDSN, "storage-dsn", "", "postgres DSN for session storage")
	fs.StringVar(&options.CAFile, "ca", "", "CA certificate for the backend")
	fs.StringVar(&options.MetricsAddr, "metrics", "", "serve metrics on ip:port")
	fs.StringVar(&options.LogLevel, "log-level", "warn", "log level")
	fs.BoolVar(&options.ShowVersion, "version", false, "show build version and date")
	configFlags(fs, &options.Config)

	if err := load(fs, args, &options.Config, options); err != nil {
		return nil, err
	}

	env(&options.APIURL, "API_URL")
	env(&options.StoragePath, "STORAGE_PATH")
	env(&options.StorageDSN, "STORAGE_DSN")
	env(&options.CAFile, "CA_FILE")
	env(&options.LogLevel, "LOG_LEVEL")
	return options, nil
}

func configFlags(fs *flag.FlagSet, path *string) {
	fs.StringVar(path, "config", "config.json", "path to config file")
	fs.StringVar(path, "c", "config.json", "path to config file (shorthand)")
}

// load parses args, then overlays the JSON config file when it exists.
func load(fs *flag.FlagSet, args []string, path *string, target any) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Override flags with environment variables if set
	env(path, "CONFIG")

	if *path == "" {
		return nil
	}
	data, err := os.ReadFile(*path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func env(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
