package config

import (
	"time"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/connection"
	"github.com/Nurcan-altg/noteguard-app/internal/history"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
)

// DefaultServer is the backend used when nothing else is configured.
const DefaultServer = "http://localhost:8009"

// CLIConfig is the configuration for noteguard-cli.
type CLIConfig struct {
	Server     string            `koanf:"server" yaml:"server"`
	Timeout    time.Duration     `koanf:"timeout" yaml:"timeout"`
	Output     string            `koanf:"output" yaml:"output"` // table, json, yaml
	Log        LogConfig         `koanf:"log" yaml:"log"`
	TokenStore tokenstore.Config `koanf:"token_store" yaml:"token_store"`
	TLS        TLSConfig         `koanf:"tls" yaml:"tls"`
	HTTP       HTTPConfig        `koanf:"http" yaml:"http"`
	History    HistoryConfig     `koanf:"history" yaml:"history"`
}

// LogConfig configures diagnostics on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// TLSConfig adds trust roots for self-hosted backends.
type TLSConfig struct {
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// HTTPConfig throttles outgoing requests. A zero rate disables the limiter.
type HTTPConfig struct {
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	Burst     int     `koanf:"burst" yaml:"burst"`
}

// HistoryConfig configures the history view.
type HistoryConfig struct {
	PageSize int `koanf:"page_size" yaml:"page_size"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  DefaultServer,
		Timeout: connection.DefaultTimeout,
		Output:  "table",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		TokenStore: tokenstore.Config{
			Backend: tokenstore.BackendFile,
		},
		HTTP: HTTPConfig{
			Burst: 1,
		},
		History: HistoryConfig{
			PageSize: history.DefaultPageSize,
		},
	}
}

// defaults returns Default() as dotted keys for confloader.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"server":                 d.Server,
		"timeout":                d.Timeout.String(),
		"output":                 d.Output,
		"log.level":              d.Log.Level,
		"log.format":             d.Log.Format,
		"token_store.backend":    d.TokenStore.Backend,
		"token_store.path":       d.TokenStore.Path,
		"token_store.passphrase": d.TokenStore.Passphrase,
		"tls.ca_file":            d.TLS.CAFile,
		"http.rate_limit":        d.HTTP.RateLimit,
		"http.burst":             d.HTTP.Burst,
		"history.page_size":      d.History.PageSize,
	}
}

// Redacted returns a copy safe to display.
func (c *CLIConfig) Redacted() *CLIConfig {
	cp := *c
	if cp.TokenStore.Passphrase != "" {
		cp.TokenStore.Passphrase = "********"
	}
	return &cp
}
