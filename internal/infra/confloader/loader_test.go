package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server     string        `koanf:"server"`
	Timeout    time.Duration `koanf:"timeout"`
	TokenStore struct {
		Backend string `koanf:"backend"`
		Path    string `koanf:"path"`
	} `koanf:"token_store"`
	HTTP struct {
		RateLimit float64 `koanf:"rate_limit"`
		Burst     int     `koanf:"burst"`
	} `koanf:"http"`
}

func defaults() map[string]any {
	return map[string]any{
		"server":              "http://localhost:8000",
		"timeout":             "30s",
		"token_store.backend": "file",
		"token_store.path":    "",
		"http.rate_limit":     0,
		"http.burst":          1,
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/path/cli.yaml"), WithDotEnv("/path/.env"))
	if l.envPrefix != "TEST_" || l.filePath != "/path/cli.yaml" || l.dotEnv != "/path/.env" {
		t.Errorf("options not applied: %+v", l)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeFile(t, "cli.yaml", "server: https://api.example.com\ntoken_store:\n  backend: badger\n")

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetString("server"); got != "https://api.example.com" {
		t.Errorf("server = %q", got)
	}
	if got := l.GetString("token_store.backend"); got != "badger" {
		t.Errorf("token_store.backend = %q", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/cli.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_Load_MissingFileIsDefaults(t *testing.T) {
	l := NewLoader(WithConfigFile("/nonexistent/cli.yaml"), WithEnvPrefix("NGTEST_MISSING_"))
	if err := l.LoadMap(defaults()); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != "http://localhost:8000" || cfg.Timeout != 30*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}
}

func TestLoader_LoadEnv_KnownKeys(t *testing.T) {
	t.Setenv("NGTEST_TOKEN_STORE_BACKEND", "memory")
	t.Setenv("NGTEST_HTTP_RATE_LIMIT", "2.5")
	t.Setenv("NGTEST_SERVER", "http://env:8000")

	l := NewLoader(WithEnvPrefix("NGTEST_"))
	if err := l.LoadMap(defaults()); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server", cfg.Server, "http://env:8000"},
		{"token_store.backend", cfg.TokenStore.Backend, "memory"},
		{"http.rate_limit", cfg.HTTP.RateLimit, 2.5},
		{"http.burst", cfg.HTTP.Burst, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoader_LoadEnv_UnknownKeyUsesDoubleUnderscore(t *testing.T) {
	t.Setenv("NGTEST2_EXTRA__SOME_KEY", "v")

	l := NewLoader(WithEnvPrefix("NGTEST2_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatal(err)
	}
	if got := l.GetString("extra.some_key"); got != "v" {
		t.Errorf("extra.some_key = %q, want %q", got, "v")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeFile(t, "cli.yaml", "server: http://file:8000\ntimeout: 10s\n")
	t.Setenv("NGTEST3_SERVER", "http://env:8000")

	l := NewLoader(WithEnvPrefix("NGTEST3_"), WithConfigFile(path))
	if err := l.LoadMap(defaults()); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != "http://env:8000" {
		t.Errorf("env should override file, server = %q", cfg.Server)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("file should override defaults, timeout = %v", cfg.Timeout)
	}

	// Flags are applied last.
	if err := l.LoadMap(map[string]any{"server": "http://flag:8000"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "http://flag:8000" {
		t.Errorf("flag should override env, server = %q", cfg.Server)
	}
}

func TestLoader_DotEnv(t *testing.T) {
	path := writeFile(t, ".env", "NGTEST4_TOKEN_STORE_PATH=/tmp/dotenv-token\n")
	t.Cleanup(func() { os.Unsetenv("NGTEST4_TOKEN_STORE_PATH") })

	l := NewLoader(WithEnvPrefix("NGTEST4_"), WithDotEnv(path))
	if err := l.LoadMap(defaults()); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TokenStore.Path != "/tmp/dotenv-token" {
		t.Errorf("token_store.path = %q", cfg.TokenStore.Path)
	}
}

func TestLoader_DotEnv_Missing(t *testing.T) {
	l := NewLoader(WithEnvPrefix("NGTEST5_"), WithDotEnv(filepath.Join(t.TempDir(), ".env")))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestLoader_MapAccessors(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(defaults()); err != nil {
		t.Fatal(err)
	}

	if got := l.GetInt("http.burst"); got != 1 {
		t.Errorf("GetInt(http.burst) = %d", got)
	}
	if l.GetBool("missing") {
		t.Error("GetBool(missing) = true")
	}
	if l.Get("token_store.backend") != "file" {
		t.Errorf("Get(token_store.backend) = %v", l.Get("token_store.backend"))
	}
	if len(l.Keys()) != len(defaults()) {
		t.Errorf("Keys() = %v", l.Keys())
	}
	if _, ok := l.All()["http.rate_limit"]; !ok {
		t.Error("All() missing http.rate_limit")
	}
}
