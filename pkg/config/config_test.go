package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Store.TTL.Std() != 30*24*time.Hour {
		t.Errorf("Store.TTL = %v, want 720h", cfg.Store.TTL.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"

[store]
ttl = "90m"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Store.TTL.Std() != 90*time.Minute {
		t.Errorf("Store.TTL = %v, want 90m", cfg.Store.TTL.Std())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}

	// Untouched sections keep their defaults.
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("Store.Backend = %q, want default memory", cfg.Store.Backend)
	}
	if cfg.Server.MaxBodyBytes != 4<<20 {
		t.Errorf("Server.MaxBodyBytes = %d, want default", cfg.Server.MaxBodyBytes)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[server\naddr=")
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"memcached\"\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should reject unknown cache backend")
	}
	if !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("Load() error = %v, want cache.backend mention", err)
	}
}

func TestLoadRejectsRedisWithoutURL(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"redis\"\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() should require redis_url for the redis backend")
	}
}

func TestLoadRejectsMongoWithoutURI(t *testing.T) {
	path := writeConfig(t, "[store]\nbackend = \"mongo\"\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() should require mongo_uri for the mongo backend")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Error("LoadOrDefault() should fall back to defaults for a missing file")
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("2h30m")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if d.Std() != 2*time.Hour+30*time.Minute {
		t.Errorf("Duration = %v, want 2h30m", d.Std())
	}

	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText() should reject non-durations")
	}
}

func TestResolveDir(t *testing.T) {
	c := CacheConfig{Dir: "/tmp/custom"}
	dir, err := c.ResolveDir()
	if err != nil {
		t.Fatalf("ResolveDir() error: %v", err)
	}
	if dir != "/tmp/custom" {
		t.Errorf("ResolveDir() = %q, want configured dir", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err = CacheConfig{}.ResolveDir()
	if err != nil {
		t.Fatalf("ResolveDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "treeline") {
		t.Errorf("ResolveDir() = %q, want XDG cache subdirectory", dir)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/conf")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if path != filepath.Join("/tmp/conf", "treeline", "config.toml") {
		t.Errorf("DefaultPath() = %q, want XDG config location", path)
	}
}
