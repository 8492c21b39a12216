// Package config loads treeline configuration.
//
// Configuration is a TOML file layered over built-in defaults. The CLI
// looks in the XDG config directory (~/.config/treeline/config.toml)
// unless an explicit path is given; command-line flags override file
// values at wiring time.
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	ttl = "720h"
//
//	[log]
//	level = "debug"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "treeline"

// Cache backend names.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Store backend names.
const (
	StoreBackendMemory = "memory"
	StoreBackendMongo  = "mongo"
)

// ValidCacheBackends is the set of supported cache backends.
var ValidCacheBackends = map[string]bool{
	CacheBackendFile:  true,
	CacheBackendRedis: true,
	CacheBackendNone:  true,
}

// ValidStoreBackends is the set of supported store backends.
var ValidStoreBackends = map[string]bool{
	StoreBackendMemory: true,
	StoreBackendMongo:  true,
}

// ValidLogLevels is the set of supported log levels.
var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Duration decodes TOML strings like "90m" or "720h" through
// time.ParseDuration.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration tree.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`

	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// CacheConfig selects the byte cache backend.
type CacheConfig struct {
	// Backend is one of file, redis, or none.
	Backend string `toml:"backend"`

	// Dir overrides the file backend directory. Empty means the XDG
	// cache directory.
	Dir string `toml:"dir"`

	// RedisURL is the redis backend connection URL.
	RedisURL string `toml:"redis_url"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	// Backend is one of memory or mongo.
	Backend string `toml:"backend"`

	// MongoURI is the mongo backend connection URI.
	MongoURI string `toml:"mongo_uri"`

	// Database is the mongo database name.
	Database string `toml:"database"`

	// TTL is how long saved documents live. Zero means no expiry.
	TTL Duration `toml:"ttl"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, or error.
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			MaxBodyBytes: 4 << 20,
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
		},
		Store: StoreConfig{
			Backend:  StoreBackendMemory,
			Database: appName,
			TTL:      Duration(30 * 24 * time.Hour),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the file at path, or the default location when
// path is empty. A missing file is not an error; the defaults apply.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = def
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPath returns the XDG location of the config file.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Validate checks enum fields and required values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if !ValidCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required for the redis backend")
	}
	if !ValidStoreBackends[c.Store.Backend] {
		return fmt.Errorf("invalid store.backend: %q (must be one of: memory, mongo)", c.Store.Backend)
	}
	if c.Store.Backend == StoreBackendMongo && c.Store.MongoURI == "" {
		return fmt.Errorf("store.mongo_uri is required for the mongo backend")
	}
	if !ValidLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level: %q (must be one of: debug, info, warn, error)", c.Log.Level)
	}
	return nil
}

// ResolveDir returns the file cache directory: the configured one, or
// the XDG cache directory when unset.
func (c CacheConfig) ResolveDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
