// Package config loads mindpack settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/mindpack/config.toml (or
// ~/.config/mindpack/config.toml) unless --config names another path. A
// missing file yields [Default]. Command-line flags override file values.
//
//	[convert]
//	mode = "modern"
//	max_depth = 512
//
//	[thumbnail]
//	enabled = true
//	dpi = 72
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindpack/pkg/buildinfo"
	"github.com/matzehuels/mindpack/pkg/cache"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/manifest"
	"github.com/matzehuels/mindpack/pkg/mindmap"
	"github.com/matzehuels/mindpack/pkg/pipeline"
	"github.com/matzehuels/mindpack/pkg/record"
)

// AppName names the configuration and cache directories.
const AppName = "mindpack"

// Conversion modes.
const (
	ModeModern = pipeline.ModeModern
	ModeLegacy = pipeline.ModeLegacy
)

// Config is the complete configuration file.
type Config struct {
	Convert   Convert   `toml:"convert"`
	Metadata  Metadata  `toml:"metadata"`
	Thumbnail Thumbnail `toml:"thumbnail"`
	Cache     Cache     `toml:"cache"`
	Server    Server    `toml:"server"`
	Log       Log       `toml:"log"`
}

// Convert controls normalization and packaging.
type Convert struct {
	Mode             string `toml:"mode"`
	MaxDepth         int    `toml:"max_depth"`
	PlaceholderTitle string `toml:"placeholder_title"`
	SheetTitle       string `toml:"sheet_title"`
	DefaultStructure string `toml:"default_structure"`
	DeterministicIDs bool   `toml:"deterministic_ids"`
}

// Metadata controls the authoring information written to the container.
type Metadata struct {
	Author string `toml:"author"`
}

// Thumbnail controls preview rendering.
type Thumbnail struct {
	Enabled bool    `toml:"enabled"`
	DPI     float64 `toml:"dpi"`
}

// Cache selects the thumbnail cache backend.
type Cache struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	Prefix          string `toml:"prefix"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures `mindpack serve`.
type Server struct {
	Addr            string   `toml:"addr"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Log configures logging. An empty File logs to stderr only.
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Convert: Convert{
			Mode:             ModeModern,
			MaxDepth:         mindmap.DefaultMaxDepth,
			PlaceholderTitle: mindmap.DefaultTitle,
			SheetTitle:       record.DefaultSheetTitle,
			DefaultStructure: mindmap.DefaultStructureClass,
		},
		Metadata: Metadata{
			Author: manifest.DefaultAuthor,
		},
		Thumbnail: Thumbnail{
			Enabled: true,
			DPI:     pipeline.DefaultThumbnailDPI,
		},
		Cache: Cache{
			Backend:         cache.BackendFile,
			MongoDatabase:   cache.DefaultMongoDatabase,
			MongoCollection: cache.DefaultMongoCollection,
		},
		Server: Server{
			Addr:            ":8080",
			MaxBodyBytes:    8 << 20,
			ReadTimeout:     Duration{30 * time.Second},
			WriteTimeout:    Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Dir returns the configuration directory (~/.config/mindpack).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default cache directory (~/.cache/mindpack).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the file at path over the defaults. An empty path uses [Path];
// a missing file is not an error. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, cfg.Validate()
}

// Decode parses TOML data into cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.Convert.Mode {
	case ModeModern, ModeLegacy:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "convert.mode must be %q or %q, got %q", ModeModern, ModeLegacy, c.Convert.Mode)
	}
	if c.Convert.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "convert.max_depth must not be negative")
	}
	if c.Thumbnail.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "thumbnail.dpi must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// CacheOptions maps the [cache] section to backend options. An empty dir
// falls back to [CacheDir].
func (c Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             c.Cache.Dir,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
	if opts.Dir == "" && (opts.Backend == "" || opts.Backend == cache.BackendFile) {
		dir, err := CacheDir()
		if err != nil {
			return opts, err
		}
		opts.Dir = filepath.Join(dir, "thumbnails")
	}
	return opts, nil
}

// PipelineOptions maps the [convert], [metadata] and [thumbnail] sections to
// conversion options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Mode:             c.Convert.Mode,
		NoThumbnail:      !c.Thumbnail.Enabled,
		MaxDepth:         c.Convert.MaxDepth,
		PlaceholderTitle: c.Convert.PlaceholderTitle,
		SheetTitle:       c.Convert.SheetTitle,
		DefaultStructure: c.Convert.DefaultStructure,
		DeterministicIDs: c.Convert.DeterministicIDs,
		Creator:          manifest.Creator{Name: c.Metadata.Author, Version: buildinfo.Version},
	}
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes cfg to path, creating parent directories. An existing file
// is only replaced when overwrite is set.
func WriteFile(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, cfg)
}
