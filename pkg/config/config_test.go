package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/mindpack/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Convert.Mode != ModeModern {
		t.Errorf("Mode = %q, want default %q", cfg.Convert.Mode, ModeModern)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[convert]
mode = "legacy"
max_depth = 64

[thumbnail]
enabled = false

[server]
addr = "127.0.0.1:9000"
read_timeout = "5s"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Convert.Mode != ModeLegacy || cfg.Convert.MaxDepth != 64 {
		t.Errorf("Convert = %+v", cfg.Convert)
	}
	if cfg.Thumbnail.Enabled {
		t.Error("Thumbnail.Enabled should be false")
	}
	if cfg.Thumbnail.DPI != 72 {
		t.Errorf("unset DPI = %v, want default 72", cfg.Thumbnail.DPI)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout.Duration != 60*time.Second {
		t.Errorf("WriteTimeout = %v, want default 60s", cfg.Server.WriteTimeout)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[convert\nmode="},
		{"unknown key", "[convert]\ncolour = \"red\""},
		{"bad mode", "[convert]\nmode = \"zip\""},
		{"bad duration", "[server]\nread_timeout = \"soon\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"mongo without uri", "[cache]\nbackend = \"mongo\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"negative depth", "[convert]\nmax_depth = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
				t.Errorf("Load = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisURL = "redis://localhost:6379/0"
	cfg.Server.ShutdownTimeout = Duration{3 * time.Second}

	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got Config
	if err := Decode(buf.Bytes(), &got); err != nil {
		t.Fatalf("Decode: %v\n%s", err, buf.String())
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := WriteFile(path, Default(), false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, Default(), false); err == nil {
		t.Error("second WriteFile without overwrite should fail")
	}
	if err := WriteFile(path, Default(), true); err != nil {
		t.Errorf("WriteFile with overwrite: %v", err)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	if p, _ := Path(); p != "/tmp/cfg/mindpack/config.toml" {
		t.Errorf("Path() = %q", p)
	}
	if d, _ := CacheDir(); d != "/tmp/cache/mindpack" {
		t.Errorf("CacheDir() = %q", d)
	}

	opts, err := Default().CacheOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dir != "/tmp/cache/mindpack/thumbnails" {
		t.Errorf("CacheOptions().Dir = %q", opts.Dir)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Convert.Mode = ModeLegacy
	cfg.Convert.DeterministicIDs = true
	cfg.Thumbnail.Enabled = false
	cfg.Metadata.Author = "Docs Team"

	opts := cfg.PipelineOptions()
	if opts.Mode != ModeLegacy {
		t.Errorf("Mode = %q, want %q", opts.Mode, ModeLegacy)
	}
	if !opts.NoThumbnail {
		t.Error("NoThumbnail = false, want true")
	}
	if !opts.DeterministicIDs {
		t.Error("DeterministicIDs = false, want true")
	}
	if opts.Creator.Name != "Docs Team" {
		t.Errorf("Creator.Name = %q, want %q", opts.Creator.Name, "Docs Team")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("ValidateAndSetDefaults() = %v", err)
	}
}
