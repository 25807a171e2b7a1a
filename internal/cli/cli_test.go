package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/mindpack/pkg/archive"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/pipeline"
)

// isolate points the config and cache directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(&bytes.Buffer{}, LogInfo)
	defer c.Close()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	infos, err := archive.ListFile(path)
	if err != nil {
		t.Fatalf("ListFile: %v", err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		want  []string
	}{
		{
			name:  "modern",
			flags: []string{"--no-thumbnail", "--deterministic-ids"},
			want:  []string{"content.json", "manifest.json", "metadata.json", "content.xml", "Thumbnails/thumbnail.png"},
		},
		{
			name:  "legacy",
			flags: []string{"--legacy"},
			want:  []string{"content.xml", "META-INF/manifest.xml", "meta.xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			in := writeInput(t, dir, "map.json", `{"rootTopic":{"title":"A","children":[{"title":"B"}]}}`)
			out := filepath.Join(dir, "map.xmind")

			args := append([]string{in, out}, tt.flags...)
			if err := execute(t, args...); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got := archiveNames(t, out); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("entries = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertCommandMissingInput(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "out.xmind")

	err := execute(t, filepath.Join(dir, "missing.json"), out)
	if !errors.Is(err, errors.ErrCodeInputMissing) {
		t.Fatalf("error = %v, want INPUT_MISSING", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat err = %v", err)
	}
}

func TestConvertCommandMalformed(t *testing.T) {
	dir := isolate(t)
	in := writeInput(t, dir, "bad.json", `{"rootTopic":"nope"}`)

	err := execute(t, in, filepath.Join(dir, "out.xmind"), "--no-thumbnail")
	if !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("error = %v, want MALFORMED_INPUT", err)
	}
}

func TestConvertCommandArgs(t *testing.T) {
	isolate(t)
	tests := [][]string{
		{},
		{"only-one.json"},
		{"a.json", "b.xmind", "c"},
	}
	for _, args := range tests {
		if err := execute(t, args...); err == nil {
			t.Errorf("execute(%v) should fail", args)
		}
	}
}

func TestConvertCommandConfig(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeInput(t, dir, "mindpack.toml", "[convert]\nmode = \"legacy\"\n")
	in := writeInput(t, dir, "map.yaml", "rootTopic:\n  title: A\n")
	out := filepath.Join(dir, "map.xmind")

	if err := execute(t, in, out, "--config", cfgPath); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := archiveNames(t, out); len(got) != 3 || got[0] != "content.xml" {
		t.Errorf("entries = %v, want legacy layout", got)
	}
}

func TestConvertCommandBadConfig(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeInput(t, dir, "mindpack.toml", "[convert]\nmode = \"zip\"\n")
	in := writeInput(t, dir, "map.json", `{"rootTopic":{}}`)

	err := execute(t, in, filepath.Join(dir, "out.xmind"), "--config", cfgPath)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestPipelineOptionsFlags(t *testing.T) {
	isolate(t)
	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.convertCommand()
	cmd.SetContext(context.Background())

	if err := cmd.Flags().Parse([]string{"--legacy", "--deterministic-ids"}); err != nil {
		t.Fatal(err)
	}
	legacy, _ := cmd.Flags().GetBool("legacy")
	ids, _ := cmd.Flags().GetBool("deterministic-ids")
	opts := c.pipelineOptions(cmd, convertOpts{legacy: legacy, deterministicIDs: ids})

	if opts.Mode != pipeline.ModeLegacy {
		t.Errorf("Mode = %q, want legacy", opts.Mode)
	}
	if !opts.DeterministicIDs {
		t.Error("DeterministicIDs = false, want true")
	}
	if opts.NoThumbnail {
		t.Error("NoThumbnail should follow config when the flag is unset")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := isolate(t)
	good := writeInput(t, dir, "good.json", `{"rootTopic":{"title":"A"}}`)
	bad := writeInput(t, dir, "bad.json", `{"rootTopic":{"children":"x"}}`)

	if err := execute(t, "validate", good); err != nil {
		t.Errorf("validate good: %v", err)
	}
	if err := execute(t, "validate", bad); !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("validate bad = %v, want MALFORMED_INPUT", err)
	}
	if err := execute(t, "validate", filepath.Join(dir, "none.json")); !errors.Is(err, errors.ErrCodeInputMissing) {
		t.Errorf("validate missing = %v, want INPUT_MISSING", err)
	}
}

func TestInspectCommand(t *testing.T) {
	dir := isolate(t)
	in := writeInput(t, dir, "map.json", `{"rootTopic":{"title":"A"}}`)
	out := filepath.Join(dir, "map.xmind")
	if err := execute(t, in, out, "--no-thumbnail"); err != nil {
		t.Fatalf("convert: %v", err)
	}

	if err := execute(t, "inspect", out); err != nil {
		t.Errorf("inspect: %v", err)
	}
	if err := execute(t, "inspect", in); !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("inspect non-zip = %v, want MALFORMED_INPUT", err)
	}
}

func TestConfigInitCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", "mindpack", "config.toml")

	if err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "[convert]") {
		t.Errorf("config = %q, want [convert] section", data)
	}

	if err := execute(t, "config", "init"); err == nil {
		t.Error("second config init should fail without --force")
	}
	if err := execute(t, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := isolate(t)
	cacheDir := filepath.Join(dir, "cache", "mindpack", "thumbnails", "ab")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeInput(t, cacheDir, "abcdef.json", `{}`)

	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "abcdef.json")); !os.IsNotExist(err) {
		t.Errorf("cache entry should be removed, stat err = %v", err)
	}
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		topics, rels, thumb int
		retried             bool
		want                []string
	}{
		{1, 0, 0, false, []string{"1 topic"}},
		{3, 2, 0, false, []string{"3 topics", "2 relationships"}},
		{2, 0, 2048, false, []string{"2 topics", "thumbnail 2.0 KB"}},
		{2, 0, 0, true, []string{"2 topics", "no thumbnail"}},
	}
	for _, tt := range tests {
		got := statsLine(tt.topics, tt.rels, tt.thumb, tt.retried)
		for _, want := range tt.want {
			if !strings.Contains(got, want) {
				t.Errorf("statsLine(%d, %d, %d, %v) = %q, missing %q", tt.topics, tt.rels, tt.thumb, tt.retried, got, want)
			}
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatError(t *testing.T) {
	err := errors.New(errors.ErrCodeInputMissing, "input file %q not found", "x.json")
	got := FormatError(err)
	if !strings.Contains(got, `input file "x.json" not found`) {
		t.Errorf("FormatError() = %q", got)
	}
	if strings.Contains(got, "INPUT_MISSING") {
		t.Errorf("FormatError() = %q, should not include the code", got)
	}
}
