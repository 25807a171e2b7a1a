package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindpack/pkg/archive"
	"github.com/matzehuels/mindpack/pkg/config"
	"github.com/matzehuels/mindpack/pkg/pipeline"
	"github.com/matzehuels/mindpack/pkg/thumbnail"
)

func newTestServer(t *testing.T, maxBody int64) *Server {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	runner := pipeline.NewRunner(nil, nil, logger)
	runner.Renderer = thumbnail.Empty{}

	cfg := config.Default().Server
	if maxBody > 0 {
		cfg.MaxBodyBytes = maxBody
	}
	base := pipeline.Options{
		DeterministicIDs: true,
		Clock:            func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return NewServer(runner, base, cfg, logger)
}

func do(s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, 0), http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestVersion(t *testing.T) {
	rec := do(newTestServer(t, 0), http.MethodGet, "/version", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["version"] == "" {
		t.Errorf("version missing in %v", info)
	}
}

func entryNames(t *testing.T, body []byte) []string {
	t.Helper()
	infos, err := archive.List(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		wantNames   []string
		wantFile    string
	}{
		{
			name:      "modern",
			target:    "/v1/convert?filename=plan.json",
			body:      `{"rootTopic":{"title":"A","children":[{"title":"B"}]}}`,
			wantNames: []string{"content.json", "manifest.json", "metadata.json", "content.xml", "Thumbnails/thumbnail.png"},
			wantFile:  "plan.xmind",
		},
		{
			name:      "legacy",
			target:    "/v1/convert?mode=legacy",
			body:      `{"rootTopic":{"title":"A"}}`,
			wantNames: []string{"content.xml", "META-INF/manifest.xml", "meta.xml"},
			wantFile:  "mindmap.xmind",
		},
		{
			name:        "yaml",
			target:      "/v1/convert?thumbnail=false",
			contentType: "application/yaml",
			body:        "rootTopic:\n  title: A\n",
			wantNames:   []string{"content.json", "manifest.json", "metadata.json", "content.xml", "Thumbnails/thumbnail.png"},
			wantFile:    "mindmap.xmind",
		},
	}

	s := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.contentType, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != ContentTypeXMind {
				t.Errorf("Content-Type = %q, want %q", ct, ContentTypeXMind)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.wantFile) {
				t.Errorf("Content-Disposition = %q, want filename %q", cd, tt.wantFile)
			}
			if got := entryNames(t, rec.Body.Bytes()); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("entries = %v, want %v", got, tt.wantNames)
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCode   string
		wantIssue  bool
	}{
		{"invalid json", "/v1/convert", `{"rootTopic":`, http.StatusBadRequest, "MALFORMED_INPUT", true},
		{"schema violation", "/v1/convert", `{"title":"no root"}`, http.StatusBadRequest, "MALFORMED_INPUT", true},
		{"bad mode", "/v1/convert?mode=xmind8", `{"rootTopic":{}}`, http.StatusBadRequest, "INVALID_CONFIG", true},
		{"bad thumbnail flag", "/v1/convert?thumbnail=maybe", `{"rootTopic":{}}`, http.StatusBadRequest, "INVALID_CONFIG", true},
		{"bad deterministic flag", "/v1/convert?deterministic=2", `{"rootTopic":{}}`, http.StatusBadRequest, "INVALID_CONFIG", true},
		{"too large", "/v1/convert", `{"rootTopic":{"title":"` + strings.Repeat("x", 200) + `"}}`, http.StatusRequestEntityTooLarge, "", false},
	}

	s := newTestServer(t, 128)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, "application/json", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message missing")
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if (len(resp.Issues) > 0) != tt.wantIssue {
				t.Errorf("issues = %v, want present %v", resp.Issues, tt.wantIssue)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantValid  bool
		wantTopics int
	}{
		{"valid", `{"rootTopic":{"title":"A","children":[{"title":"B"},{"title":"C"}]}}`, true, 3},
		{"missing root", `{}`, false, 0},
		{"bad children", `{"rootTopic":{"children":"nope"}}`, false, 0},
		{"syntax error", `{`, false, 0},
	}

	s := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/v1/validate", "application/json", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var resp validateResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v (issues %v)", resp.Valid, tt.wantValid, resp.Issues)
			}
			if resp.Topics != tt.wantTopics {
				t.Errorf("topics = %d, want %d", resp.Topics, tt.wantTopics)
			}
			if !tt.wantValid && len(resp.Issues) == 0 {
				t.Error("invalid document should report issues")
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	rec := do(newTestServer(t, 0), http.MethodGet, "/v1/nothing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
