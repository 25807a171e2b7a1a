package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/mindpack/pkg/buildinfo"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/mindmap"
	"github.com/matzehuels/mindpack/pkg/pipeline"
)

type errorResponse struct {
	Error  string          `json:"error"`
	Code   string          `json:"code,omitempty"`
	Issues []mindmap.Issue `json:"issues,omitempty"`
}

type validateResponse struct {
	Valid         bool            `json:"valid"`
	Topics        int             `json:"topics,omitempty"`
	Relationships int             `json:"relationships,omitempty"`
	Issues        []mindmap.Issue `json:"issues,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Current())
}

// handleConvert converts the request body to a container.
//
// Query parameters: mode (modern|legacy), thumbnail (bool),
// deterministic (bool), filename (attachment name).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	raw, status, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, status, err)
		return
	}

	result, err := s.runner.Convert(r.Context(), raw, opts)
	if err != nil {
		if errors.IsInputError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.log.Error("conversion failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := result.Write(&buf); err != nil {
		s.log.Error("write container", "err", err)
		jsonError(w, "failed to write container", http.StatusInternalServerError)
		return
	}

	filename := errors.SanitizeFilename(r.URL.Query().Get("filename"), ".xmind")
	w.Header().Set("Content-Type", ContentTypeXMind)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Mindpack-Topics", strconv.Itoa(result.Stats.Topics))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleValidate reports whether the request body is a convertible document.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, status, err := s.readDocument(w, r)
	if err != nil {
		if status == http.StatusBadRequest {
			writeJSON(w, http.StatusOK, validateResponse{Issues: mindmap.Issues(err)})
			return
		}
		writeError(w, status, err)
		return
	}

	doc, err := s.runner.Check(raw, s.base)
	if err != nil {
		if !errors.IsInputError(err) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{Issues: mindmap.Issues(err)})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:         true,
		Topics:        doc.TopicCount(),
		Relationships: len(doc.Relationships),
	})
}

// requestOptions applies query overrides to the configured options.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	q := r.URL.Query()

	if mode := q.Get("mode"); mode != "" {
		if err := pipeline.ValidateMode(mode); err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if v := q.Get("thumbnail"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid thumbnail value %q", v)
		}
		opts.NoThumbnail = !enabled
	}
	if v := q.Get("deterministic"); v != "" {
		deterministic, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid deterministic value %q", v)
		}
		opts.DeterministicIDs = deterministic
	}
	return opts, nil
}

// readDocument decodes a size-limited body as JSON, or YAML when the content
// type says so. The returned status is 413 for oversized bodies and 400 for
// undecodable ones.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (any, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", s.cfg.MaxBodyBytes)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("read body: %w", err)
	}

	format := mindmap.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = mindmap.FormatYAML
	}
	raw, err := mindmap.Decode(data, format)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return raw, http.StatusOK, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	}
	if status == http.StatusBadRequest {
		resp.Issues = mindmap.Issues(err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, errorResponse{Error: msg})
}
