package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mindpack/pkg/errors"
)

// Format identifies the syntax of an input document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the input format from a file name. Unknown extensions are
// treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadJSON decodes exactly one JSON value from r into generic maps and lists.
// Syntax errors and trailing data are reported as MALFORMED_INPUT.
func ReadJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeMalformedInput, "decode JSON: unexpected data after document")
	}
	return raw, nil
}

// ReadYAML decodes a YAML document from r into the same generic shape as ReadJSON.
func ReadYAML(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode YAML")
	}
	return raw, nil
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format) (any, error) {
	if format == FormatYAML {
		return ReadYAML(r)
	}
	return ReadJSON(r)
}

// Decode decodes an in-memory document.
func Decode(data []byte, format Format) (any, error) {
	return Read(bytes.NewReader(data), format)
}

// Import reads and decodes the file at path, choosing the format from its
// extension. A missing file is reported as INPUT_MISSING.
func Import(path string) (any, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeInputMissing, "input file %q not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFor(path))
}
