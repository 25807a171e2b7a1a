package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateInputPath checks that path names an existing regular file.
// A missing file is reported as INPUT_MISSING so callers can fail before any
// conversion work (and before the output file is created).
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return New(ErrCodeInputMissing, "input file %q not found", path)
	}
	if err != nil {
		return Wrap(ErrCodeInputMissing, err, "stat %s", path)
	}
	if info.IsDir() {
		return New(ErrCodeInvalidPath, "input path %q is a directory", path)
	}
	return nil
}

// ValidateOutputPath checks that path can be used as the container destination.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Path must not name an existing directory
//   - The parent directory must exist
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return New(ErrCodeInvalidPath, "output path %q is a directory", path)
	}
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return New(ErrCodeInvalidPath, "output directory %q does not exist", dir)
	}
	return nil
}

// SanitizeFilename reduces name to a safe attachment basename ending in ext.
// Path components, quotes and control characters are removed; an empty result
// falls back to "mindmap".
func SanitizeFilename(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' || r == '/' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(strings.Trim(name, "."))
	if name == "" {
		name = "mindmap"
	}
	return name + ext
}
