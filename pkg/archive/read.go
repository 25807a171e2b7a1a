package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/mindpack/pkg/errors"
)

// Info describes one entry of an existing container.
type Info struct {
	Name             string
	Method           uint16
	CompressedSize   uint64
	UncompressedSize uint64
}

// List returns the entries of the ZIP archive in r in archive order.
func List(r io.ReaderAt, size int64) ([]Info, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "open archive")
	}
	out := make([]Info, 0, len(zr.File))
	for _, f := range zr.File {
		out = append(out, Info{
			Name:             f.Name,
			Method:           f.Method,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		})
	}
	return out, nil
}

// ListFile lists the entries of the container at path.
func ListFile(path string) ([]Info, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeInputMissing, "archive %q not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return List(f, st.Size())
}

// ReadEntry returns the uncompressed contents of the named entry.
func ReadEntry(r io.ReaderAt, size int64, name string) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "open archive")
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s: %w", name, os.ErrNotExist)
}
