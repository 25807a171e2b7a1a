// Package archive packages emitted artifacts into an XMind container.
//
// A container is a ZIP archive whose entries are each Deflate-compressed and
// written in a fixed order so the entry layout is reproducible. Two layouts
// exist:
//
//   - modern: content.json, manifest.json, metadata.json, content.xml,
//     Thumbnails/thumbnail.png
//   - legacy: content.xml, META-INF/manifest.xml, meta.xml
//
// Use [ModernEntries] or [LegacyEntries] to build the entry list and [WriteFile]
// to produce the container on disk.
package archive

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/manifest"
)

// Entry is a single file inside the container.
type Entry struct {
	Name string
	Data []byte
}

// Bundle holds the artifacts of the modern layout. A nil Thumbnail is written
// as a zero-length entry.
type Bundle struct {
	ContentJSON  []byte
	ManifestJSON []byte
	MetadataJSON []byte
	ContentXML   []byte
	Thumbnail    []byte
}

// LegacyBundle holds the artifacts of the legacy layout.
type LegacyBundle struct {
	ContentXML  []byte
	ManifestXML []byte
	MetaXML     []byte
}

// ModernEntries returns the modern layout in write order.
func ModernEntries(b Bundle) []Entry {
	return []Entry{
		{Name: manifest.PathContentJSON, Data: b.ContentJSON},
		{Name: manifest.PathManifestJSON, Data: b.ManifestJSON},
		{Name: manifest.PathMetadataJSON, Data: b.MetadataJSON},
		{Name: manifest.PathContentXML, Data: b.ContentXML},
		{Name: manifest.PathThumbnail, Data: b.Thumbnail},
	}
}

// LegacyEntries returns the legacy layout in write order.
func LegacyEntries(b LegacyBundle) []Entry {
	return []Entry{
		{Name: manifest.PathContentXML, Data: b.ContentXML},
		{Name: manifest.PathManifestXML, Data: b.ManifestXML},
		{Name: manifest.PathMetaXML, Data: b.MetaXML},
	}
}

// Write writes entries to w as a ZIP archive, in order, each Deflate-compressed
// and stamped with modified. Empty entries are still written.
func Write(w io.Writer, entries []Entry, modified time.Time) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// WriteFile writes the container to path. Any failure is a WRITE_FAILURE and
// the partially written file is removed.
func WriteFile(path string, entries []Entry, modified time.Time) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeWriteFailure, cerr, "close %s", path)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Write(f, entries, modified); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "write %s", path)
	}
	return nil
}

// Names returns the entry names in order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
