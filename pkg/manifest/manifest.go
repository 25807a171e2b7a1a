// Package manifest builds the fixed-shape descriptor files of an XMind
// container: the entry manifest and the authoring metadata, in both the modern
// JSON and the legacy XML flavour.
//
// None of these depend on the document; given the same clock reading the
// output is byte-for-byte identical.
package manifest

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"
)

// Entry paths inside an XMind container.
const (
	PathContentJSON  = "content.json"
	PathManifestJSON = "manifest.json"
	PathMetadataJSON = "metadata.json"
	PathContentXML   = "content.xml"
	PathThumbnail    = "Thumbnails/thumbnail.png"
	PathManifestXML  = "META-INF/manifest.xml"
	PathMetaXML      = "meta.xml"
)

// DataStructureVersion is written to metadata.json.
const DataStructureVersion = "2"

// DefaultAuthor is the creator name recorded when none is configured.
const DefaultAuthor = "XMind Generator"

const (
	namespaceManifest = "urn:xmind:xmap:xmlns:manifest:1.0"
	namespaceMeta     = "urn:xmind:xmap:xmlns:meta:2.0"
	mediaTypeXML      = "text/xml"
)

// ModernManifestPaths are the entries listed by manifest.json.
func ModernManifestPaths() []string {
	return []string{PathContentJSON, PathMetadataJSON, PathContentXML, PathThumbnail}
}

// LegacyManifestPaths are the entries listed by META-INF/manifest.xml.
func LegacyManifestPaths() []string {
	return []string{PathContentXML, PathMetaXML}
}

// Creator identifies the application that wrote the document.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Metadata is the authoring information of a container.
type Metadata struct {
	Creator  Creator
	Modifier Creator
	Created  time.Time
	Modified time.Time
}

// NewMetadata returns metadata for a document created and modified at now.
// An empty creator name becomes [DefaultAuthor].
func NewMetadata(now time.Time, creator Creator) Metadata {
	if creator.Name == "" {
		creator.Name = DefaultAuthor
	}
	return Metadata{
		Creator:  creator,
		Modifier: creator,
		Created:  now,
		Modified: now,
	}
}

type manifestJSON struct {
	FileEntries map[string]struct{} `json:"file-entries"`
}

// ManifestJSON returns manifest.json listing paths.
func ManifestJSON(paths []string) ([]byte, error) {
	m := manifestJSON{FileEntries: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		m.FileEntries[p] = struct{}{}
	}
	return encodeJSON(m)
}

type metadataJSON struct {
	DataStructureVersion string  `json:"dataStructureVersion"`
	Creator              Creator `json:"creator"`
	Modifier             Creator `json:"modifier"`
	Created              string  `json:"created"`
	Modified             string  `json:"modified"`
}

// MetadataJSON returns metadata.json for meta.
func MetadataJSON(meta Metadata) ([]byte, error) {
	return encodeJSON(metadataJSON{
		DataStructureVersion: DataStructureVersion,
		Creator:              meta.Creator,
		Modifier:             meta.Modifier,
		Created:              isoTime(meta.Created),
		Modified:             isoTime(meta.Modified),
	})
}

type manifestXML struct {
	XMLName xml.Name    `xml:"manifest"`
	Xmlns   string      `xml:"xmlns,attr"`
	Entries []fileEntry `xml:"file-entry"`
}

type fileEntry struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// ManifestXML returns the legacy META-INF/manifest.xml listing paths.
func ManifestXML(paths []string) ([]byte, error) {
	m := manifestXML{Xmlns: namespaceManifest}
	for _, p := range paths {
		m.Entries = append(m.Entries, fileEntry{FullPath: p, MediaType: mediaTypeXML})
	}
	return encodeXML(m)
}

type metaXML struct {
	XMLName  xml.Name `xml:"meta"`
	Xmlns    string   `xml:"xmlns,attr"`
	Author   string   `xml:"Author"`
	Created  string   `xml:"Created"`
	Modified string   `xml:"Modified"`
}

// MetaXML returns the legacy meta.xml for meta.
func MetaXML(meta Metadata) ([]byte, error) {
	return encodeXML(metaXML{
		Xmlns:    namespaceMeta,
		Author:   meta.Creator.Name,
		Created:  isoTime(meta.Created),
		Modified: isoTime(meta.Modified),
	})
}

func isoTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
