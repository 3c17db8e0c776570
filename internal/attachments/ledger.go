// Package attachments holds the file list stored with a weekly submission:
// its canonical encoding, the read-side decoder for every historical shape
// of the files column, and the merge applied when a week is re-submitted.
//
// Everything here is pure. Callers may use it concurrently without locking.
package attachments

import (
	"bytes"
	"encoding/json"
	"strings"
)

// fallbackName is shown when a path carries no usable last segment.
const fallbackName = "file"

// Ref is one stored file as the portal knows it.
//
// Path is the object-store key and the identity of the entry. URL is a
// transient download or preview link filled in for responses; it is never
// encoded.
type Ref struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

type storedRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Encode renders refs in the canonical form written to the files column:
// a JSON array of {name, path} objects. An empty or nil list encodes as "[]".
func Encode(refs []Ref) string {
	stored := make([]storedRef, 0, len(refs))
	for _, r := range refs {
		stored = append(stored, storedRef{Name: r.Name, Path: r.Path})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stored); err != nil {
		// a slice of two-string structs always marshals
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Basename returns the text after the last "/" of path, or "file" when the
// path is blank or ends with a slash.
func Basename(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallbackName
	}
	name := path[strings.LastIndex(path, "/")+1:]
	if name == "" {
		return fallbackName
	}
	return name
}

// Paths lists the storage keys of refs in order.
func Paths(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Path)
	}
	return out
}

// Merge folds uploaded into existing keyed by path. Existing entries keep
// their position, an uploaded entry with a known path replaces that entry in
// place, and new paths are appended in upload order. Entries with a blank
// path are dropped.
func Merge(existing, uploaded []Ref) []Ref {
	out := make([]Ref, 0, len(existing)+len(uploaded))
	index := make(map[string]int, len(existing)+len(uploaded))

	add := func(r Ref) {
		if strings.TrimSpace(r.Path) == "" {
			return
		}
		if r.Name == "" {
			r.Name = Basename(r.Path)
		}
		if i, ok := index[r.Path]; ok {
			out[i] = r
			return
		}
		index[r.Path] = len(out)
		out = append(out, r)
	}

	for _, r := range existing {
		add(r)
	}
	for _, r := range uploaded {
		add(r)
	}
	return out
}
