// Package gallery keeps the index of generated posters: a JSON file on disk
// with listing, filtering and manifest export.
package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Index is the poster catalog. All methods are safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	path    string
	records []Record
}

// Load reads the index file at path. A missing file yields an empty index.
func Load(path string) (*Index, error) {
	ix := &Index{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ix, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gallery index %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &ix.records); err != nil {
		return nil, fmt.Errorf("parse gallery index %s: %w", path, err)
	}
	return ix, nil
}

// Add appends a record and persists the index.
func (ix *Index) Add(r Record) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.records = append(ix.records, r)
	return ix.save()
}

// List returns all records, newest first.
func (ix *Index) List() []Record {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]Record, len(ix.records))
	copy(out, ix.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Find returns the record with the given id.
func (ix *Index) Find(id string) (Record, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, r := range ix.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// save writes the index. Caller holds the mutex.
func (ix *Index) save() error {
	data, err := json.MarshalIndent(ix.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gallery index: %w", err)
	}
	if dir := filepath.Dir(ix.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create gallery index directory: %w", err)
		}
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("write gallery index %s: %w", ix.path, err)
	}
	return nil
}

// Filter returns the records whose name or designation contains query,
// case-insensitively. An empty query returns records unchanged.
func Filter(records []Record, query string) []Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), query) ||
			strings.Contains(strings.ToLower(r.Designation), query) {
			out = append(out, r)
		}
	}
	return out
}

// ExportManifest renders a plain-text listing of the given records, one
// poster per line.
func ExportManifest(records []Record) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		line := r.Name
		if r.Designation != "" {
			line += " - " + r.Designation
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", line, r.ID))
	}
	return strings.Join(lines, "\n")
}
