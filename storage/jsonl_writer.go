package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"re-crawler/models"
)

// JSONLWriter writes one JSON object per line, keyed like models.Columns.
type JSONLWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewJSONLWriter creates (or truncates) the file at path.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("jsonl: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: create file %q: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{f: f, enc: enc}, nil
}

func (j *JSONLWriter) Write(_ context.Context, r models.ListingRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(r); err != nil {
		return fmt.Errorf("jsonl: write %s: %w", r.URL, err)
	}
	return nil
}

func (j *JSONLWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}
