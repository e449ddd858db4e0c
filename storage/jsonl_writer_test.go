package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"re-crawler/models"
)

func TestJSONLWriterLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.jsonl")
	w, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatalf("NewJSONLWriter: %v", err)
	}

	private := sampleRecord("https://www.olx.ro/d/oferta/a")
	private.Private = models.SellerPrivate
	unknown := sampleRecord("https://www.storia.ro/ro/oferta/b")

	for _, r := range []models.ListingRecord{private, unknown} {
		if err := w.Write(context.Background(), r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	for _, col := range models.Columns {
		if _, ok := lines[0][col]; !ok {
			t.Errorf("missing key %q", col)
		}
	}
	if lines[0]["private"] != true {
		t.Errorf("private: got %v, want true", lines[0]["private"])
	}
	if lines[1]["private"] != models.NA {
		t.Errorf("private: got %v, want NA", lines[1]["private"])
	}
	if lines[1]["sqm_price"] != float64(1835) {
		t.Errorf("sqm_price: got %v", lines[1]["sqm_price"])
	}
}
