// Package sink provides record writers for benchmark output: a JSONL
// file sink and a Postgres table sink, both keyed by workspace.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pricelens/backend/internal/domain"
)

// JSONLSink writes benchmark records to <dir>/<workspace_id>.jsonl, one
// record per line. Re-running a workspace replaces the file.
type JSONLSink struct {
	dir string
}

// NewJSONLSink creates a JSONL file sink rooted at dir
func NewJSONLSink(dir string) *JSONLSink {
	return &JSONLSink{dir: dir}
}

// WriteRecords writes all records for a workspace. An empty slice
// produces an empty file so consumers can distinguish "ran, no matches"
// from "never ran".
func (s *JSONLSink) WriteRecords(ctx context.Context, workspaceID string, records []domain.BenchmarkRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, workspaceID+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return f.Sync()
}
