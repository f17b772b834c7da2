package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/herblab/specnet/pkg/cache"
	"github.com/herblab/specnet/pkg/errors"
)

func writeRecords(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	content := "s1,c1; c2\ns2,c1\ns2,c2; c3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecute(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		RecordsPath: writeRecords(t),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID must be set")
	}
	if result.Stats.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", result.Stats.RecordCount)
	}
	if result.Stats.NodeCount != 5 || result.Stats.EdgeCount != 5 {
		t.Errorf("network %d/%d nodes/edges, want 5/5",
			result.Stats.NodeCount, result.Stats.EdgeCount)
	}

	// Default projection: collectors under the simple rule.
	if w, _ := result.Graph.Weight("c1", "c2"); w != 2 {
		t.Errorf("weight(c1, c2) = %v, want 2", w)
	}
	if result.CacheInfo.BuildHit || result.CacheInfo.ProjectHit {
		t.Error("null cache must never hit")
	}
}

func TestExecuteCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{RecordsPath: writeRecords(t), Rule: "cosine"}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.BuildHit || first.CacheInfo.ProjectHit {
		t.Error("first run must miss the cache")
	}

	second, err := runner.Execute(ctx, Options{RecordsPath: opts.RecordsPath, Rule: "cosine"})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.BuildHit || !second.CacheInfo.ProjectHit {
		t.Errorf("second run should hit both stages: %+v", second.CacheInfo)
	}
	if second.Network.EdgeCount() != first.Network.EdgeCount() {
		t.Error("cached network differs from built network")
	}
	if len(second.Graph.Edges()) != len(first.Graph.Edges()) {
		t.Error("cached projection differs from computed projection")
	}

	// Refresh bypasses the cache.
	third, err := runner.Execute(ctx, Options{RecordsPath: opts.RecordsPath, Rule: "cosine", Refresh: true})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.BuildHit || third.CacheInfo.ProjectHit {
		t.Error("refresh run must bypass the cache")
	}
}

func TestExecuteDifferentOptionsDifferentKeys(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	path := writeRecords(t)
	ctx := context.Background()

	if _, err := runner.Execute(ctx, Options{RecordsPath: path, Rule: "simple"}); err != nil {
		t.Fatal(err)
	}
	result, err := runner.Execute(ctx, Options{RecordsPath: path, Rule: "additive"})
	if err != nil {
		t.Fatal(err)
	}
	// Same records hit the network cache, but a different rule must not
	// reuse the simple projection.
	if !result.CacheInfo.BuildHit {
		t.Error("build stage should hit for identical records")
	}
	if result.CacheInfo.ProjectHit {
		t.Error("projection stage must miss for a different rule")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"MissingRecords", Options{}, errors.ErrCodeInvalidInput},
		{"BadFormat", Options{RecordsPath: "r.csv", Format: "xml"}, errors.ErrCodeInvalidFormat},
		{"BadPartition", Options{RecordsPath: "r.csv", Partition: "nodes"}, errors.ErrCodeInvalidPartition},
		{"BadRule", Options{RecordsPath: "r.csv", Rule: "jaccard"}, errors.ErrCodeInvalidRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	opts := Options{RecordsPath: "r.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if opts.Format != FormatCSV || opts.Partition != DefaultPartition || opts.Rule != DefaultRule {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("logger default not applied")
	}
}

func TestExecuteMissingFile(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		RecordsPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want NOT_FOUND_FILE", err)
	}
}
