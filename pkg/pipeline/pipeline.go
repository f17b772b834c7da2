// Package pipeline provides the load → build → project pipeline for specnet.
//
// This package implements the complete flow from raw occurrence records to a
// projected graph, shared by the CLI and the HTTP API. By centralizing this
// logic, both entry points get identical caching and validation behavior.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read occurrence records from CSV or TOML files
//  2. Build: Construct the bipartite species-collectors network
//  3. Project: Collapse the network onto one partition under a weighting rule
//
// The build and project stages cache their serialized results under
// content-derived keys, so re-running the pipeline on unchanged records is
// cheap.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RecordsPath: "records.csv",
//	    Partition:   "collectors",
//	    Rule:        "simple",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g := result.Graph
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/herblab/specnet/pkg/bipartite"
	"github.com/herblab/specnet/pkg/errors"
	"github.com/herblab/specnet/pkg/graph"
)

// Default values shared by the CLI and the HTTP API.
const (
	// DefaultFormat is the records file format assumed when none is given.
	DefaultFormat = FormatCSV

	// DefaultPartition is the partition projected when none is given.
	DefaultPartition = "collectors"

	// DefaultRule is the weighting rule applied when none is given.
	DefaultRule = "simple"
)

// Records file formats.
const (
	FormatCSV  = "csv"
	FormatTOML = "toml"
)

// ValidFormats is the set of supported records file formats.
var ValidFormats = map[string]bool{
	FormatCSV:  true,
	FormatTOML: true,
}

// Cache TTLs per artifact kind. Networks derive from immutable input files,
// so they keep longer than projection results.
const (
	TTLNetwork    = 24 * time.Hour
	TTLProjection = 6 * time.Hour
)

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	RecordsPath string `json:"records_path"`
	Format      string `json:"format,omitempty"`
	Separator   string `json:"separator,omitempty"` // collectors column separator (CSV only)
	Header      bool   `json:"header,omitempty"`    // skip the first CSV line

	// Build options
	NamesMapPath string `json:"names_map_path,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"` // bypass the cache and rebuild

	// Project options
	Partition string  `json:"partition,omitempty"`
	Rule      string  `json:"rule,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	HasThresh bool    `json:"has_threshold,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline run, for log correlation.
	RunID string

	// Network is the built bipartite network.
	Network *bipartite.Network

	// NetworkKey is the cache key of the network, derived from the records
	// content hash.
	NetworkKey string

	// Graph is the projected graph.
	Graph *graph.Graph

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	NodeCount   int // nodes in the built network
	EdgeCount   int // edges in the built network
	LoadTime    time.Duration
	BuildTime   time.Duration
	ProjectTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit   bool // Whether the built network came from cache
	ProjectHit bool // Whether the projection came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.RecordsPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "records_path is required")
	}

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if !ValidFormats[o.Format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"format must be %q or %q, got %q", FormatCSV, FormatTOML, o.Format)
	}

	if o.Partition == "" {
		o.Partition = DefaultPartition
	}
	if _, err := bipartite.ParsePartition(o.Partition); err != nil {
		return err
	}

	if o.Rule == "" {
		o.Rule = DefaultRule
	}
	if _, err := bipartite.ParseRule(o.Rule); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}
