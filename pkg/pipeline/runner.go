package pipeline

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/herblab/specnet/pkg/bipartite"
	"github.com/herblab/specnet/pkg/cache"
	"github.com/herblab/specnet/pkg/graph"
	specio "github.com/herblab/specnet/pkg/io"
	"github.com/herblab/specnet/pkg/namesmap"
	"github.com/herblab/specnet/pkg/records"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → project pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID)

	// Stage 1: Load
	loadStart := time.Now()
	batch, nm, err := r.load(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.RecordCount = batch.Len()

	logger.Info("loaded records",
		"path", opts.RecordsPath,
		"records", batch.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	network, networkKey, buildHit, err := r.BuildWithCacheInfo(ctx, batch, nm, opts)
	if err != nil {
		return nil, err
	}
	result.Network = network
	result.NetworkKey = networkKey
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = network.NodeCount()
	result.Stats.EdgeCount = network.EdgeCount()
	result.CacheInfo.BuildHit = buildHit

	logger.Info("built network",
		"nodes", network.NodeCount(),
		"edges", network.EdgeCount(),
		"cached", buildHit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Project
	projectStart := time.Now()
	g, projectHit, err := r.ProjectWithCacheInfo(ctx, network, networkKey, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.ProjectTime = time.Since(projectStart)
	result.CacheInfo.ProjectHit = projectHit

	logger.Info("projected network",
		"partition", opts.Partition,
		"rule", opts.Rule,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", projectHit,
		"duration", result.Stats.ProjectTime)

	return result, nil
}

// Build runs the load and build stages only, returning the network, its
// cache key, and cache hit info. Used by commands that want a network
// without projecting it.
func (r *Runner) Build(ctx context.Context, opts Options) (*bipartite.Network, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	batch, nm, err := r.load(opts)
	if err != nil {
		return nil, "", false, err
	}
	return r.BuildWithCacheInfo(ctx, batch, nm, opts)
}

// load reads the records batch and, when configured, the names map.
func (r *Runner) load(opts Options) (*records.Batch, namesmap.NamesMap, error) {
	var batch *records.Batch
	var err error
	switch opts.Format {
	case FormatTOML:
		batch, err = records.LoadTOML(opts.RecordsPath)
	default:
		var csvOpts []records.CSVOption
		if opts.Separator != "" {
			csvOpts = append(csvOpts, records.WithSeparator(opts.Separator))
		}
		if opts.Header {
			csvOpts = append(csvOpts, records.WithHeader())
		}
		batch, err = records.LoadCSV(opts.RecordsPath, csvOpts...)
	}
	if err != nil {
		return nil, nil, err
	}

	var nm namesmap.NamesMap
	if opts.NamesMapPath != "" {
		nm, err = namesmap.LoadTOML(opts.NamesMapPath)
		if err != nil {
			return nil, nil, err
		}
	}
	return batch, nm, nil
}

// BuildWithCacheInfo constructs the bipartite network with caching and
// returns its cache key and cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, batch *records.Batch, nm namesmap.NamesMap, opts Options) (*bipartite.Network, string, bool, error) {
	keyOpts := cache.NetworkKeyOpts{}
	if nm != nil {
		keyOpts.NamesMapHash = namesMapHash(nm)
	}
	cacheKey := r.Keyer.NetworkKey(batch.Hash(), keyOpts)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			n, err := specio.ReadNetworkJSON(bytes.NewReader(data))
			if err == nil {
				return n, cacheKey, true, nil // Cache hit
			}
		}
	}

	var buildOpts []bipartite.Option
	if nm != nil {
		buildOpts = append(buildOpts, bipartite.WithNamesMap(nm))
	}
	n, err := bipartite.New(batch.Species, batch.Collectors, buildOpts...)
	if err != nil {
		return nil, "", false, err
	}

	var buf bytes.Buffer
	if err := specio.WriteNetworkJSON(n, &buf); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, buf.Bytes(), TTLNetwork)
	}

	return n, cacheKey, false, nil // Cache miss
}

// ProjectWithCacheInfo projects the network with caching and returns cache
// hit info.
func (r *Runner) ProjectWithCacheInfo(ctx context.Context, n *bipartite.Network, networkKey string, opts Options) (*graph.Graph, bool, error) {
	partition, err := bipartite.ParsePartition(opts.Partition)
	if err != nil {
		return nil, false, err
	}
	rule, err := bipartite.ParseRule(opts.Rule)
	if err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.ProjectionKey(networkKey, cache.ProjectionKeyOpts{
		Partition: opts.Partition,
		Rule:      opts.Rule,
		Threshold: opts.Threshold,
		HasThresh: opts.HasThresh,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := specio.ReadGraphJSON(bytes.NewReader(data))
			if err == nil {
				return g, true, nil // Cache hit
			}
		}
	}

	var projectOpts []bipartite.ProjectOption
	if opts.HasThresh {
		projectOpts = append(projectOpts, bipartite.WithThreshold(opts.Threshold))
	}
	g, err := n.Project(partition, rule, projectOpts...)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := specio.WriteGraphJSON(g, &buf); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, buf.Bytes(), TTLProjection)
	}

	return g, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// namesMapHash derives a stable hash of a names map for cache keys.
func namesMapHash(nm namesmap.NamesMap) string {
	mapping := nm.Mapping()
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	// Sorted key-value interleaving keeps the hash order-independent.
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k, mapping[k])
	}
	data := []byte{}
	for _, p := range parts {
		data = append(data, p...)
		data = append(data, 0)
	}
	return cache.Hash(data)
}
