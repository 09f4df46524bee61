package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nmaniam/topovis/pkg/cache"
	"github.com/nmaniam/topovis/pkg/collect"
	"github.com/nmaniam/topovis/pkg/export"
	"github.com/nmaniam/topovis/pkg/observability"
	"github.com/nmaniam/topovis/pkg/snapshot"
	"github.com/nmaniam/topovis/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP server use this to avoid duplicating caching logic.
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

// Execute runs the complete collect → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Collect
	collectStart := time.Now()
	snap, snapHit, err := r.CollectWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	result.Snapshot = snap
	result.Stats.CollectTime = time.Since(collectStart)
	result.CacheInfo.SnapshotHit = snapHit

	if data, err := snapshot.Marshal(snap); err == nil {
		result.SnapshotHash = cache.Hash(data)
	}

	r.Logger.Info("collected snapshot",
		"devices", len(snap),
		"cached", snapHit,
		"duration", result.Stats.CollectTime)

	// Stage 2: Build
	buildStart := time.Now()
	model, err := r.Build(snap, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Model = model
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.DeviceCount = len(model.Devices)
	result.Stats.LinkCount = len(model.P2PEdges)
	result.Stats.SegmentCount = len(model.SegNodes)
	result.Stats.AnomalyCount = len(model.AnomalousPorts)

	r.Logger.Info("assembled topology",
		"devices", result.Stats.DeviceCount,
		"links", result.Stats.LinkCount,
		"segments", result.Stats.SegmentCount,
		"anomalies", result.Stats.AnomalyCount,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, model, result.SnapshotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// CollectWithCacheInfo obtains a snapshot with caching and returns cache
// hit info. A pre-loaded snapshot in the options bypasses both the cache
// and SSH collection.
func (r *Runner) CollectWithCacheInfo(ctx context.Context, opts Options) (snapshot.Snapshot, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if opts.Snapshot != nil {
		return opts.Snapshot, false, nil
	}

	cacheKey := r.Keyer.SnapshotKey(opts.SnapshotKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if snap, err := snapshot.Read(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return snap, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	hosts := opts.Hosts()
	collectStart := time.Now()
	observability.Pipeline().OnCollectStart(ctx, hosts)

	collector := collect.New(opts.Logger)
	collector.Events = opts.Events
	if opts.Timeout > 0 {
		collector.Timeout = opts.Timeout
	}
	if opts.Concurrency > 0 {
		collector.MaxConcurrent = opts.Concurrency
	}
	snap, err := collector.Collect(ctx, opts.Inventory.Devices)
	observability.Pipeline().OnCollectComplete(ctx, hosts, len(snap), time.Since(collectStart), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := snapshot.Marshal(snap); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot)
		observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
	}

	return snap, false, nil
}

// Collect is a convenience wrapper that discards the cache hit info.
func (r *Runner) Collect(ctx context.Context, opts Options) (snapshot.Snapshot, error) {
	snap, _, err := r.CollectWithCacheInfo(ctx, opts)
	return snap, err
}

// Build assembles a snapshot into a validated topology model.
// The stage is pure and cheap, so it is never cached.
func (r *Runner) Build(snap snapshot.Snapshot, opts Options) (*topology.Model, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(context.Background(), len(snap))
	model, err := topology.Build(snap, opts.IgnoreSet())
	if err != nil {
		observability.Pipeline().OnBuildComplete(context.Background(), 0, 0, time.Since(start), err)
		return nil, err
	}
	observability.Pipeline().OnBuildComplete(context.Background(),
		len(model.P2PEdges), len(model.AnomalousPorts), time.Since(start), nil)
	return model, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. Artifacts are keyed by snapshot hash, format, and the ignore
// set, so the same snapshot rendered with different options caches
// independently.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, model *topology.Model, snapshotHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache first.
	allCached := true
	artifacts := make(map[string][]byte)

	if snapshotHash != "" {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(snapshotHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	payload := export.MakePayload(model)
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, format, payload, opts)
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), nil)

	if snapshotHash != "" {
		for format, data := range rendered {
			cacheKey := r.Keyer.ArtifactKey(snapshotHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, model *topology.Model, snapshotHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, model, snapshotHash, opts)
	return artifacts, err
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
