// Package pipeline provides the collect → build → render pipeline behind
// every topovis entry point.
//
// The pipeline consists of three stages:
//
//  1. Collect: gather per-device link-layer snapshots over SSH (or load a
//     previously saved snapshot file)
//  2. Build: assemble the snapshot into a validated topology model
//  3. Render: generate output artifacts in one or more formats
//
// Each stage can be run independently or as part of the complete pipeline,
// which keeps CLI and HTTP server behavior identical.
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Inventory: inv,
//	    Formats:   []string{"html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts["html"]
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nmaniam/topovis/pkg/cache"
	"github.com/nmaniam/topovis/pkg/collect"
	"github.com/nmaniam/topovis/pkg/export"
	"github.com/nmaniam/topovis/pkg/inventory"
	"github.com/nmaniam/topovis/pkg/snapshot"
	"github.com/nmaniam/topovis/pkg/topology"
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// DefaultFormat is used when no formats are requested.
const DefaultFormat = FormatHTML

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: html, json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the topology pipeline.
// The serializable fields support JSON for API requests.
type Options struct {
	// Collect options
	IgnorePorts []string      `json:"ignore_ports,omitempty"` // "device:port" entries excluded from the graph
	Refresh     bool          `json:"refresh,omitempty"`      // bypass the snapshot cache
	Timeout     time.Duration `json:"timeout,omitempty"`      // per-device SSH dial timeout
	Concurrency int           `json:"concurrency,omitempty"`  // parallel device sessions

	// Render options
	Formats       []string `json:"formats,omitempty"`
	SelfContained bool     `json:"self_contained,omitempty"` // inline the JS library into HTML output

	// Runtime options (not serialized)
	Inventory *inventory.Inventory `json:"-"` // devices to scrape
	Snapshot  snapshot.Snapshot    `json:"-"` // pre-loaded snapshot; skips collection
	Logger    *log.Logger          `json:"-"`
	Events    func(collect.Event)  `json:"-"` // per-device collection progress

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool

	// ignore is the parsed union of IgnorePorts and the inventory's set.
	ignore topology.PortSet
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Inventory == nil && o.Snapshot == nil {
		return fmt.Errorf("inventory or snapshot is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	ignore, err := inventory.ParseIgnorePorts(o.IgnorePorts)
	if err != nil {
		return err
	}
	if o.Inventory != nil {
		for p := range o.Inventory.Ignore {
			ignore.Add(p)
		}
	}
	o.ignore = ignore

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IgnoreSet returns the effective ignored-port set.
// ValidateAndSetDefaults must have been called.
func (o *Options) IgnoreSet() topology.PortSet {
	return o.ignore
}

// Hosts returns the sorted inventory host list, or nil without an inventory.
func (o *Options) Hosts() []string {
	if o.Inventory == nil {
		return nil
	}
	hosts := make([]string, 0, len(o.Inventory.Devices))
	for _, d := range o.Inventory.Devices {
		hosts = append(hosts, d.Host)
	}
	sort.Strings(hosts)
	return hosts
}

// SnapshotKeyOpts returns cache key options for snapshot collection.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{Hosts: o.Hosts()}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	ignored := make([]string, 0, len(o.ignore))
	for p := range o.ignore {
		ignored = append(ignored, p.String())
	}
	sort.Strings(ignored)
	return cache.ArtifactKeyOpts{Format: format, IgnorePorts: ignored}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Snapshot is the raw per-device scrape the model was built from.
	Snapshot snapshot.Snapshot

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Model is the assembled topology.
	Model *topology.Model

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DeviceCount  int
	LinkCount    int
	SegmentCount int
	AnomalyCount int
	CollectTime  time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool // whether the snapshot came from cache
	RenderHit   bool // whether all artifacts came from cache
}

// renderFormat dispatches one format to its renderer.
func renderFormat(ctx context.Context, format string, payload *export.Payload, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return export.RenderHTML(ctx, payload, export.HTMLOptions{SelfContained: opts.SelfContained})
	case FormatJSON:
		return payload.MarshalIndent()
	case FormatDOT:
		return []byte(export.ToDOT(payload)), nil
	case FormatSVG:
		return export.RenderSVG(ctx, export.ToDOT(payload))
	case FormatPNG:
		return export.RenderPNG(ctx, export.ToDOT(payload))
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}
