// Package pkg provides the core libraries for Topovis network topology mapping.
//
// # Overview
//
// Topovis scrapes LLDP neighbor tables, interface status, and VLAN membership
// from SONiC switches over SSH and turns them into an interactive topology
// viewer. The pkg directory is organized into the following areas:
//
//  1. [inventory] / [collect] - Device inventory and SSH scraping
//  2. [snapshot] / [topology] - Raw state capture and topology modeling
//  3. [export] - Payload projection and HTML/JSON/DOT/SVG/PNG rendering
//  4. [pipeline] - Orchestration (collect → build → render) with caching
//  5. [cache] / [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through Topovis:
//
//	TOML inventory
//	         ↓
//	    [collect] package (SSH scrape per device)
//	         ↓
//	    [snapshot] package (portable JSON state capture)
//	         ↓
//	    [topology] package (canonical links, segments, anomalies)
//	         ↓
//	    [export] package (viewer payload + artifact rendering)
//	         ↓
//	    HTML/JSON/DOT/SVG/PNG output
//
// # Quick Start
//
// Build a topology from a saved snapshot and render the viewer:
//
//	import (
//	    "context"
//	    "github.com/nmaniam/topovis/pkg/export"
//	    "github.com/nmaniam/topovis/pkg/snapshot"
//	    "github.com/nmaniam/topovis/pkg/topology"
//	)
//
//	// 1. Load a snapshot
//	snap, _ := snapshot.ReadFile("topology_snapshot.json")
//
//	// 2. Assemble the topology model
//	model, _ := topology.Build(snap, nil)
//
//	// 3. Project the viewer payload
//	payload := export.MakePayload(model)
//
//	// 4. Render the standalone HTML viewer
//	html, _ := export.RenderHTML(context.Background(), payload, export.HTMLOptions{})
//
// # Main Packages
//
// ## Core Domain Logic
//
// [snapshot] - Portable JSON capture of per-device interface, LLDP, and VLAN
// state. The snapshot is the boundary between collection and modeling: any
// source that produces one (SSH scrape, file, test fixture) feeds the same
// pipeline.
//
// [topology] - Topology assembly. Canonicalizes bidirectional LLDP reports
// into undirected links, detects multi-neighbor ports, and models shared
// segments as synthetic nodes.
//
// [export] - Projects the model into the viewer payload and renders it as
// interactive HTML (vis-network), JSON, Graphviz DOT, SVG, or PNG.
//
// ## Collection
//
// [inventory] - TOML device inventory with SSH connection settings and
// ignore-port rules.
//
// [collect] - Concurrent SSH scraping of SONiC devices with per-device
// timeouts and progress events.
//
// ## Infrastructure
//
// [cache] - Snapshot and artifact caching with file and Redis backends,
// keyed by inventory host list and snapshot content hash.
//
// [pipeline] - Orchestrates collect → build → render with caching. Both the
// CLI and the HTTP server drive the same Runner.
//
// [observability] - Optional instrumentation hooks for pipeline stages and
// cache operations.
package pkg
