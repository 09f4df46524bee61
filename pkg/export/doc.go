// Package export renders topology models into shareable artifacts.
//
// Every renderer consumes the same [Payload], a deterministic JSON-ready
// projection of a [topology.Model]. Supported outputs:
//
//   - HTML: interactive vis-network viewer, optionally self-contained
//   - JSON: the payload itself, for tooling and the HTTP API
//   - DOT:  Graphviz source at device granularity
//   - SVG/PNG: Graphviz renderings of the DOT graph
package export
