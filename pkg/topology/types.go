// Package topology turns independently scraped per-device link-layer
// observations into one consistent, deduplicated topology graph.
//
// The pipeline is a chain of pure functions over immutable inputs:
//
//	Normalize → DetectAnomalousPorts → Segmentize → CanonicalizeEdges
//	                                              → BuildPortMeta
//
// Build composes the chain into a single Model and validates its
// referential invariants. Nothing in this package logs, blocks, or keeps
// state between runs; each invocation consumes one completed
// snapshot.Snapshot and either produces a Model a renderer can trust
// blindly or fails as a whole.
package topology

import (
	"fmt"

	"github.com/nmaniam/topovis/pkg/snapshot"
)

// Defaults used for PortMeta attributes the scrape never provided.
const (
	DefaultAlias  = "???"
	DefaultStatus = "?"
	DefaultAttr   = "N/A"
)

// SegmentPrefix is the prefix of synthetic segment node names.
const SegmentPrefix = "SEG:"

// PortRef identifies one port on one device.
type PortRef struct {
	Device string
	Port   string
}

func (p PortRef) String() string { return p.Device + ":" + p.Port }

// PortSet is an unordered set of ports. Iteration order is unspecified;
// deterministic presentation ordering belongs to the renderer.
type PortSet map[PortRef]struct{}

// Contains reports whether the set holds the given port.
func (s PortSet) Contains(p PortRef) bool {
	_, ok := s[p]
	return ok
}

// Add inserts a port into the set.
func (s PortSet) Add(p PortRef) { s[p] = struct{}{} }

// RawEdge is one directed LLDP observation: Device heard RemoteDev's
// advertisement on LocalPort, naming RemotePort as the far end.
type RawEdge struct {
	Device     string
	LocalPort  string
	RemoteDev  string
	RemotePort string
}

// Local returns the observing endpoint of the edge.
func (e RawEdge) Local() PortRef { return PortRef{Device: e.Device, Port: e.LocalPort} }

// Remote returns the advertised far endpoint of the edge.
func (e RawEdge) Remote() PortRef { return PortRef{Device: e.RemoteDev, Port: e.RemotePort} }

// P2PEdge is a canonical undirected point-to-point link. Endpoint A
// precedes endpoint B under lexicographic (device, port) order, so the two
// directed observations of one physical link collapse to the same value.
type P2PEdge struct {
	ADev  string
	APort string
	BDev  string
	BPort string
}

// SegmentEdge connects a device port to the synthetic segment node that
// models its shared medium.
type SegmentEdge struct {
	Device  string
	Port    string
	Segment string
}

// PortMeta is the reconciled per-port metadata attached to linked ports.
// Vlan is nil when neither the VLAN membership table nor the interface
// status table assigned the port a VLAN.
type PortMeta struct {
	Alias  string
	Status string
	Speed  string
	MTU    string
	FEC    string
	Type   string
	Vlan   *string
}

// Model is one immutable topology snapshot. It is built per run, handed to
// a renderer, and discarded; no state crosses runs.
type Model struct {
	// Devices holds every device name, including remote devices that were
	// never themselves queried.
	Devices map[string]struct{}

	// Interfaces is the per-device interface table as ingested.
	Interfaces map[string]map[string]snapshot.Interface

	// PortMeta maps "device:port" to reconciled metadata for every port
	// referenced by P2PEdges or SegEdges, and only those.
	PortMeta map[string]PortMeta

	// P2PEdges is the canonical undirected point-to-point edge set.
	P2PEdges []P2PEdge

	// SegNodes is the set of synthetic segment node names ("SEG:dev:port").
	SegNodes map[string]struct{}

	// SegEdges connects anomalous ports to their segment nodes.
	SegEdges []SegmentEdge

	// SegMembers maps a segment node to the remote endpoints seen there.
	SegMembers map[string]PortSet

	// AnomalousPorts holds every port whose LLDP observations disagree on
	// the remote device.
	AnomalousPorts PortSet

	// VlanMembership maps device → vlan id → member ports, as ingested.
	VlanMembership map[string]map[string][]string
}

// SegmentName returns the synthetic node name for an anomalous port.
func SegmentName(dev, port string) string {
	return SegmentPrefix + dev + ":" + port
}

// ValidationError reports a referential invariant violated after assembly:
// an edge referencing a port with no PortMeta entry. A partially consistent
// graph is worse than none, so Build aborts on it.
type ValidationError struct {
	Port string // "device:port" reference missing from PortMeta
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("topology: edge references port %s with no metadata", e.Port)
}
