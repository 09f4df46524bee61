package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nmaniam/topovis/pkg/topology"
)

// Payload is the renderer-facing projection of a topology model. Unlike the
// model itself it is fully JSON-serializable and deterministically ordered,
// so two runs over the same snapshot produce byte-identical artifacts. The
// same payload feeds the embedded HTML viewer and the JSON API.
type Payload struct {
	DeviceNodes   []Node              `json:"device_nodes"`
	DeviceEdges   []DeviceEdge        `json:"device_edges"`
	PortsByDevice map[string][]string `json:"ports_by_device"`
	PortMeta      map[string]PortMeta `json:"port_meta"`
	PortEdges     []PortEdge          `json:"port_edges"`
	SegNodes      []Node              `json:"seg_nodes"`
	SegEdges      []SegEdge           `json:"seg_edges"`
	AnomalyNotes  []string            `json:"anomaly_notes"`
	VlanGroups    VlanGroups          `json:"vlan_groups"`
}

// Node is a renderable graph node, either a device or a shared segment.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// DeviceEdge aggregates all point-to-point links between two devices into a
// single edge whose label carries the link count.
type DeviceEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
	Width int    `json:"width"`
}

// PortEdge is a single point-to-point link at port granularity.
type PortEdge struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Label string       `json:"label"`
	Meta  PortEdgeMeta `json:"meta"`
}

// PortEdgeMeta names the endpoints of a port edge.
type PortEdgeMeta struct {
	ADev  string `json:"a_dev"`
	APort string `json:"a_port"`
	BDev  string `json:"b_dev"`
	BPort string `json:"b_port"`
}

// SegEdge connects a port node to a shared-segment node.
type SegEdge struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Label string      `json:"label"`
	Meta  SegEdgeMeta `json:"meta"`
}

// SegEdgeMeta names the port and segment of a segment edge.
type SegEdgeMeta struct {
	Dev  string `json:"dev"`
	Port string `json:"port"`
	Seg  string `json:"seg"`
}

// PortMeta is the serialized per-port attribute block. Vlan is null when the
// port belongs to no VLAN.
type PortMeta struct {
	Alias  string  `json:"alias"`
	Status string  `json:"status"`
	Speed  string  `json:"speed"`
	MTU    string  `json:"mtu"`
	FEC    string  `json:"fec"`
	Type   string  `json:"type"`
	Vlan   *string `json:"vlan"`
}

// VlanGroups maps device → vlan id → member ports, restricted to VLANs with
// at least two rendered ports on the device.
type VlanGroups map[string]map[string][]string

const maxEdgeWidth = 10

// MakePayload projects a topology model into its renderable payload.
//
// Port listings include every interface the device reported plus every
// linked port, so the per-device view always shows the full chassis even
// when most ports carry no link. All slices are sorted: devices and
// segments lexicographically, ports naturally (Ethernet4 before
// Ethernet10).
func MakePayload(m *topology.Model) *Payload {
	p := &Payload{
		DeviceNodes:   make([]Node, 0, len(m.Devices)),
		DeviceEdges:   []DeviceEdge{},
		PortsByDevice: make(map[string][]string),
		PortMeta:      make(map[string]PortMeta),
		PortEdges:     make([]PortEdge, 0, len(m.P2PEdges)),
		SegNodes:      make([]Node, 0, len(m.SegNodes)),
		SegEdges:      make([]SegEdge, 0, len(m.SegEdges)),
		AnomalyNotes:  []string{},
		VlanGroups:    make(VlanGroups),
	}

	for _, d := range sortedKeys(m.Devices) {
		p.DeviceNodes = append(p.DeviceNodes, Node{ID: "dev:" + d, Label: d, Kind: "device"})
	}
	p.DeviceEdges = aggregateDeviceEdges(m.P2PEdges)

	ports := collectPorts(m)
	for dev, set := range ports {
		names := make([]string, 0, len(set))
		for port := range set {
			names = append(names, port)
		}
		sort.Slice(names, func(i, j int) bool { return NaturalCompare(names[i], names[j]) < 0 })
		p.PortsByDevice[dev] = names
	}

	for _, e := range m.P2PEdges {
		p.PortEdges = append(p.PortEdges, PortEdge{
			From:  "port:" + e.ADev + ":" + e.APort,
			To:    "port:" + e.BDev + ":" + e.BPort,
			Label: e.APort + " ↔ " + e.BPort,
			Meta:  PortEdgeMeta{ADev: e.ADev, APort: e.APort, BDev: e.BDev, BPort: e.BPort},
		})
	}
	// Model edge slices follow snapshot map iteration order; presentation
	// order is pinned here so identical snapshots render identical bytes.
	sort.Slice(p.PortEdges, func(i, j int) bool {
		a, b := p.PortEdges[i].Meta, p.PortEdges[j].Meta
		if a.ADev != b.ADev {
			return NaturalCompare(a.ADev, b.ADev) < 0
		}
		if a.APort != b.APort {
			return NaturalCompare(a.APort, b.APort) < 0
		}
		if a.BDev != b.BDev {
			return NaturalCompare(a.BDev, b.BDev) < 0
		}
		return NaturalCompare(a.BPort, b.BPort) < 0
	})

	for _, s := range sortedKeys(m.SegNodes) {
		p.SegNodes = append(p.SegNodes, Node{ID: "seg:" + s, Label: s, Kind: "segment"})
	}
	for _, e := range m.SegEdges {
		p.SegEdges = append(p.SegEdges, SegEdge{
			From:  "port:" + e.Device + ":" + e.Port,
			To:    "seg:" + e.Segment,
			Label: "shared",
			Meta:  SegEdgeMeta{Dev: e.Device, Port: e.Port, Seg: e.Segment},
		})
	}
	sort.Slice(p.SegEdges, func(i, j int) bool {
		a, b := p.SegEdges[i].Meta, p.SegEdges[j].Meta
		if a.Dev != b.Dev {
			return NaturalCompare(a.Dev, b.Dev) < 0
		}
		if a.Port != b.Port {
			return NaturalCompare(a.Port, b.Port) < 0
		}
		return a.Seg < b.Seg
	})

	p.AnomalyNotes = anomalyNotes(m)
	p.PortMeta = projectPortMeta(m, ports)
	p.VlanGroups = vlanGroups(m, p.PortsByDevice)
	return p
}

// MarshalCompact renders the payload as compact JSON for template injection.
func (p *Payload) MarshalCompact() ([]byte, error) {
	return json.Marshal(p)
}

// MarshalIndent renders the payload as indented JSON for file artifacts.
func (p *Payload) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// aggregateDeviceEdges collapses port-level links into one edge per device
// pair, labeled with the link count. Edge width saturates so dense pairs do
// not dominate the canvas.
func aggregateDeviceEdges(edges []topology.P2PEdge) []DeviceEdge {
	type pair struct{ a, b string }
	agg := make(map[pair]int)
	for _, e := range edges {
		p := pair{a: e.ADev, b: e.BDev}
		if p.b < p.a {
			p.a, p.b = p.b, p.a
		}
		agg[p]++
	}

	pairs := make([]pair, 0, len(agg))
	for p := range agg {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	out := make([]DeviceEdge, 0, len(pairs))
	for _, p := range pairs {
		cnt := agg[p]
		width := 1 + cnt
		if width > maxEdgeWidth {
			width = maxEdgeWidth
		}
		out = append(out, DeviceEdge{
			From:  "dev:" + p.a,
			To:    "dev:" + p.b,
			Label: fmt.Sprintf("%d", cnt),
			Width: width,
		})
	}
	return out
}

// collectPorts unions each device's reported interfaces with the ports
// referenced by point-to-point and segment edges.
func collectPorts(m *topology.Model) map[string]map[string]struct{} {
	ports := make(map[string]map[string]struct{})
	add := func(dev, port string) {
		if ports[dev] == nil {
			ports[dev] = make(map[string]struct{})
		}
		ports[dev][port] = struct{}{}
	}
	for dev, ifaces := range m.Interfaces {
		for port := range ifaces {
			add(dev, port)
		}
	}
	for _, e := range m.P2PEdges {
		add(e.ADev, e.APort)
		add(e.BDev, e.BPort)
	}
	for _, e := range m.SegEdges {
		add(e.Device, e.Port)
	}
	return ports
}

// anomalyNotes renders one human-readable line per anomalous port, naming
// the distinct remote devices observed behind it.
func anomalyNotes(m *topology.Model) []string {
	refs := make([]topology.PortRef, 0, len(m.AnomalousPorts))
	for p := range m.AnomalousPorts {
		refs = append(refs, p)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Device != refs[j].Device {
			return refs[i].Device < refs[j].Device
		}
		return refs[i].Port < refs[j].Port
	})

	notes := make([]string, 0, len(refs))
	for _, ref := range refs {
		seg := topology.SegmentName(ref.Device, ref.Port)
		seen := make(map[string]struct{})
		for member := range m.SegMembers[seg] {
			seen[member.Device] = struct{}{}
		}
		nbrs := make([]string, 0, len(seen))
		for d := range seen {
			nbrs = append(nbrs, d)
		}
		sort.Strings(nbrs)
		notes = append(notes, fmt.Sprintf("%s sees multiple neighbors: %s", ref, strings.Join(nbrs, ", ")))
	}
	return notes
}

// projectPortMeta serializes metadata for every rendered port. Linked ports
// carry the model's reconciled metadata; unlinked ports fall back to the raw
// interface row with the same defaults. The VLAN membership table overrides
// the interface table in both cases.
func projectPortMeta(m *topology.Model, ports map[string]map[string]struct{}) map[string]PortMeta {
	out := make(map[string]PortMeta)
	for dev, set := range ports {
		for port := range set {
			key := topology.PortRef{Device: dev, Port: port}.String()

			var pm PortMeta
			if mm, ok := m.PortMeta[key]; ok {
				pm = PortMeta{
					Alias:  mm.Alias,
					Status: mm.Status,
					Speed:  mm.Speed,
					MTU:    mm.MTU,
					FEC:    mm.FEC,
					Type:   mm.Type,
					Vlan:   mm.Vlan,
				}
			} else {
				pm = PortMeta{
					Alias:  topology.DefaultAlias,
					Status: topology.DefaultStatus,
					Speed:  topology.DefaultAttr,
					MTU:    topology.DefaultAttr,
					FEC:    topology.DefaultAttr,
					Type:   topology.DefaultAttr,
				}
				if iface, ok := m.Interfaces[dev][port]; ok {
					if iface.Alias != "" {
						pm.Alias = iface.Alias
					}
					if iface.Status != "" {
						pm.Status = iface.Status
					}
					if iface.Speed != "" {
						pm.Speed = iface.Speed
					}
					if iface.MTU != "" {
						pm.MTU = iface.MTU
					}
					if iface.FEC != "" {
						pm.FEC = iface.FEC
					}
					if iface.Type != "" {
						pm.Type = iface.Type
					}
					pm.Vlan = iface.Vlan
				}
			}
			if vlan, ok := topology.ResolveVlan(m.VlanMembership, dev, port); ok {
				pm.Vlan = &vlan
			}
			out[key] = pm
		}
	}
	return out
}

// vlanGroups selects, per device, the VLANs with two or more rendered ports.
// Singleton memberships add visual noise without conveying grouping, so they
// are dropped.
func vlanGroups(m *topology.Model, portsByDevice map[string][]string) VlanGroups {
	groups := make(VlanGroups)
	for dev, ports := range portsByDevice {
		groups[dev] = make(map[string][]string)
		rendered := make(map[string]struct{}, len(ports))
		for _, p := range ports {
			rendered[p] = struct{}{}
		}
		for vlanID, members := range m.VlanMembership[dev] {
			valid := make([]string, 0, len(members))
			for _, p := range members {
				if _, ok := rendered[p]; ok {
					valid = append(valid, p)
				}
			}
			if len(valid) < 2 {
				continue
			}
			sort.Slice(valid, func(i, j int) bool { return NaturalCompare(valid[i], valid[j]) < 0 })
			groups[dev][vlanID] = valid
		}
	}
	return groups
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
