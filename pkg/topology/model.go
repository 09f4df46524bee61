package topology

import "github.com/nmaniam/topovis/pkg/snapshot"

// Build runs the full pipeline over one completed snapshot and assembles
// the immutable Model: normalize, detect anomalies, segmentize, canonicalize
// point-to-point edges, and attach metadata for the linked ports.
//
// The ignore set suppresses specific local-port observations (intentionally
// looped or management ports) before any other processing; nil means no
// suppression.
//
// Build returns a *ValidationError if any final edge references a port
// absent from the assembled PortMeta table.
func Build(s snapshot.Snapshot, ignore PortSet) (*Model, error) {
	n := Normalize(s, ignore)
	anomalous := DetectAnomalousPorts(n.RawEdges)
	seg := Segmentize(n.RawEdges, anomalous)
	p2p := CanonicalizeEdges(seg.P2PRaw)

	linked := LinkedPorts(p2p, seg.SegEdges)
	meta := BuildPortMeta(n.Interfaces, n.VlanMembership, linked)

	m := &Model{
		Devices:        n.Devices,
		Interfaces:     n.Interfaces,
		PortMeta:       meta,
		P2PEdges:       p2p,
		SegNodes:       seg.SegNodes,
		SegEdges:       seg.SegEdges,
		SegMembers:     seg.SegMembers,
		AnomalousPorts: anomalous,
		VlanMembership: n.VlanMembership,
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// validate checks the referential invariant the renderer relies on: every
// port referenced by a point-to-point or segment edge has a PortMeta entry.
func (m *Model) validate() error {
	check := func(dev, port string) error {
		key := PortRef{Device: dev, Port: port}.String()
		if _, ok := m.PortMeta[key]; !ok {
			return &ValidationError{Port: key}
		}
		return nil
	}
	for _, e := range m.P2PEdges {
		if err := check(e.ADev, e.APort); err != nil {
			return err
		}
		if err := check(e.BDev, e.BPort); err != nil {
			return err
		}
	}
	for _, e := range m.SegEdges {
		if err := check(e.Device, e.Port); err != nil {
			return err
		}
	}
	return nil
}
