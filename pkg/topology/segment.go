package topology

// Segmented is the split of the raw edge list into point-to-point
// candidates and shared-segment membership.
type Segmented struct {
	// P2PRaw holds the directed edges whose local port is non-anomalous.
	P2PRaw []RawEdge
	// SegEdges connects each anomalous port to its synthetic segment node.
	SegEdges []SegmentEdge
	// SegMembers maps a segment node to the remote (device, port) pairs
	// observed on the shared medium.
	SegMembers map[string]PortSet
	// SegNodes is the set of synthesized segment node names.
	SegNodes map[string]struct{}
}

// Segmentize splits raw edges by the anomaly flags. An edge whose local
// (device, port) is anomalous becomes membership of the synthetic segment
// node "SEG:device:port"; every other edge passes through unchanged as a
// point-to-point candidate.
//
// Classification is strictly local-port-scoped: the remote endpoint's own
// view is never consulted, so one physical pair can classify as
// point-to-point from one side and as segment membership from the other.
// That asymmetry is preserved, not corrected.
func Segmentize(rawEdges []RawEdge, anomalous PortSet) Segmented {
	seg := Segmented{
		SegMembers: make(map[string]PortSet),
		SegNodes:   make(map[string]struct{}),
	}

	for _, e := range rawEdges {
		if !anomalous.Contains(e.Local()) {
			seg.P2PRaw = append(seg.P2PRaw, e)
			continue
		}
		name := SegmentName(e.Device, e.LocalPort)
		seg.SegNodes[name] = struct{}{}
		seg.SegEdges = append(seg.SegEdges, SegmentEdge{
			Device:  e.Device,
			Port:    e.LocalPort,
			Segment: name,
		})
		if seg.SegMembers[name] == nil {
			seg.SegMembers[name] = make(PortSet)
		}
		seg.SegMembers[name].Add(e.Remote())
	}

	return seg
}
