package topology

import "testing"

func TestSegmentizeSplitsByAnomalyFlag(t *testing.T) {
	edges := []RawEdge{
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Z", RemotePort: "Ethernet8"},
		{Device: "X", LocalPort: "Ethernet12", RemoteDev: "Y", RemotePort: "Ethernet16"},
	}
	anomalous := PortSet{{Device: "X", Port: "Ethernet0"}: {}}

	seg := Segmentize(edges, anomalous)

	if len(seg.P2PRaw) != 1 || seg.P2PRaw[0].LocalPort != "Ethernet12" {
		t.Errorf("P2PRaw = %+v, want only the Ethernet12 edge", seg.P2PRaw)
	}

	name := SegmentName("X", "Ethernet0")
	if _, ok := seg.SegNodes[name]; !ok {
		t.Fatalf("segment node %q not synthesized; nodes: %v", name, seg.SegNodes)
	}
	if len(seg.SegNodes) != 1 {
		t.Errorf("SegNodes = %v, want exactly one", seg.SegNodes)
	}

	members := seg.SegMembers[name]
	if len(members) != 2 {
		t.Fatalf("segment members = %v, want Y:Ethernet4 and Z:Ethernet8", members)
	}
	for _, want := range []PortRef{
		{Device: "Y", Port: "Ethernet4"},
		{Device: "Z", Port: "Ethernet8"},
	} {
		if !members.Contains(want) {
			t.Errorf("segment members missing %v", want)
		}
	}

	// One segment edge per anomalous raw edge.
	if len(seg.SegEdges) != 2 {
		t.Errorf("SegEdges = %d, want 2", len(seg.SegEdges))
	}
	for _, e := range seg.SegEdges {
		if e.Device != "X" || e.Port != "Ethernet0" || e.Segment != name {
			t.Errorf("unexpected segment edge %+v", e)
		}
	}
}

func TestSegmentizeLocalScopeOnly(t *testing.T) {
	// X:Ethernet0 is anomalous; Y:Ethernet4's own observation of X is not,
	// so the pair classifies as segment membership from X's side and as a
	// point-to-point candidate from Y's side. The asymmetry is preserved.
	edges := []RawEdge{
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Z", RemotePort: "Ethernet8"},
		{Device: "Y", LocalPort: "Ethernet4", RemoteDev: "X", RemotePort: "Ethernet0"},
	}

	seg := Segmentize(edges, DetectAnomalousPorts(edges))

	if len(seg.P2PRaw) != 1 || seg.P2PRaw[0].Device != "Y" {
		t.Errorf("Y's observation should pass through as point-to-point, got %+v", seg.P2PRaw)
	}
	if len(seg.SegEdges) != 2 {
		t.Errorf("X's observations should both become segment edges, got %+v", seg.SegEdges)
	}
}

func TestSegmentizeNoAnomalies(t *testing.T) {
	edges := []RawEdge{
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
	}

	seg := Segmentize(edges, nil)

	if len(seg.P2PRaw) != 1 {
		t.Errorf("P2PRaw = %d, want 1", len(seg.P2PRaw))
	}
	if len(seg.SegNodes) != 0 || len(seg.SegEdges) != 0 {
		t.Errorf("no segments expected, got nodes %v edges %v", seg.SegNodes, seg.SegEdges)
	}
}
