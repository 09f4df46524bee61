package topology

import (
	"testing"

	"github.com/nmaniam/topovis/pkg/snapshot"
)

// Clean two-device link observed from both sides: one canonical edge, no
// anomalies, no segments.
func TestBuildPointToPoint(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {LLDP: []snapshot.LLDPEntry{{LocalPort: "Eth0", RemoteDev: "Y", RemotePort: "Eth1"}}},
		"Y": {LLDP: []snapshot.LLDPEntry{{LocalPort: "Eth1", RemoteDev: "X", RemotePort: "Eth0"}}},
	}

	m, err := Build(s, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(m.P2PEdges) != 1 {
		t.Fatalf("P2PEdges = %+v, want exactly one", m.P2PEdges)
	}
	want := P2PEdge{ADev: "X", APort: "Eth0", BDev: "Y", BPort: "Eth1"}
	if m.P2PEdges[0] != want {
		t.Errorf("edge = %+v, want %+v", m.P2PEdges[0], want)
	}
	if len(m.AnomalousPorts) != 0 {
		t.Errorf("anomalies = %v, want none", m.AnomalousPorts)
	}
	if len(m.SegNodes) != 0 {
		t.Errorf("segments = %v, want none", m.SegNodes)
	}
}

// A port hearing two distinct neighbors becomes a segment, never a P2P edge.
func TestBuildSharedSegment(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {LLDP: []snapshot.LLDPEntry{
			{LocalPort: "Eth0", RemoteDev: "Y", RemotePort: "Eth1"},
			{LocalPort: "Eth0", RemoteDev: "Z", RemotePort: "Eth2"},
		}},
	}

	m, err := Build(s, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !m.AnomalousPorts.Contains(PortRef{Device: "X", Port: "Eth0"}) {
		t.Error("X:Eth0 should be anomalous")
	}
	name := SegmentName("X", "Eth0")
	if _, ok := m.SegNodes[name]; !ok {
		t.Fatalf("segment %q not synthesized", name)
	}
	members := m.SegMembers[name]
	if !members.Contains(PortRef{Device: "Y", Port: "Eth1"}) || !members.Contains(PortRef{Device: "Z", Port: "Eth2"}) {
		t.Errorf("segment members = %v, want Y:Eth1 and Z:Eth2", members)
	}
	if len(m.P2PEdges) != 0 {
		t.Errorf("anomalous port produced P2P edges: %+v", m.P2PEdges)
	}
}

// Ignore-list entries suppress the observation entirely, regardless of what
// the far side reports.
func TestBuildIgnoreList(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {LLDP: []snapshot.LLDPEntry{{LocalPort: "Eth0", RemoteDev: "Y", RemotePort: "Eth1"}}},
		"Y": {LLDP: []snapshot.LLDPEntry{{LocalPort: "Eth1", RemoteDev: "X", RemotePort: "Eth0"}}},
	}
	ignore := PortSet{{Device: "X", Port: "Eth0"}: {}}

	m, err := Build(s, ignore)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Y's own observation survives, so the link still appears once.
	if len(m.P2PEdges) != 1 {
		t.Fatalf("P2PEdges = %+v, want Y's observation only", m.P2PEdges)
	}

	// Ignoring both directions removes the link entirely.
	ignore.Add(PortRef{Device: "Y", Port: "Eth1"})
	m, err = Build(s, ignore)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.P2PEdges) != 0 {
		t.Errorf("P2PEdges = %+v, want none with both sides ignored", m.P2PEdges)
	}
}

// Ports present in interface data but in no edge stay out of PortMeta.
func TestBuildPrunesUnlinkedPorts(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {
			Interfaces: map[string]snapshot.Interface{
				"Eth0":  {Status: "up"},
				"Eth99": {Status: "down"},
			},
			LLDP: []snapshot.LLDPEntry{{LocalPort: "Eth0", RemoteDev: "Y", RemotePort: "Eth1"}},
		},
	}

	m, err := Build(s, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := m.PortMeta["X:Eth0"]; !ok {
		t.Error("linked port X:Eth0 missing from PortMeta")
	}
	if _, ok := m.PortMeta["Y:Eth1"]; !ok {
		t.Error("remote endpoint Y:Eth1 missing from PortMeta")
	}
	if _, ok := m.PortMeta["X:Eth99"]; ok {
		t.Error("unlinked port X:Eth99 should be pruned from PortMeta")
	}
}

// VLAN membership overlays the final PortMeta even when the interface
// status table carried no VLAN.
func TestBuildVlanOverlay(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {
			Interfaces:     map[string]snapshot.Interface{"Eth2": {Status: "up"}},
			LLDP:           []snapshot.LLDPEntry{{LocalPort: "Eth2", RemoteDev: "Y", RemotePort: "Eth3"}},
			VlanMembership: map[string][]string{"10": {"Eth2"}},
		},
	}

	m, err := Build(s, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pm := m.PortMeta["X:Eth2"]
	if pm.Vlan == nil || *pm.Vlan != "10" {
		t.Errorf("X:Eth2 vlan = %v, want 10 from membership table", pm.Vlan)
	}
}

func TestModelValidateDanglingPort(t *testing.T) {
	m := &Model{
		PortMeta: map[string]PortMeta{"X:Eth0": {}},
		P2PEdges: []P2PEdge{{ADev: "X", APort: "Eth0", BDev: "Y", BPort: "Eth1"}},
	}

	err := m.validate()
	if err == nil {
		t.Fatal("dangling edge endpoint should fail validation")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Port != "Y:Eth1" {
		t.Errorf("ValidationError.Port = %q, want Y:Eth1", verr.Port)
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	m, err := Build(snapshot.Snapshot{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Devices) != 0 || len(m.P2PEdges) != 0 || len(m.PortMeta) != 0 {
		t.Errorf("empty snapshot produced non-empty model: %+v", m)
	}
}
