package topology

import (
	"testing"

	"github.com/nmaniam/topovis/pkg/snapshot"
)

func TestNormalizeAddsRemoteDevices(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {
			LLDP: []snapshot.LLDPEntry{
				{LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
			},
		},
	}

	n := Normalize(s, nil)

	if _, ok := n.Devices["X"]; !ok {
		t.Error("queried device X should be in the device set")
	}
	if _, ok := n.Devices["Y"]; !ok {
		t.Error("remote device Y should be discovered even though it was never queried")
	}
	if len(n.RawEdges) != 1 {
		t.Fatalf("RawEdges = %d, want 1", len(n.RawEdges))
	}
	want := RawEdge{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"}
	if n.RawEdges[0] != want {
		t.Errorf("RawEdges[0] = %+v, want %+v", n.RawEdges[0], want)
	}
}

func TestNormalizeDropsMalformedRows(t *testing.T) {
	tests := []struct {
		name  string
		entry snapshot.LLDPEntry
	}{
		{"missing local port", snapshot.LLDPEntry{RemoteDev: "Y", RemotePort: "Ethernet4"}},
		{"missing remote dev", snapshot.LLDPEntry{LocalPort: "Ethernet0", RemotePort: "Ethernet4"}},
		{"missing remote port", snapshot.LLDPEntry{LocalPort: "Ethernet0", RemoteDev: "Y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot.Snapshot{"X": {LLDP: []snapshot.LLDPEntry{tt.entry}}}
			n := Normalize(s, nil)
			if len(n.RawEdges) != 0 {
				t.Errorf("malformed row should be dropped, got %d edges", len(n.RawEdges))
			}
			if len(n.Devices) != 1 {
				t.Errorf("dropped row must not add devices, got %v", n.Devices)
			}
		})
	}
}

func TestNormalizeIgnoreSet(t *testing.T) {
	s := snapshot.Snapshot{
		"X": {
			LLDP: []snapshot.LLDPEntry{
				{LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
				{LocalPort: "Ethernet8", RemoteDev: "Z", RemotePort: "Ethernet12"},
			},
		},
	}
	ignore := PortSet{{Device: "X", Port: "Ethernet0"}: {}}

	n := Normalize(s, ignore)

	if len(n.RawEdges) != 1 {
		t.Fatalf("RawEdges = %d, want 1", len(n.RawEdges))
	}
	if n.RawEdges[0].LocalPort != "Ethernet8" {
		t.Errorf("surviving edge = %+v, want the Ethernet8 observation", n.RawEdges[0])
	}
	if _, ok := n.Devices["Y"]; ok {
		t.Error("ignored observation must not discover its remote device")
	}
}

func TestNormalizeEmptyTablesStayNonNil(t *testing.T) {
	s := snapshot.Snapshot{"X": {}}

	n := Normalize(s, nil)

	if n.Interfaces["X"] == nil {
		t.Error("interface table should be non-nil for a device with no scrape data")
	}
	if n.VlanMembership["X"] == nil {
		t.Error("vlan membership should be non-nil for a device with no scrape data")
	}
}
