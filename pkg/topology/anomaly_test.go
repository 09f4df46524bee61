package topology

import "testing"

func TestDetectAnomalousPorts(t *testing.T) {
	edges := []RawEdge{
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Z", RemotePort: "Ethernet8"},
		{Device: "X", LocalPort: "Ethernet12", RemoteDev: "Y", RemotePort: "Ethernet16"},
	}

	anomalous := DetectAnomalousPorts(edges)

	if !anomalous.Contains(PortRef{Device: "X", Port: "Ethernet0"}) {
		t.Error("Ethernet0 sees two remote devices and should be anomalous")
	}
	if anomalous.Contains(PortRef{Device: "X", Port: "Ethernet12"}) {
		t.Error("Ethernet12 sees one remote device and should not be anomalous")
	}
}

func TestDetectAnomalousPortsSameRemoteTwice(t *testing.T) {
	// Two advertisements from the same neighbor on the same port are not an
	// anomaly; only distinct remote devices count.
	edges := []RawEdge{
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet8"},
	}

	if anomalous := DetectAnomalousPorts(edges); len(anomalous) != 0 {
		t.Errorf("duplicate advertisements from one neighbor flagged: %v", anomalous)
	}
}

func TestDetectAnomalousPortsOrderIndependent(t *testing.T) {
	fwd := []RawEdge{
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Y", RemotePort: "Ethernet4"},
		{Device: "X", LocalPort: "Ethernet0", RemoteDev: "Z", RemotePort: "Ethernet8"},
	}
	rev := []RawEdge{fwd[1], fwd[0]}

	a, b := DetectAnomalousPorts(fwd), DetectAnomalousPorts(rev)
	if len(a) != len(b) {
		t.Fatalf("result depends on edge order: %v vs %v", a, b)
	}
	for p := range a {
		if !b.Contains(p) {
			t.Errorf("port %v flagged in one order but not the other", p)
		}
	}
}

func TestDetectAnomalousPortsEmpty(t *testing.T) {
	if anomalous := DetectAnomalousPorts(nil); len(anomalous) != 0 {
		t.Errorf("no edges should yield no anomalies, got %v", anomalous)
	}
}
