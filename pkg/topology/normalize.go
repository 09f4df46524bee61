package topology

import "github.com/nmaniam/topovis/pkg/snapshot"

// Normalized is the flattened form of a raw snapshot: the device set, the
// per-device interface tables, the directed raw edge list, and the VLAN
// membership tables.
type Normalized struct {
	Devices        map[string]struct{}
	Interfaces     map[string]map[string]snapshot.Interface
	RawEdges       []RawEdge
	VlanMembership map[string]map[string][]string
}

// Normalize flattens a raw per-device snapshot. The device set starts as
// the snapshot's key set and grows by every remote device an LLDP row
// names, so neighbors that were never queried still become nodes.
//
// LLDP rows missing any of local port, remote device, or remote port are
// malformed scrape output and are dropped silently. Rows whose local
// (device, port) is in ignore are dropped before anything else. No
// symmetry or dedup checking happens here.
func Normalize(s snapshot.Snapshot, ignore PortSet) Normalized {
	n := Normalized{
		Devices:        make(map[string]struct{}, len(s)),
		Interfaces:     make(map[string]map[string]snapshot.Interface, len(s)),
		VlanMembership: make(map[string]map[string][]string, len(s)),
	}

	for dev, data := range s {
		n.Devices[dev] = struct{}{}
		ifaces := data.Interfaces
		if ifaces == nil {
			ifaces = map[string]snapshot.Interface{}
		}
		n.Interfaces[dev] = ifaces
		vlans := data.VlanMembership
		if vlans == nil {
			vlans = map[string][]string{}
		}
		n.VlanMembership[dev] = vlans

		for _, link := range data.LLDP {
			if link.LocalPort == "" || link.RemoteDev == "" || link.RemotePort == "" {
				continue
			}
			if ignore.Contains(PortRef{Device: dev, Port: link.LocalPort}) {
				continue
			}
			n.Devices[link.RemoteDev] = struct{}{}
			n.RawEdges = append(n.RawEdges, RawEdge{
				Device:     dev,
				LocalPort:  link.LocalPort,
				RemoteDev:  link.RemoteDev,
				RemotePort: link.RemotePort,
			})
		}
	}

	return n
}
