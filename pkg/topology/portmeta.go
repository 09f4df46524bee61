package topology

import "github.com/nmaniam/topovis/pkg/snapshot"

// LinkedPorts collects the ports actually referenced by the final edge
// sets, per device. Metadata is deliberately pruned to these ports so the
// model scales with observed topology rather than chassis port count.
func LinkedPorts(p2pEdges []P2PEdge, segEdges []SegmentEdge) map[string]map[string]struct{} {
	ports := make(map[string]map[string]struct{})
	add := func(dev, port string) {
		if ports[dev] == nil {
			ports[dev] = make(map[string]struct{})
		}
		ports[dev][port] = struct{}{}
	}
	for _, e := range p2pEdges {
		add(e.ADev, e.APort)
		add(e.BDev, e.BPort)
	}
	for _, e := range segEdges {
		add(e.Device, e.Port)
	}
	return ports
}

// BuildPortMeta builds the "device:port" → PortMeta table for the linked
// ports. Attributes the ingestion never observed fall back to defaults.
//
// VLAN resolution prefers the VLAN membership table over the vlan column of
// the interface status table: membership comes from the device's VLAN
// config and is the ground truth, while the status column is derived and
// often stale. The same preference applies at every projection site that
// needs a final VLAN value.
func BuildPortMeta(
	interfaces map[string]map[string]snapshot.Interface,
	vlanMembership map[string]map[string][]string,
	portsByDevice map[string]map[string]struct{},
) map[string]PortMeta {
	meta := make(map[string]PortMeta)
	for dev, ports := range portsByDevice {
		for port := range ports {
			m := PortMeta{
				Alias:  DefaultAlias,
				Status: DefaultStatus,
				Speed:  DefaultAttr,
				MTU:    DefaultAttr,
				FEC:    DefaultAttr,
				Type:   DefaultAttr,
			}
			if iface, ok := interfaces[dev][port]; ok {
				if iface.Alias != "" {
					m.Alias = iface.Alias
				}
				if iface.Status != "" {
					m.Status = iface.Status
				}
				if iface.Speed != "" {
					m.Speed = iface.Speed
				}
				if iface.MTU != "" {
					m.MTU = iface.MTU
				}
				if iface.FEC != "" {
					m.FEC = iface.FEC
				}
				if iface.Type != "" {
					m.Type = iface.Type
				}
				m.Vlan = iface.Vlan
			}
			if vlan, ok := ResolveVlan(vlanMembership, dev, port); ok {
				m.Vlan = &vlan
			}
			meta[PortRef{Device: dev, Port: port}.String()] = m
		}
	}
	return meta
}

// ResolveVlan looks a port up in the device's VLAN membership table.
// When more than one VLAN lists the port the smallest id wins, keeping the
// result independent of map iteration order.
func ResolveVlan(vlanMembership map[string]map[string][]string, dev, port string) (string, bool) {
	best, found := "", false
	for vlanID, ports := range vlanMembership[dev] {
		for _, p := range ports {
			if p != port {
				continue
			}
			if !found || vlanID < best {
				best, found = vlanID, true
			}
			break
		}
	}
	return best, found
}
