package cli

import (
	"sort"
	"strings"

	"github.com/nmaniam/topovis/pkg/export"
	"github.com/nmaniam/topovis/pkg/topology"
)

// printAnomalies reports shared-segment ports after a build. Each anomalous
// port is listed with the remote endpoints observed behind it, naturally
// sorted so Ethernet4 precedes Ethernet10.
func printAnomalies(m *topology.Model) {
	if len(m.AnomalousPorts) == 0 {
		return
	}

	printNewline()
	printWarning("Shared-segment / flooded LLDP detected:")

	ports := make([]topology.PortRef, 0, len(m.AnomalousPorts))
	for p := range m.AnomalousPorts {
		ports = append(ports, p)
	}
	sortPortRefs(ports)

	for _, p := range ports {
		seg := topology.SegmentName(p.Device, p.Port)
		members := make([]topology.PortRef, 0, len(m.SegMembers[seg]))
		for member := range m.SegMembers[seg] {
			members = append(members, member)
		}
		if len(members) == 0 {
			printDetail("%s sees multiple neighbors (modeled as segment node)", p)
			continue
		}
		sortPortRefs(members)

		names := make([]string, len(members))
		for i, member := range members {
			names[i] = member.String()
		}
		printDetail("%s sees multiple neighbors (%s)", p, strings.Join(names, ", "))
	}
}

// sortPortRefs orders ports by device, then naturally by port name.
func sortPortRefs(ports []topology.PortRef) {
	sort.Slice(ports, func(i, j int) bool {
		if ports[i].Device != ports[j].Device {
			return export.NaturalCompare(ports[i].Device, ports[j].Device) < 0
		}
		return export.NaturalCompare(ports[i].Port, ports[j].Port) < 0
	})
}
