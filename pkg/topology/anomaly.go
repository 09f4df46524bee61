package topology

// DetectAnomalousPorts flags every (device, local port) whose raw edges
// disagree on the remote device. A port hearing LLDP from more than one
// distinct neighbor is not point-to-point - it is a hub, a mirror, or
// flooding - and collapsing it to one edge would erase real topology, so
// such ports are flagged and later modeled as segments.
//
// The result depends only on the set of edges, not their order.
func DetectAnomalousPorts(rawEdges []RawEdge) PortSet {
	remotes := make(map[PortRef]map[string]struct{})
	for _, e := range rawEdges {
		local := e.Local()
		if remotes[local] == nil {
			remotes[local] = make(map[string]struct{})
		}
		remotes[local][e.RemoteDev] = struct{}{}
	}

	anomalous := make(PortSet)
	for local, devs := range remotes {
		if len(devs) > 1 {
			anomalous.Add(local)
		}
	}
	return anomalous
}
