package topology

// CanonicalizeEdges deduplicates directed point-to-point candidates into
// undirected canonical edges. LLDP is bidirectional, so a healthy link is
// observed twice - once from each side; ordering both endpoints under
// lexicographic (device, port) order makes the two observations collide on
// the same key, and only the first occurrence is kept.
//
// The output never exceeds the input in size, contains no duplicate keys,
// and is stable given the input iteration order. Running it on its own
// output changes nothing.
func CanonicalizeEdges(p2pRaw []RawEdge) []P2PEdge {
	seen := make(map[P2PEdge]struct{}, len(p2pRaw))
	out := make([]P2PEdge, 0, len(p2pRaw))

	for _, e := range p2pRaw {
		left, right := e.Local(), e.Remote()
		if less(right, left) {
			left, right = right, left
		}
		key := P2PEdge{ADev: left.Device, APort: left.Port, BDev: right.Device, BPort: right.Port}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// less is the total order over (device, port) pairs: device first, then port.
func less(a, b PortRef) bool {
	if a.Device != b.Device {
		return a.Device < b.Device
	}
	return a.Port < b.Port
}
