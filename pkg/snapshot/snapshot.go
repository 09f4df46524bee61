// Package snapshot defines the raw per-device data contract between the
// collection layer and the topology core.
//
// A Snapshot is one completed discovery run: for every device that was
// queried it holds the interface status table, the LLDP neighbor table, and
// the VLAN membership table, exactly as scraped. All fields are optional -
// a device that failed a command simply carries an empty table. The topology
// core consumes a Snapshot as a fully materialized, read-only structure and
// never mutates it.
package snapshot

// Interface holds the scraped status attributes of a single port.
// Absent attributes stay empty; Vlan is nil when the status table
// carried no VLAN column for the port.
type Interface struct {
	Alias  string  `json:"alias,omitempty"`
	Status string  `json:"status,omitempty"`
	Speed  string  `json:"speed,omitempty"`
	MTU    string  `json:"mtu,omitempty"`
	FEC    string  `json:"fec,omitempty"`
	Type   string  `json:"type,omitempty"`
	Vlan   *string `json:"vlan,omitempty"`
}

// LLDPEntry is one neighbor advertisement heard on a local port.
// Entries with any empty field are malformed scrape rows and are dropped
// during normalization, not here.
type LLDPEntry struct {
	LocalPort  string `json:"local_port"`
	RemoteDev  string `json:"remote_dev"`
	RemotePort string `json:"remote_port"`
}

// Device is everything scraped from one device in a single run.
type Device struct {
	Interfaces     map[string]Interface `json:"interfaces,omitempty"`
	LLDP           []LLDPEntry          `json:"lldp,omitempty"`
	VlanMembership map[string][]string  `json:"vlan_membership,omitempty"`
}

// Snapshot maps device name to its scraped data. A device absent from the
// map was simply not discovered.
type Snapshot map[string]Device
