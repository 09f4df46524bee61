// Package inventory loads the device inventory: which devices to discover,
// how to reach them over SSH, and which local ports to ignore.
//
// The inventory lives in a TOML file:
//
//	ignore_ports = ["leaf1:Ethernet48", "leaf2:Ethernet48"]
//
//	[[devices]]
//	host = "sonic1-lldp"
//	username = "admin"
//	password = "secret"
//
//	[[devices]]
//	host = "sonic2-lldp"
//	username = "admin"
//	ssh_config_file = "~/.ssh/config"
//
// Duplicate hosts are a configuration error and are rejected here, before
// anything reaches the topology core: two source identities resolving to
// one device would silently merge their observations.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nmaniam/topovis/pkg/topology"
)

// DefaultSSHPort is used when a device entry omits the port.
const DefaultSSHPort = 22

// ErrDuplicateDevice is returned by Load when two entries share a host.
var ErrDuplicateDevice = errors.New("duplicate device host")

// Device describes how to reach one network device.
type Device struct {
	Host          string `toml:"host"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	Port          int    `toml:"port"`
	KeyFile       string `toml:"key_file"`
	SSHConfigFile string `toml:"ssh_config_file"`
}

// Addr returns the host:port dial address.
func (d Device) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// Inventory is the loaded device list plus the ignore-port set.
type Inventory struct {
	Devices     []Device         `toml:"devices"`
	IgnorePorts []string         `toml:"ignore_ports"`
	Ignore      topology.PortSet `toml:"-"`
}

// Load reads and validates a TOML inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates inventory TOML bytes.
func Parse(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := toml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}

	seen := make(map[string]struct{}, len(inv.Devices))
	for i := range inv.Devices {
		d := &inv.Devices[i]
		if d.Host == "" {
			return nil, fmt.Errorf("device %d: host is required", i)
		}
		if _, dup := seen[d.Host]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDevice, d.Host)
		}
		seen[d.Host] = struct{}{}
		if d.Port == 0 {
			d.Port = DefaultSSHPort
		}
	}

	ignore, err := ParseIgnorePorts(inv.IgnorePorts)
	if err != nil {
		return nil, err
	}
	inv.Ignore = ignore

	return &inv, nil
}

// ParseIgnorePorts converts "device:port" strings into the core's port set.
// Port names may themselves contain colons only on the right of the first
// separator, so the split is on the first colon.
func ParseIgnorePorts(entries []string) (topology.PortSet, error) {
	set := make(topology.PortSet, len(entries))
	for _, entry := range entries {
		dev, port, ok := strings.Cut(entry, ":")
		if !ok || dev == "" || port == "" {
			return nil, fmt.Errorf("invalid ignore port %q (want \"device:port\")", entry)
		}
		set.Add(topology.PortRef{Device: dev, Port: port})
	}
	return set, nil
}
