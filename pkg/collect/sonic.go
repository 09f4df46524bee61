package collect

import (
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/nmaniam/topovis/pkg/snapshot"
)

// SONiC show commands issued per device.
const (
	cmdHostname        = "hostname"
	cmdInterfaceStatus = "show interfaces status"
	cmdLLDPTable       = "show lldp table"
	cmdVlanConfig      = "show vlan config"
)

// sonicSession scrapes one connected SONiC device. Each command runs in a
// fresh SSH session, matching how the CLI behaves for interactive users.
type sonicSession struct {
	client *ssh.Client
}

// Hostname returns the device's own idea of its name.
func (s *sonicSession) Hostname() (string, error) {
	out, err := run(s.client, cmdHostname)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// InterfaceStatus scrapes and parses the interface status table.
func (s *sonicSession) InterfaceStatus() (map[string]snapshot.Interface, error) {
	out, err := run(s.client, cmdInterfaceStatus)
	if err != nil {
		return nil, err
	}
	return parseInterfaceStatus(out), nil
}

// LLDPTable scrapes and parses the LLDP neighbor table.
func (s *sonicSession) LLDPTable() ([]snapshot.LLDPEntry, error) {
	out, err := run(s.client, cmdLLDPTable)
	if err != nil {
		return nil, err
	}
	return parseLLDPTable(out), nil
}

// VlanMembership scrapes and parses the VLAN config table.
func (s *sonicSession) VlanMembership() (map[string][]string, error) {
	out, err := run(s.client, cmdVlanConfig)
	if err != nil {
		return nil, err
	}
	return parseVlanConfig(out), nil
}

// Close closes the underlying SSH connection.
func (s *sonicSession) Close() error {
	return s.client.Close()
}
