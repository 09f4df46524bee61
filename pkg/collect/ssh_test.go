package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nmaniam/topovis/pkg/inventory"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ssh_config")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write ssh config: %v", err)
	}
	return path
}

func TestApplySSHConfigResolvesSettings(t *testing.T) {
	path := writeSSHConfig(t, `Host leaf1
  HostName 10.0.0.5
  User admin
  Port 2222
  IdentityFile /keys/leaf1
`)

	dev, err := applySSHConfig(inventory.Device{
		Host:          "leaf1",
		Port:          inventory.DefaultSSHPort,
		SSHConfigFile: path,
	})
	if err != nil {
		t.Fatalf("applySSHConfig: %v", err)
	}

	if dev.Host != "10.0.0.5" {
		t.Errorf("Host = %q, want 10.0.0.5", dev.Host)
	}
	if dev.Username != "admin" {
		t.Errorf("Username = %q, want admin", dev.Username)
	}
	if dev.Port != 2222 {
		t.Errorf("Port = %d, want 2222", dev.Port)
	}
	if dev.KeyFile != "/keys/leaf1" {
		t.Errorf("KeyFile = %q, want /keys/leaf1", dev.KeyFile)
	}
}

func TestApplySSHConfigInventoryWins(t *testing.T) {
	path := writeSSHConfig(t, `Host leaf1
  User admin
  Port 2222
`)

	dev, err := applySSHConfig(inventory.Device{
		Host:          "leaf1",
		Username:      "operator",
		Port:          9022,
		SSHConfigFile: path,
	})
	if err != nil {
		t.Fatalf("applySSHConfig: %v", err)
	}

	if dev.Username != "operator" {
		t.Errorf("Username = %q, explicit inventory value must win", dev.Username)
	}
	if dev.Port != 9022 {
		t.Errorf("Port = %d, explicit inventory value must win", dev.Port)
	}
}

func TestApplySSHConfigWithoutFile(t *testing.T) {
	in := inventory.Device{Host: "leaf1", Username: "admin", Port: 22}
	out, err := applySSHConfig(in)
	if err != nil {
		t.Fatalf("applySSHConfig: %v", err)
	}
	if out != in {
		t.Errorf("device changed without a config file: %+v", out)
	}
}
