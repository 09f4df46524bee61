package collect

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sshconfig "github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"

	"github.com/nmaniam/topovis/pkg/inventory"
)

// dial establishes an SSH connection to a device. Password and key-file
// auth are supported; host keys are not verified - this is a lab discovery
// tool talking to devices listed in its own inventory.
func dial(ctx context.Context, dev inventory.Device, timeout time.Duration) (*ssh.Client, error) {
	dev, err := applySSHConfig(dev)
	if err != nil {
		return nil, err
	}
	config, err := clientConfig(dev, timeout)
	if err != nil {
		return nil, err
	}

	addr := dev.Addr()
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// applySSHConfig fills missing connection settings from an OpenSSH config
// file, matching entries against the inventory host. Explicit inventory
// values always win; the config file only supplies what is absent.
func applySSHConfig(dev inventory.Device) (inventory.Device, error) {
	if dev.SSHConfigFile == "" {
		return dev, nil
	}

	f, err := os.Open(expandPath(dev.SSHConfigFile))
	if err != nil {
		return dev, fmt.Errorf("open ssh config: %w", err)
	}
	defer f.Close()

	cfg, err := sshconfig.Decode(f)
	if err != nil {
		return dev, fmt.Errorf("parse ssh config %s: %w", dev.SSHConfigFile, err)
	}

	get := func(key string) string {
		v, _ := cfg.Get(dev.Host, key)
		return v
	}

	if dev.Username == "" {
		dev.Username = get("User")
	}
	if dev.KeyFile == "" {
		// The library reports a default identity even without a matching
		// Host block; only honor an explicitly configured one.
		if id := get("IdentityFile"); id != "" && id != sshconfig.Default("IdentityFile") {
			dev.KeyFile = id
		}
	}
	if dev.Port == inventory.DefaultSSHPort {
		if p := get("Port"); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				dev.Port = n
			}
		}
	}
	// HostName last: Username/KeyFile/Port lookups match on the alias.
	if hn := get("HostName"); hn != "" {
		dev.Host = hn
	}

	return dev, nil
}

// clientConfig builds the SSH client config from an inventory entry.
func clientConfig(dev inventory.Device, timeout time.Duration) (*ssh.ClientConfig, error) {
	if dev.Username == "" {
		return nil, fmt.Errorf("device %s: username is required", dev.Host)
	}

	var auth []ssh.AuthMethod
	if dev.KeyFile != "" {
		key, err := os.ReadFile(expandPath(dev.KeyFile))
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if dev.Password != "" {
		auth = append(auth, ssh.Password(dev.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("device %s: no password or key file configured", dev.Host)
	}

	return &ssh.ClientConfig{
		User:            dev.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

// expandPath resolves a leading "~/" against the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// run executes one command in a fresh session and returns its stdout.
func run(client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("new session: %w", err)
	}
	defer session.Close()

	out, err := session.Output(cmd)
	if err != nil {
		return "", fmt.Errorf("run %q: %w", cmd, err)
	}
	return string(out), nil
}
