// Package collect gathers raw topology data from SONiC devices over SSH.
//
// The collector opens an independent session per device, bounded by a
// concurrency limit, and scrapes the hostname, interface status, LLDP
// neighbor table, and VLAN membership. Failures degrade rather than abort:
// a device that cannot be reached is skipped with a warning, and a command
// that fails on an otherwise healthy device yields empty tables for that
// concern. The result is always one completed snapshot - a device either
// appears with everything that could be scraped or not at all.
package collect

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nmaniam/topovis/pkg/cache"
	"github.com/nmaniam/topovis/pkg/inventory"
	"github.com/nmaniam/topovis/pkg/snapshot"
)

// Defaults for collector tuning.
const (
	DefaultTimeout       = 15 * time.Second
	DefaultMaxConcurrent = 5
)

// EventKind classifies collector progress events.
type EventKind int

const (
	// EventConnecting fires when a device dial starts.
	EventConnecting EventKind = iota
	// EventCollected fires when a device was scraped successfully.
	EventCollected
	// EventFailed fires when a device could not be reached.
	EventFailed
)

// Event reports per-device collection progress, for TUIs and logs.
type Event struct {
	Host   string // inventory host
	Device string // reported hostname, set on EventCollected
	Kind   EventKind
	Err    error // set on EventFailed
}

// Collector scrapes an inventory into a snapshot.
type Collector struct {
	// Timeout bounds each SSH dial and handshake.
	Timeout time.Duration

	// MaxConcurrent limits parallel device sessions.
	MaxConcurrent int

	// Logger receives per-device progress. Defaults to a discarding logger.
	Logger *log.Logger

	// Events, when set, is invoked for every progress event. Calls may come
	// from multiple goroutines.
	Events func(Event)
}

// New creates a collector with default tuning.
func New(logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Collector{
		Timeout:       DefaultTimeout,
		MaxConcurrent: DefaultMaxConcurrent,
		Logger:        logger,
	}
}

// Collect scrapes every inventory device concurrently and returns the
// completed snapshot. Unreachable devices are skipped; Collect fails only
// when the context is cancelled.
func (c *Collector) Collect(ctx context.Context, devices []inventory.Device) (snapshot.Snapshot, error) {
	snap := make(snapshot.Snapshot, len(devices))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.maxConcurrent())
	)

	for _, dev := range devices {
		wg.Add(1)
		go func(dev inventory.Device) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			name, data, err := c.collectDevice(ctx, dev)
			if err != nil {
				c.Logger.Warn("device unreachable", "host", dev.Host, "err", err)
				c.emit(Event{Host: dev.Host, Kind: EventFailed, Err: err})
				return
			}

			mu.Lock()
			snap[name] = data
			mu.Unlock()
			c.emit(Event{Host: dev.Host, Device: name, Kind: EventCollected})
		}(dev)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// collectDevice scrapes one device. Command failures degrade to empty
// tables; only connection failures surface as errors.
func (c *Collector) collectDevice(ctx context.Context, dev inventory.Device) (string, snapshot.Device, error) {
	c.emit(Event{Host: dev.Host, Kind: EventConnecting})
	c.Logger.Debug("connecting", "host", dev.Host)

	session, err := c.connect(ctx, dev)
	if err != nil {
		return "", snapshot.Device{}, err
	}
	defer session.Close()

	// The reported hostname keys the snapshot; the SSH alias is only a
	// fallback when the device won't say who it is.
	name, err := session.Hostname()
	if err != nil || name == "" {
		c.Logger.Warn("no hostname from device, using inventory host", "host", dev.Host, "err", err)
		name = dev.Host
	}

	var data snapshot.Device

	if ifaces, err := session.InterfaceStatus(); err != nil {
		c.Logger.Warn("interface status failed", "host", dev.Host, "err", err)
	} else {
		data.Interfaces = ifaces
	}

	if lldp, err := session.LLDPTable(); err != nil {
		c.Logger.Warn("lldp table failed", "host", dev.Host, "err", err)
	} else {
		data.LLDP = lldp
	}

	if vlans, err := session.VlanMembership(); err != nil {
		c.Logger.Warn("vlan membership failed", "host", dev.Host, "err", err)
	} else {
		data.VlanMembership = vlans
	}

	c.Logger.Info("collected",
		"host", dev.Host,
		"device", name,
		"interfaces", len(data.Interfaces),
		"lldp", len(data.LLDP))

	return name, data, nil
}

// connect dials with retry; transient dial errors back off and retry.
func (c *Collector) connect(ctx context.Context, dev inventory.Device) (*sonicSession, error) {
	var session *sonicSession
	err := cache.RetryWithBackoff(ctx, func() error {
		client, err := dial(ctx, dev, c.timeout())
		if err != nil {
			return cache.Retryable(err)
		}
		session = &sonicSession{client: client}
		return nil
	})
	return session, err
}

func (c *Collector) emit(e Event) {
	if c.Events != nil {
		c.Events(e)
	}
}

func (c *Collector) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Collector) maxConcurrent() int {
	if c.MaxConcurrent > 0 {
		return c.MaxConcurrent
	}
	return DefaultMaxConcurrent
}
