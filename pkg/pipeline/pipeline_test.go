package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nmaniam/topovis/pkg/cache"
	"github.com/nmaniam/topovis/pkg/snapshot"
	"github.com/nmaniam/topovis/pkg/topology"
)

func testSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		"leaf1": {
			Interfaces: map[string]snapshot.Interface{
				"Ethernet0": {Alias: "Eth1/1", Status: "up", Speed: "100G"},
				"Ethernet4": {Alias: "Eth2/1", Status: "up"},
			},
			LLDP: []snapshot.LLDPEntry{
				{LocalPort: "Ethernet0", RemoteDev: "leaf2", RemotePort: "Ethernet0"},
				{LocalPort: "Ethernet4", RemoteDev: "leaf2", RemotePort: "Ethernet4"},
				{LocalPort: "Ethernet4", RemoteDev: "leaf3", RemotePort: "Ethernet8"},
			},
		},
		"leaf2": {
			Interfaces: map[string]snapshot.Interface{
				"Ethernet0": {Alias: "Eth1/1", Status: "up"},
			},
			LLDP: []snapshot.LLDPEntry{
				{LocalPort: "Ethernet0", RemoteDev: "leaf1", RemotePort: "Ethernet0"},
			},
		},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name:    "no inventory or snapshot",
			opts:    Options{},
			wantErr: "inventory or snapshot is required",
		},
		{
			name:    "invalid format",
			opts:    Options{Snapshot: testSnapshot(), Formats: []string{"pdf"}},
			wantErr: "invalid format",
		},
		{
			name:    "malformed ignore entry",
			opts:    Options{Snapshot: testSnapshot(), IgnorePorts: []string{"noseparator"}},
			wantErr: "ignore",
		},
		{
			name: "valid",
			opts: Options{Snapshot: testSnapshot()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateAndSetDefaults() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaultFormat(t *testing.T) {
	opts := Options{Snapshot: testSnapshot()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatHTML {
		t.Errorf("default formats = %v, want [html]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("default logger not set")
	}
}

func TestOptionsIgnoreSet(t *testing.T) {
	opts := Options{
		Snapshot:    testSnapshot(),
		IgnorePorts: []string{"leaf1:Ethernet4"},
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if !opts.IgnoreSet().Contains(topology.PortRef{Device: "leaf1", Port: "Ethernet4"}) {
		t.Error("ignore set missing leaf1:Ethernet4")
	}
}

func TestArtifactKeyOptsDeterministic(t *testing.T) {
	opts := Options{
		Snapshot:    testSnapshot(),
		IgnorePorts: []string{"leaf2:Ethernet0", "leaf1:Ethernet4"},
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	a := opts.ArtifactKeyOpts(FormatJSON)
	b := opts.ArtifactKeyOpts(FormatJSON)
	if len(a.IgnorePorts) != 2 {
		t.Fatalf("ignore ports = %v, want 2 entries", a.IgnorePorts)
	}
	for i := range a.IgnorePorts {
		if a.IgnorePorts[i] != b.IgnorePorts[i] {
			t.Fatalf("ignore port ordering differs: %v vs %v", a.IgnorePorts, b.IgnorePorts)
		}
	}
	if a.IgnorePorts[0] != "leaf1:Ethernet4" {
		t.Errorf("ignore ports not sorted: %v", a.IgnorePorts)
	}
}

func TestExecuteWithPreloadedSnapshot(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Snapshot: testSnapshot(),
		Formats:  []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("missing run ID")
	}
	if result.SnapshotHash == "" {
		t.Error("missing snapshot hash")
	}
	if result.Stats.DeviceCount != 3 {
		t.Errorf("device count = %d, want 3", result.Stats.DeviceCount)
	}
	if result.Stats.LinkCount != 1 {
		t.Errorf("link count = %d, want 1", result.Stats.LinkCount)
	}
	if result.Stats.SegmentCount != 1 {
		t.Errorf("segment count = %d, want 1", result.Stats.SegmentCount)
	}
	if result.Stats.AnomalyCount != 1 {
		t.Errorf("anomaly count = %d, want 1", result.Stats.AnomalyCount)
	}

	var payload map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &payload); err != nil {
		t.Fatalf("json artifact is not valid JSON: %v", err)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "graph topology {") {
		t.Error("dot artifact missing graph header")
	}
}

func TestExecuteIgnoreRemovesAnomaly(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Snapshot:    testSnapshot(),
		IgnorePorts: []string{"leaf1:Ethernet4"},
		Formats:     []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Stats.AnomalyCount != 0 {
		t.Errorf("anomaly count = %d, want 0 after ignoring the flapping port", result.Stats.AnomalyCount)
	}
	if result.Stats.SegmentCount != 0 {
		t.Errorf("segment count = %d, want 0", result.Stats.SegmentCount)
	}
}

func TestRenderArtifactCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(c, nil, quietLogger())
	defer runner.Close()

	opts := Options{Snapshot: testSnapshot(), Formats: []string{FormatJSON}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run unexpectedly hit the artifact cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run did not hit the artifact cache")
	}
	if string(first.Artifacts[FormatJSON]) != string(second.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs from rendered artifact")
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatHTML, FormatJSON, FormatDOT, FormatSVG, FormatPNG} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) error = %v", f, err)
		}
	}
	if err := ValidateFormat("pdf"); err == nil {
		t.Error("ValidateFormat(pdf) did not fail")
	}
}
