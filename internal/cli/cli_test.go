package cli

import (
	"io"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nmaniam/topovis/pkg/pipeline"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"discover", "build", "render", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{pipeline.DefaultFormat}},
		{"html", []string{"html"}},
		{"html,json,dot", []string{"html", "json", "dot"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if want := filepath.Join(base, appName); dir != want {
		t.Errorf("cacheDir = %q, want %q", dir, want)
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if c.Logger.GetLevel() != LogInfo {
		t.Fatalf("expected info level, got %v", c.Logger.GetLevel())
	}
	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("expected debug level after SetLogLevel, got %v", c.Logger.GetLevel())
	}
}
