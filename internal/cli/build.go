package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nmaniam/topovis/pkg/inventory"
	"github.com/nmaniam/topovis/pkg/pipeline"
	"github.com/nmaniam/topovis/pkg/snapshot"
)

// buildOpts holds the command-line flags shared by build and render.
type buildOpts struct {
	inventoryPath string   // TOML inventory (build only)
	output        string   // output file (single format) or base path (multiple)
	formats       []string // output formats: html, json, dot, svg, png
	ignorePorts   []string // "device:port" entries to exclude
	selfContained bool     // inline the JS library into HTML output
	refresh       bool     // bypass caches
	noCache       bool     // disable caching
}

// buildCommand creates the build command: the end-to-end collect → build →
// render pipeline driven by an inventory file.
func (c *CLI) buildCommand() *cobra.Command {
	var formatsStr string
	opts := buildOpts{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Collect devices and render the topology",
		Long: `Collect a snapshot from every inventory device and render the
reconciled topology in one step.

Ports listed under ignore_ports in the inventory (or passed with --ignore)
are dropped before the graph is built, which is the usual remedy when a
management network floods LLDP across a shared segment.

Examples:
  topovis build -i inventory.toml
  topovis build -i inventory.toml -f html,json -o topology
  topovis build -i inventory.toml --ignore leaf1:Ethernet64`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), nil, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inventoryPath, "inventory", "i", "inventory.toml", "TOML inventory file")
	addRenderFlags(cmd, &opts, &formatsStr)
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the snapshot cache")

	return cmd
}

// renderCommand creates the render command: build and render from a saved
// snapshot without touching the network.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := buildOpts{}

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Render a topology from a saved snapshot",
		Long: `Render the topology from a snapshot file produced by 'discover',
without connecting to any device.

Examples:
  topovis render snapshot.json
  topovis render snapshot.json -f svg,png -o fabric`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			snap, err := snapshot.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", args[0], err)
			}
			if opts.output == "" {
				opts.output = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}
			return c.runBuild(cmd.Context(), snap, &opts)
		},
	}

	addRenderFlags(cmd, &opts, &formatsStr)

	return cmd
}

// addRenderFlags registers the flags shared by build and render.
func addRenderFlags(cmd *cobra.Command, opts *buildOpts, formatsStr *string) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(formatsStr, "format", "f", "", "output format(s): html (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().StringArrayVar(&opts.ignorePorts, "ignore", nil, "ignore a device:port (repeatable)")
	cmd.Flags().BoolVar(&opts.selfContained, "self-contained", false, "inline the JS library so the HTML opens offline")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
}

// runBuild executes the pipeline and writes the requested artifacts. When
// snap is nil the snapshot is collected from the inventory.
func (c *CLI) runBuild(ctx context.Context, snap snapshot.Snapshot, opts *buildOpts) error {
	pipeOpts := pipeline.Options{
		Snapshot:      snap,
		IgnorePorts:   opts.ignorePorts,
		Refresh:       opts.refresh,
		Formats:       opts.formats,
		SelfContained: opts.selfContained,
		Logger:        c.Logger,
	}
	if snap == nil {
		inv, err := inventory.Load(opts.inventoryPath)
		if err != nil {
			return err
		}
		if len(inv.Devices) == 0 {
			return fmt.Errorf("inventory %s has no devices", opts.inventoryPath)
		}
		pipeOpts.Inventory = inv
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building topology...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build: %w", err)
	}
	spinner.Stop()

	if err := c.writeArtifacts(result.Artifacts, opts.formats, opts.output); err != nil {
		return err
	}

	printStats(result.Stats.DeviceCount, result.Stats.LinkCount, result.Stats.AnomalyCount, result.CacheInfo.RenderHit)
	printAnomalies(result.Model)
	return nil
}

// writeArtifacts writes each rendered format to disk. With a single format
// the output path is used as-is; with several, it is treated as a base path
// and the format becomes the extension.
func (c *CLI) writeArtifacts(artifacts map[string][]byte, formats []string, output string) error {
	base := output
	if base == "" {
		base = "topology"
	}
	if ext := filepath.Ext(base); len(formats) > 1 && pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := base
		if len(formats) > 1 || filepath.Ext(base) == "" {
			path = fmt.Sprintf("%s.%s", strings.TrimSuffix(base, filepath.Ext(base)), format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
