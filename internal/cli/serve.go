package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmaniam/topovis/internal/server"
	"github.com/nmaniam/topovis/pkg/inventory"
	"github.com/nmaniam/topovis/pkg/pipeline"
	"github.com/nmaniam/topovis/pkg/snapshot"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	inventoryPath string
	snapshotPath  string // serve a saved snapshot instead of scraping
	ignorePorts   []string
	noCache       bool
}

// serveCommand creates the serve command exposing the viewer over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the topology viewer and JSON API over HTTP",
		Long: `Serve the interactive topology viewer and a JSON API.

Endpoints:
  GET  /              interactive viewer
  GET  /api/model     renderable topology payload
  GET  /api/snapshot  raw collected snapshot
  POST /api/refresh   re-collect and rebuild
  GET  /healthz       liveness probe

With --snapshot the server renders a saved snapshot and never touches the
network; otherwise the inventory is collected on startup and on refresh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "HTTP listen address")
	cmd.Flags().StringVarP(&opts.inventoryPath, "inventory", "i", "inventory.toml", "TOML inventory file")
	cmd.Flags().StringVar(&opts.snapshotPath, "snapshot", "", "serve a saved snapshot file instead of scraping")
	cmd.Flags().StringArrayVar(&opts.ignorePorts, "ignore", nil, "ignore a device:port (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe builds the pipeline options, primes the first result, and blocks
// serving HTTP until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	pipeOpts := pipeline.Options{
		IgnorePorts: opts.ignorePorts,
		Logger:      c.Logger,
	}

	if opts.snapshotPath != "" {
		snap, err := snapshot.ReadFile(opts.snapshotPath)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", opts.snapshotPath, err)
		}
		pipeOpts.Snapshot = snap
	} else {
		inv, err := inventory.Load(opts.inventoryPath)
		if err != nil {
			return err
		}
		pipeOpts.Inventory = inv
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner, pipeOpts, c.Logger)
	if err := srv.Refresh(ctx, false); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	c.Logger.Info("serving topology", "addr", opts.addr)
	printInfo("Topology viewer on %s", StyleValue.Render("http://localhost"+opts.addr))
	return srv.ListenAndServe(ctx, opts.addr)
}
