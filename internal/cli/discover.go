package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nmaniam/topovis/pkg/collect"
	"github.com/nmaniam/topovis/pkg/inventory"
	"github.com/nmaniam/topovis/pkg/pipeline"
	"github.com/nmaniam/topovis/pkg/snapshot"
)

// discoverOpts holds the command-line flags for the discover command.
type discoverOpts struct {
	inventoryPath string // TOML inventory file
	output        string // snapshot output path
	refresh       bool   // bypass the snapshot cache
	noCache       bool   // disable caching entirely
	plain         bool   // disable the interactive progress view
	timeout       time.Duration
	concurrency   int
}

// discoverCommand creates the discover command for scraping device state.
//
// Default settings:
//   - output: topology_snapshot.json
//   - timeout: 15s per SSH dial
//   - concurrency: 5 parallel device sessions
func (c *CLI) discoverCommand() *cobra.Command {
	opts := discoverOpts{
		output:      "topology_snapshot.json",
		timeout:     collect.DefaultTimeout,
		concurrency: collect.DefaultMaxConcurrent,
	}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Collect LLDP, interface, and VLAN tables from devices",
		Long: `Collect LLDP neighbor tables, interface status, and VLAN membership
from every device in the inventory over SSH, and save the combined snapshot
to a JSON file.

Unreachable devices are skipped with a warning; the snapshot contains every
device that answered. Snapshots are cached locally, keyed by the inventory
host list, so repeated runs within the cache TTL reuse the previous scrape
unless --refresh is given.

Example:
  topovis discover -i inventory.toml -o snapshot.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiscover(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inventoryPath, "inventory", "i", "inventory.toml", "TOML inventory file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "snapshot output file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the snapshot cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable the interactive progress view")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "SSH dial timeout per device")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "parallel device sessions")

	return cmd
}

// runDiscover loads the inventory, collects a snapshot, and writes it out.
func (c *CLI) runDiscover(ctx context.Context, opts *discoverOpts) error {
	inv, err := inventory.Load(opts.inventoryPath)
	if err != nil {
		return err
	}
	if len(inv.Devices) == 0 {
		return fmt.Errorf("inventory %s has no devices", opts.inventoryPath)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))

	pipeOpts := pipeline.Options{
		Inventory:   inv,
		Refresh:     opts.refresh,
		Timeout:     opts.timeout,
		Concurrency: opts.concurrency,
		Logger:      c.Logger,
	}

	snap, cacheHit, err := c.collectWithProgress(ctx, runner, pipeOpts, opts)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	if err := snapshot.WriteFile(snap, opts.output); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	prog.done(fmt.Sprintf("Collected %d devices", len(snap)))

	printSuccess("Collected %d of %d devices", len(snap), len(inv.Devices))
	printStats(len(snap), 0, 0, cacheHit)
	printFile(opts.output)
	printNewline()
	printNextStep("Build the topology", fmt.Sprintf("topovis build %s", opts.output))
	return nil
}

// collectWithProgress runs collection behind the interactive progress view
// when stdout is a terminal, falling back to plain logging otherwise.
func (c *CLI) collectWithProgress(ctx context.Context, runner *pipeline.Runner, pipeOpts pipeline.Options, opts *discoverOpts) (snapshot.Snapshot, bool, error) {
	interactive := !opts.plain && stdoutIsTerminal()
	if !interactive {
		return runner.CollectWithCacheInfo(ctx, pipeOpts)
	}

	events := make(chan collect.Event, 64)
	pipeOpts.Events = func(ev collect.Event) { events <- ev }

	hosts := pipeOpts.Hosts()
	prog := tea.NewProgram(NewCollectModel(hosts, events), tea.WithContext(ctx))

	// Collection runs under its own context: the TUI swallows ctrl+c in raw
	// mode, so quitting the view must cancel the workers explicitly.
	collectCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan collectResult, 1)
	go func() {
		snap, hit, err := runner.CollectWithCacheInfo(collectCtx, pipeOpts)
		close(events)
		resultCh <- collectResult{snap: snap, hit: hit, err: err}
	}()

	_, runErr := prog.Run()
	res := awaitCollect(cancel, events, resultCh)
	if runErr != nil {
		return nil, false, runErr
	}
	return res.snap, res.hit, res.err
}

// collectResult carries the outcome of a background collection.
type collectResult struct {
	snap snapshot.Snapshot
	hit  bool
	err  error
}

// awaitCollect stops a background collection once the progress view has
// exited. Nothing reads events after that, so workers blocked in the
// collector's emit callback would deadlock; cancelling and draining until
// the collector closes the channel lets every worker finish.
func awaitCollect(cancel context.CancelFunc, events <-chan collect.Event, resultCh <-chan collectResult) collectResult {
	cancel()
	for range events {
	}
	return <-resultCh
}

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
