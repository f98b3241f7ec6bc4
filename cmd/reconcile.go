package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegroup/internal/reconcile"
)

var reconcileOnce bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair the transitive-closure invariant over persisted groups",
	Long: `reconcile drains the dirty-group queue and repairs each group:
dropping member faces whose face doc has drifted to another group, and
merging any groups left overlapping by a partially-applied write. By
default it starts the periodic scheduler; --once runs a single pass
over at most the configured batch size of queued groups and exits.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().BoolVar(&reconcileOnce, "once", false, "Run a single pass over at most one batch of queued groups and exit")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	r := reconcile.New(d.store, d.queue)
	r.BatchSize = d.cfg.Reconciler.BatchSize
	r.CircuitBreaker = reconcile.NewCircuitBreaker(d.cfg.Reconciler.FailureThreshold, d.cfg.Reconciler.ResetTimeout)

	if reconcileOnce {
		backlog, err := d.queue.Len(ctx)
		if err != nil {
			return fmt.Errorf("read queue length: %w", err)
		}
		bar := progressbar.NewOptions64(backlog,
			progressbar.OptionSetDescription("Repairing groups"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
		if err := r.RunOnce(ctx); err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		_ = bar.Set64(backlog)
		fmt.Println()
		fmt.Println("Reconciliation pass complete.")
		return nil
	}

	fmt.Printf("Starting reconciler, polling every %s...\n", d.cfg.Reconciler.PollInterval)
	if err := r.Start(ctx, d.cfg.Reconciler.PollInterval); err != nil {
		return fmt.Errorf("start reconciler: %w", err)
	}
	select {}
}
