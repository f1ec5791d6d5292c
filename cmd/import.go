package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"content-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFlags sourceFlags
	dryRun      bool
	yesConfirm  bool
	failFast    bool
)

// importCmd plans and applies an import.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a snapshot into the destination",
	Long: `Plan the import, print the report, ask for confirmation and apply every
decision in dependency order.

Examples:
  # Preview only
  content-sync import --dry-run

  # Import a local snapshot non-interactively
  content-sync import --source ./export --yes

  # Tolerate duplicate identities and stop at the first failed record
  content-sync import --duplicates lenient --fail-fast --yes`,
	RunE: runImport,
}

func init() {
	importFlags.register(importCmd)
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan and report only, never write")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the import (non-interactive)")
	importCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first record that fails to apply (overrides import.fail_fast)")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(cmd, &importFlags)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()
	if cmd.Flags().Changed("fail-fast") {
		rt.cfg.Import.FailFast = failFast
	}

	rt.logger.Info("Planning import...")
	plan, err := reconcile.BuildPlan(ctx, rt.spec)
	if err != nil {
		return fmt.Errorf("failed to plan import: %w", err)
	}
	printPlanReport(rt.logger, plan)

	if dryRun {
		rt.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}
	result, err := executePlan(ctx, rt, plan, os.Stdin)
	if result == nil && err == nil {
		rt.logger.Warn("Import cancelled by user. No changes were made.")
		return nil
	}
	printBatchResult(rt.logger, result)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			rt.logger.Warn("Import interrupted; counts above reflect what was applied")
		}
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d records failed to apply", result.Failed, result.Processed)
	}
	return nil
}

// executePlan asks for confirmation, prepares the destination schema and applies
// plan. It returns a nil result and no error when the user declines.
func executePlan(ctx context.Context, rt *runtime, plan *reconcile.ImportPlan, in io.Reader) (*reconcile.BatchResult, error) {
	if plan.Summary.Creates+plan.Summary.Updates == 0 {
		rt.logger.Info("Destination is up to date.")
	} else {
		if !confirmImport(in, plan.Summary) {
			return nil, nil
		}
		if err := rt.store.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate destination schema: %w", err)
		}
		if err := rt.store.Verify(); err != nil {
			return nil, err
		}
		rt.logger.Info("Applying plan...")
	}

	// An all-skip plan never reaches the driver but still reports its counts.
	return reconcile.ApplyPlan(ctx, rt.store, plan, reconcile.ApplyOptions{
		Confirmed: true,
		FailFast:  rt.cfg.Import.FailFast,
		Logger:    rt.logger,
	})
}

func printBatchResult(l *zap.Logger, r *reconcile.BatchResult) {
	if r == nil {
		return
	}
	l.Info("Import result",
		zap.Int("processed", r.Processed),
		zap.Int("created", r.Created),
		zap.Int("updated", r.Updated),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
		zap.Int("materialized", r.MaterializedDependencies),
		zap.Bool("cancelled", r.Cancelled),
	)
	for _, f := range r.Failures {
		l.Error("Failed record", zap.String("identity", f.Identity), zap.String("action", string(f.Action)), zap.Error(f.Err))
	}
}

// confirmImport prompts the user for confirmation or uses the --yes flag.
func confirmImport(in io.Reader, s reconcile.PlanSummary) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\nAbout to create %d and update %d records. Type 'yes' to confirm: ", s.Creates, s.Updates)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
