// Package cmd - CLI command: cleanquote pricing restore
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cleanquote/adapters/storage"
	"cleanquote/core/pricing"
)

var pricingRestoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Restore pricing state from a backup",
	Long: `Restore pricing settings and cities from a backup written by
"cleanquote pricing backup".

This command:
  1. Reads the backup file
  2. Validates it with the same rules as an administrator write
  3. Publishes it as a NEW version (never rolls the version back)

Either everything in the backup is restored or nothing is.`,
	Args: cobra.ExactArgs(1),
	RunE: runPricingRestore,
}

var restoreDryRun bool

func init() {
	pricingCmd.AddCommand(pricingRestoreCmd)

	pricingRestoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Validate only, do not publish")
}

func runPricingRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	backupPath := args[0]

	backupStore, err := storage.NewFileStore(backupPath)
	if err != nil {
		return err
	}
	backup, err := backupStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if backup == nil {
		return fmt.Errorf("backup file not found: %s", backupPath)
	}

	fmt.Fprintf(out, "Backup file:  %s\n", backupPath)
	fmt.Fprintf(out, "  Version:    %d\n", backup.Version)
	fmt.Fprintf(out, "  Updated:    %s\n", backup.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  Cities:     %d\n", len(backup.Cities))

	// Validation only: build a throwaway store from the backup.
	candidate, err := pricing.NewStore(backup.Settings, backup.Cities, pricing.SourcePersisted)
	if err != nil {
		fmt.Fprintf(out, "✗ Validation failed: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✓ Validation passed (%s)\n", candidate.Snapshot().ContentHash().Short())

	if restoreDryRun {
		fmt.Fprintln(out, "✓ DRY-RUN COMPLETED - nothing published")
		return nil
	}

	store, persister, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer persister.Close()

	if store.Snapshot().ContentHash() == candidate.Snapshot().ContentHash() {
		fmt.Fprintln(out, "⚠ Current pricing already matches the backup, nothing to do")
		return nil
	}

	snap, err := store.Restore(ctx, backup.Settings, backup.Cities)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Published version %d (%s)\n", snap.Version(), snap.ContentHash().Short())
	return nil
}
