package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cleanquote/adapters/seed"
	"cleanquote/core/pricing"
)

var validateCmd = &cobra.Command{
	Use:   "validate [seed-file]",
	Short: "Validate a pricing seed file",
	Long: `Parse and validate an HCL pricing seed file with the same rules the
store applies to administrator writes. Defaults to seed.path from the config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := cfg.Seed.Path
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("seed file: %w", err)
	}

	sd, err := seed.LoadFile(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s\n", path)
		return err
	}

	// Building a snapshot runs the full validation and yields the hash the
	// server would publish.
	store, err := pricing.NewStore(sd.Settings, sd.Cities, sd.Source)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s\n", path)
		return err
	}
	snap := store.Snapshot()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %s\n", path)
	fmt.Fprintf(out, "  PV tiers:           %d\n", len(snap.Settings().PV.Tiers))
	fmt.Fprintf(out, "  Stairwell method:   %s\n", snap.Settings().Stairwell.Method)
	fmt.Fprintf(out, "  Maintenance extras: %d\n", len(snap.Settings().Maintenance.Extras))
	fmt.Fprintf(out, "  Cities:             %d\n", len(snap.Cities()))
	fmt.Fprintf(out, "  Content hash:       %s\n", snap.ContentHash().Short())
	return nil
}
