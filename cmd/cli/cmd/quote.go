package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"cleanquote/adapters/export"
	"cleanquote/core/engine"
)

var (
	quoteFormat string
	quotePDF    string
)

var quoteCmd = &cobra.Command{
	Use:   "quote [request.json]",
	Short: "Price a quote request",
	Long: `Price a single quote request against the current pricing state.

The request is read from the given file, or from stdin when no file or "-"
is given. Field names match the API's POST /pricing/calculate body.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "cli", "output format (cli, json)")
	quoteCmd.Flags().StringVar(&quotePDF, "pdf", "", "also write the quote as PDF to this path")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	req, err := readRequest(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	store, persister, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer persister.Close()

	quote, err := engine.NewEngine(store).Quote(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch quoteFormat {
	case "json":
		data, err := json.MarshalIndent(quote.Result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "cli":
		printQuote(out, quote)
	default:
		return fmt.Errorf("unknown format %q (use cli or json)", quoteFormat)
	}

	if quotePDF != "" {
		pdf, err := export.QuotePDF(export.QuoteDocument{Issued: time.Now(), Quote: quote})
		if err != nil {
			return err
		}
		if err := os.WriteFile(quotePDF, pdf, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", quotePDF)
	}
	return nil
}

func printQuote(w io.Writer, q *engine.Quote) {
	fmt.Fprintf(w, "\nQuote: %s\n", q.Category)
	fmt.Fprintln(w, "══════════════════════════════════════════")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, line := range export.BreakdownLines(q.Result.Details) {
		fmt.Fprintf(tw, "  %s\t%s\n", line.Label, line.Value)
	}
	tw.Flush()

	fmt.Fprintln(w, "──────────────────────────────────────────")
	fmt.Fprintf(w, "  Net price:   %15s\n", export.Money(q.Result.NetPrice))
	fmt.Fprintf(w, "  Travel fee:  %15s\n", export.Money(q.Result.TravelFee))
	fmt.Fprintf(w, "  Total:       %15s\n", export.Money(q.Result.TotalPrice))
	fmt.Fprintf(w, "\nPricing version %d (%s)\n", q.Version, q.ContentHash.Short())
}
