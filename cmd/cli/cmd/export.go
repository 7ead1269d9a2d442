package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cleanquote/adapters/export"
	"cleanquote/core/engine"
)

var (
	exportOutput  string
	exportCompany string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the price list or a quote document",
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write the current price list as an Excel workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, persister, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer persister.Close()

		data, err := export.PriceListXLSX(store.Snapshot())
		if err != nil {
			return err
		}
		return writeExport(cmd, outputPath("pricelist.xlsx"), data)
	},
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf [request.json]",
	Short: "Price a quote request and write it as PDF",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		req, err := readRequest(path, cmd.InOrStdin())
		if err != nil {
			return err
		}

		store, persister, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer persister.Close()

		quote, err := engine.NewEngine(store).Quote(cmd.Context(), req)
		if err != nil {
			return err
		}
		data, err := export.QuotePDF(export.QuoteDocument{
			Company: exportCompany,
			Issued:  time.Now(),
			Quote:   quote,
		})
		if err != nil {
			return err
		}
		return writeExport(cmd, outputPath("quote.pdf"), data)
	},
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file")
	exportPDFCmd.Flags().StringVar(&exportCompany, "company", "CleanQuote", "company name printed on the document")

	exportCmd.AddCommand(exportXLSXCmd, exportPDFCmd)
	rootCmd.AddCommand(exportCmd)
}

func outputPath(fallback string) string {
	if exportOutput != "" {
		return exportOutput
	}
	return fallback
}

func writeExport(cmd *cobra.Command, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
