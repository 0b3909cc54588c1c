package cli

import (
	"fmt"

	"github.com/harun/chronicle/pkg/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot the catalog into an external format",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		format := exportFormat
		if format == "" {
			format = cfg.Export.Format
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		dest := exportOut
		if dest == "" {
			dest = "chronicle-export." + exporter.Extension()
		}

		records, err := export.Snapshot(cmd.Context(), store)
		if err != nil {
			return err
		}

		if err := exporter.Export(cmd.Context(), records, dest); err != nil {
			return err
		}

		fmt.Printf("Exported %d sessions to %s\n", len(records), dest)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format (sqlite, jsonl)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "destination path")
	rootCmd.AddCommand(exportCmd)
}
