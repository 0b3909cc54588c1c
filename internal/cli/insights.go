package cli

import (
	"github.com/harun/chronicle/pkg/insights"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Compute usage insights over the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := insights.New(store).Insights(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Compute the session activity heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		cells, err := insights.New(store).Heatmap(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(cells)
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(heatmapCmd)
}
