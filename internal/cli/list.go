package cli

import (
	"fmt"

	"github.com/harun/chronicle/pkg/session"
	"github.com/spf13/cobra"
)

var listSort string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		var order session.SortOrder
		switch listSort {
		case "desc":
			order = session.SortDescending
		case "asc":
			order = session.SortAscending
		default:
			return fmt.Errorf("invalid sort order: %s (expected asc or desc)", listSort)
		}

		infos, err := store.List(cmd.Context(), order)
		if err != nil {
			return err
		}

		return printJSON(infos)
	},
}

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "desc", "sort order by modification time (asc, desc)")
	rootCmd.AddCommand(listCmd)
}
