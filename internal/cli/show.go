package cli

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's metadata and message log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.ReadRecord(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJSON(record)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
