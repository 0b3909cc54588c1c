package cli

import (
	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title <session-id> <title>",
	Short: "Set a session's title",
	Long: `Set a session's description and mark the title as customized.
An empty title is allowed and clears the description.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		return store.SetDescription(cmd.Context(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(titleCmd)
}
