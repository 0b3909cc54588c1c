package cli

import (
	"fmt"
	"time"

	"github.com/harun/chronicle/pkg/session"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
)

var (
	appendRole    string
	appendContent string
)

var appendCmd = &cobra.Command{
	Use:   "append <session-id>",
	Short: "Append a message to a session",
	Long: `Append a message to a session's log, creating the session on first
append. Pass "-" as the session id to generate a fresh one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		id := args[0]
		if id == "-" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate session id: %w", err)
			}
		}

		msg := session.Message{
			Role:    appendRole,
			Content: appendContent,
			Created: time.Now().Unix(),
		}

		if err := store.AppendMessages(cmd.Context(), id, []session.Message{msg}); err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

func init() {
	appendCmd.Flags().StringVar(&appendRole, "role", "user", "message role")
	appendCmd.Flags().StringVar(&appendContent, "content", "", "message content")
	_ = appendCmd.MarkFlagRequired("content")
	rootCmd.AddCommand(appendCmd)
}
