package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the coach one question using a stored profile",
		Long: `Ask the coach a single question.  The prompt includes the user's stored
profile and latest health entry.

Examples:
  coach ask --user-id 42 "How can I sleep better?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user-id is required")
			}
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message cannot be empty")
			}

			coach, cleanup, err := buildAsker(cmd.Context())
			if err != nil {
				return fmt.Errorf("initializing coach: %w", err)
			}
			defer cleanup()

			reply, err := coach.Ask(cmd.Context(), userID, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User whose profile is used")
	return cmd
}
