package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE.pdf",
		Short: "Print the document text a PDF would contribute to a conversation",
		Long: `Extract the text of a PDF health report.  Reports longer than 3000
characters are summarized by the completion service, exactly as the web
upload does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}

			in, cleanup, err := buildIngester(cmd.Context())
			if err != nil {
				return fmt.Errorf("initializing ingestion: %w", err)
			}
			defer cleanup()

			text, err := in.Ingest(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
