package commands

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thrive-chatbot/internal/config"
	"thrive-chatbot/internal/core"
	"thrive-chatbot/internal/db"
	"thrive-chatbot/internal/document"
	"thrive-chatbot/internal/llm"
	"thrive-chatbot/internal/logging"
)

type asker interface {
	Ask(ctx context.Context, userID, message string) (string, error)
}

type ingester interface {
	Ingest(ctx context.Context, pdf []byte) (string, error)
}

// Builders for the services behind each command.  Tests swap them out.
var (
	buildAsker    = defaultAsker
	buildIngester = defaultIngester
)

// NewRootCmd creates the coach command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "THRIVE health coach command line",
		Long: `coach talks to the same completion service and profile store as the web app.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func defaultAsker(context.Context) (asker, func(), error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	conn, dialect, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.New(cfg.Completion)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	chat := core.NewChatService(client, db.NewRepository(conn, dialect), logger)
	cleanup := func() {
		_ = conn.Close()
		_ = logger.Sync()
	}
	return chat, cleanup, nil
}

func defaultIngester(context.Context) (ingester, func(), error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.New(cfg.Completion)
	if err != nil {
		return nil, nil, err
	}
	in := core.NewIngestor(document.PDFExtractor{}, client, logger, nil)
	return in, func() { _ = logger.Sync() }, nil
}
