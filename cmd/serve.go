package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/carismo/shopmail/pkg/config"
	"github.com/carismo/shopmail/pkg/gmail"
	"github.com/carismo/shopmail/pkg/logger"
	"github.com/carismo/shopmail/pkg/slackbot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack bot and start watching for order emails",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// A .env file is a convenience for local runs, not a requirement.
	_ = godotenv.Load()

	log := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mailbox := gmail.NewClient(cfg.ShopAddress, gmail.Credentials{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RedirectURI:  cfg.GmailRedirectURI,
		RefreshToken: cfg.GmailRefreshToken,
	}, log)

	log.Info("Connecting to Gmail API...")
	if err := mailbox.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to Gmail: %w", err)
	}
	log.Info(fmt.Sprintf("Connected to Gmail as %s", cfg.ShopAddress))

	bot := slackbot.New(cfg, mailbox, log)
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("slack connection failed: %w", err)
	}

	log.Info("Shutting down")
	return nil
}
