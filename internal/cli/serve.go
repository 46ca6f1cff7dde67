package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "valcal/internal/log"
	"valcal/internal/session"
	"valcal/internal/web"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recipient view and the authoring API",
		Long:  "Serve GET /view for shared links, GET /view.ics for reminders, and the /api/calendar authoring endpoints.",
		Args:  cobra.NoArgs,
		Run:   runServe,
	}

	cmd.Flags().StringP("listen", "l", "", "HTTP listen address (overrides config)")
	cmd.Flags().String("base-url", "", "Origin shared links are built on (overrides config)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.Listen = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
		cfg.Normalize()
	}

	appLog.Info("effective config",
		"listen", cfg.Listen,
		"base_url", cfg.BaseURL,
		"default_language", string(cfg.DefaultLanguage),
		"viewer_timezone", cfg.ViewerTimezone,
		"max_image_bytes", cfg.MaxImageBytes,
	)

	store := session.NewStore(
		session.WithOrigin(cfg.BaseURL),
		session.WithDefaultLanguage(cfg.DefaultLanguage),
		session.WithMaxImageBytes(cfg.MaxImageBytes),
	)
	srv := web.NewServer(cfg, store, newEngine(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		exitErr("serve", err)
	}
	appLog.Info("valcal exiting")
}
