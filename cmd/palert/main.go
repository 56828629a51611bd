package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2co2co0417/P-Alert/internal/app"
	"github.com/2co2co0417/P-Alert/internal/config"
	"github.com/2co2co0417/P-Alert/internal/db"
	"github.com/2co2co0417/P-Alert/internal/logging"
)

const appName = "palert"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfg    config.Config
	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Pressure alert dashboard",
		Long:          "Serves the barometric pressure dashboard: chart, risk badge, danger window and night-time drink advice.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			var err error
			cfg, err = config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger = logging.New(cfg, version, appName)
			slog.SetDefault(logger)
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("starting",
				"app", appName,
				"version", version,
				"env", cfg.AppEnv,
				"log_level", cfg.LogLevel.String(),
			)
			err := app.Run(cmd.Context(), cfg, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("run failed", "err", err)
				return err
			}
			logger.Info("shutting down")
			return nil
		},
	}

	var (
		renderFile   string
		renderURL    string
		renderDrinks string
		renderFormat string
	)
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch once and print the rendered dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if renderFile != "" && renderURL != "" {
				return errors.New("--file and --url are mutually exclusive")
			}
			keys, err := app.ParseDrinkList(renderDrinks)
			if err != nil {
				return err
			}
			return app.Render(cmd.Context(), cfg, app.RenderOptions{
				File:   renderFile,
				URL:    renderURL,
				Drinks: keys,
				Format: renderFormat,
			}, cmd.OutOrStdout(), logger)
		},
	}
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "read the payload from a file instead of the backend")
	renderCmd.Flags().StringVarP(&renderURL, "url", "u", "", "fetch the payload from this URL instead of BACKEND_URL")
	renderCmd.Flags().StringVarP(&renderDrinks, "drinks", "d", "", "comma separated preferred drinks, e.g. beer,shochu")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "o", "json", "output format: json or text")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.OpenDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return db.Close(conn)
		},
	}

	var notifyReason string
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Tell running dashboards to refresh now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Notify(cmd.Context(), cfg, notifyReason, logger)
		},
	}
	notifyCmd.Flags().StringVarP(&notifyReason, "reason", "r", "manual", "reason attached to the notification")

	rootCmd.AddCommand(serveCmd, renderCmd, migrateCmd, notifyCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
