package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/server"
	"github.com/hyperjump/docassist/internal/storage"
	"github.com/hyperjump/docassist/pkg/utils"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stub document backend",
		Long: `Run the stub document backend.

It implements the upload, explain, chat and session endpoints with canned
content, so the client can be exercised without the real document service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolved, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			applyOverrides(cfg, flags)
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer logger.Sync()
			logger.Info("config loaded",
				zap.String("config_path", resolved),
				zap.Bool("debug", cfg.Debug),
			)

			store, err := storage.Open(cfg.Server.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()
			files, err := storage.NewFileStore(cfg.Server.UploadsDir)
			if err != nil {
				return err
			}

			srv := server.NewServer(store, files, &cfg.Server, logger)
			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
