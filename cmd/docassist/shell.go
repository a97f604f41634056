package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/cli"
	"github.com/hyperjump/docassist/internal/config"
	"github.com/hyperjump/docassist/internal/controller"
	"github.com/hyperjump/docassist/internal/shell"
	"github.com/hyperjump/docassist/internal/watcher"
	"github.com/hyperjump/docassist/pkg/utils"
)

func newShellCmd(flags *globalFlags) *cobra.Command {
	var noHints bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive session.

Upload a document with /upload <path> (or drop it into the --drop directory),
then use /explain or /chat. Type /help for all commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolved, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			logger := utils.NewConsoleLogger(cfg.Debug, cmd.ErrOrStderr())
			defer logger.Sync()
			logger.Debug("config loaded", zap.String("config_path", resolved), zap.String("mode", string(cfg.Mode)))

			b, err := newBackend(cfg, logger)
			if err != nil {
				return err
			}
			view := cli.NewTerminalView(cmd.OutOrStdout())
			view.SetHints(!noHints)
			ctrl := newController(cfg, b, view, logger)
			defer ctrl.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sh := shell.New(ctrl, view, cmd.InOrStdin(), cmd.OutOrStdout(),
				shell.WithLogger(logger),
				shell.WithExport(cfg.Export.Directory, cfg.Export.Format),
			)
			if cfg.Mode == config.ModeLocal {
				view.Notice(controller.StatusInfo, "Running in local mode: answers are generated on this machine.")
			}
			if cfg.Drop.Directory != "" {
				w, err := startDropWatcher(ctx, cfg, sh, logger)
				if err != nil {
					return err
				}
				defer w.Stop()
				view.Notice(controller.StatusInfo, "Watching "+w.Dir()+" for new documents.")
			}
			return sh.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&noHints, "no-hints", false, "hide the command hints shown on panel changes")
	return cmd
}

func startDropWatcher(ctx context.Context, cfg *config.Config, sh *shell.Shell, logger *zap.Logger) (*watcher.Watcher, error) {
	w := watcher.NewWatcher(cfg.Drop.Directory,
		func(path string) { sh.SubmitPath(ctx, path) },
		watcher.WithLogger(logger),
		watcher.WithRecursive(cfg.Drop.RecursiveOrDefault()),
	)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
