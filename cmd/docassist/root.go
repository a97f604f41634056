package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/backend"
	"github.com/hyperjump/docassist/internal/config"
	"github.com/hyperjump/docassist/internal/controller"
	"github.com/hyperjump/docassist/internal/upload"
)

const defaultConfigPath = "/usr/local/etc/docassist/config.yaml"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
	mode       string
	serverURL  string
	drop       string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "docassist",
		Short: "Upload legal documents, read plain-language explanations and chat about them",
		Long: `docassist is a terminal client for the legal document assistant.

Upload a PDF, TXT, JPG or JPEG document, ask for a plain-language explanation,
or open a chat and ask questions about its contents.

Quick Start:
  docassist serve                          # run the local stub backend
  docassist shell                          # interactive session
  docassist shell --mode local             # no backend, canned answers
  docassist explain lease.pdf -o json  # one-shot explanation`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "docassist version %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", defaultConfigPath, "config file path")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.mode, "mode", "", "backend mode: remote or local (overrides config)")
	pf.StringVar(&flags.serverURL, "server", "", "backend base URL (overrides config)")
	pf.StringVar(&flags.drop, "drop", "", "drop directory to watch for new files (overrides config)")

	root.AddCommand(
		newShellCmd(flags),
		newExplainCmd(flags),
		newServeCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory; if neither exists the built-in defaults are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolveConfig loads the config and applies flag overrides.
func resolveConfig(flags *globalFlags) (*config.Config, string, error) {
	cfg, resolved, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, "", err
	}
	applyOverrides(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func applyOverrides(cfg *config.Config, flags *globalFlags) {
	if flags.debug {
		cfg.Debug = true
	}
	if flags.mode != "" {
		mode := config.Mode(flags.mode)
		if mode == config.ModeLocal && cfg.Mode != config.ModeLocal && cfg.Upload.MaxSizeBytes == config.DefaultMaxSizeBytes {
			cfg.Upload.MaxSizeBytes = config.LocalMaxSizeBytes
		}
		cfg.Mode = mode
	}
	if flags.serverURL != "" {
		cfg.Backend.URL = flags.serverURL
	}
	if flags.drop != "" {
		cfg.Drop.Directory = flags.drop
	}
}

// newBackend returns the backend selected by cfg.Mode.
func newBackend(cfg *config.Config, logger *zap.Logger) (backend.Backend, error) {
	switch cfg.Mode {
	case config.ModeLocal:
		return backend.NewLocalBackend(backend.LocalDelays{
			Upload:   cfg.Local.UploadDelay,
			Explain:  cfg.Local.ExplainDelay,
			ReplyMin: cfg.Local.ReplyDelayMin,
			ReplyMax: cfg.Local.ReplyDelayMax,
		}, backend.WithLocalLogger(logger)), nil
	case config.ModeRemote:
		return backend.NewHTTPBackend(cfg.Backend.URL, backend.WithHTTPLogger(logger))
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

func newController(cfg *config.Config, b backend.Backend, v controller.View, logger *zap.Logger) *controller.Controller {
	return controller.New(b, v, controller.Options{
		Policy: upload.Policy{
			MaxSizeBytes: cfg.Upload.MaxSizeBytes,
			Extensions:   cfg.Upload.Extensions,
		},
		RequestTimeout: cfg.Backend.RequestTimeout,
		SendCooldown:   cfg.Chat.SendCooldown,
		BotPrefix:      cfg.Chat.BotPrefix,
	}, controller.WithLogger(logger))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docassist version %s\n", version)
		},
	}
}
