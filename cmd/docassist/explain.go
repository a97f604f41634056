package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hyperjump/docassist/internal/cli"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/shell"
	"github.com/hyperjump/docassist/internal/upload"
	"github.com/hyperjump/docassist/pkg/utils"
)

func newExplainCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "explain <file>",
		Short: "Upload a document, print its explanation and discard the session",
		Example: `  docassist explain lease.pdf
  docassist explain order.txt --output json
  docassist explain nda.pdf --output html > nda.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, _, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			logger := utils.NewConsoleLogger(cfg.Debug, cmd.ErrOrStderr())
			defer logger.Sync()

			f, err := upload.FromPath(shell.CleanPath(args[0]))
			if err != nil {
				return err
			}
			b, err := newBackend(cfg, logger)
			if err != nil {
				return err
			}
			ctrl := newController(cfg, b, nil, logger)
			defer ctrl.Close()

			ctx := cmd.Context()
			if err := ctrl.SubmitFile(ctx, f); err != nil {
				return userError(err)
			}
			if err := ctrl.RequestExplanation(ctx); err != nil {
				return userError(err)
			}
			return cli.WriteExplanation(cmd.OutOrStdout(), ctrl.Snapshot().Explanation, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or html")
	return cmd
}

// userError replaces err with the message the interactive client would show.
func userError(err error) error {
	return errors.New(models.UserMessage(err))
}
