package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ciff/internal/config"
	"ciff/internal/logging"
	"ciff/internal/refbank"
	"ciff/internal/report"
)

func newBankCommand(ctx *commandContext) *cobra.Command {
	var bankPath string
	bankCmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage the reference curve bank",
	}
	bankCmd.PersistentFlags().StringVar(&bankPath, "bank", "", "Reference bank database path")

	resolve := func() (*config.Config, error) {
		base, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		cfg := *base
		if strings.TrimSpace(bankPath) != "" {
			cfg.Paths.BankPath = bankPath
			if err := cfg.Normalize(); err != nil {
				return nil, err
			}
		}
		return &cfg, nil
	}

	bankCmd.AddCommand(newBankImportCommand(resolve))
	bankCmd.AddCommand(newBankLabelsCommand(resolve))
	return bankCmd
}

func newBankImportCommand(resolve func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import reference curves laid out as <dir>/<catalog-id>/<name>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = logging.NewComponentLogger(logger, "bank")

			store, err := refbank.Open(cfg.Paths.BankPath)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.ImportDir(cmd.Context(), args[0], cfg.BankLockPath(), logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d curves for %d labels into %s\n", result.Curves, result.Labels, store.Path())
			for _, failure := range result.Failures {
				fmt.Fprintf(out, "  skipped %s: %v\n", failure.Path, failure.Err)
			}
			return nil
		},
	}
}

func newBankLabelsCommand(resolve func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List catalog IDs with reference curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			store, err := refbank.Open(cfg.Paths.BankPath)
			if err != nil {
				return err
			}
			defer store.Close()

			labels, err := store.Labels(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(labels) == 0 {
				fmt.Fprintf(out, "No reference curves in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(labels))
			for _, label := range labels {
				refs, err := store.References(cmd.Context(), label)
				if err != nil {
					return err
				}
				rows = append(rows, []string{label, strconv.Itoa(len(refs))})
			}
			fmt.Fprintln(out, report.RenderTable([]report.Column{{Header: "ID"}, {Header: "Curves", Right: true}}, rows))
			return nil
		},
	}
}
