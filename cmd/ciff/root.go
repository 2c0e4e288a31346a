package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	predict := &predictFlags{}

	rootCmd := &cobra.Command{
		Use:   "ciff -d <file-or-directory>",
		Short: "Predict crystal structures from pair distribution function curves",
		Long: `ciff ranks the structures of its catalog by how well they explain a
measured pair distribution function. Each input curve is classified, the best
candidates are printed, and a CSV with every candidate is written to a new
results directory. With --pearson the best candidates are re-scored against
reference curves imported with 'ciff bank import'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, ctx, predict)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	predict.register(rootCmd)

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCatalogCommand(ctx))
	rootCmd.AddCommand(newBankCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))

	return rootCmd
}
