package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ciff/internal/preflight"
	"ciff/internal/report"
)

type doctorCheckJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the model, catalog, output directory and bank are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if asJSON {
				payload := make([]doctorCheckJSON, 0, len(results))
				for _, r := range results {
					payload = append(payload, doctorCheckJSON(r))
				}
				if err := report.WriteJSON(cmd.OutOrStdout(), payload); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "ok"
					if !r.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable([]report.Column{{Header: "Check"}, {Header: "Status"}, {Header: "Detail"}}, rows))
			}

			if failed := preflight.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
