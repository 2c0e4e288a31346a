package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ciff/internal/catalog"
	"ciff/internal/config"
	"ciff/internal/report"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the structure catalog",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	return catalogCmd
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFS(os.DirFS(cfg.Paths.AssetsDir), cfg.Model.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogPath(), err)
	}
	return cat, nil
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries in class order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			entries := cat.Entries()
			if limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				self := entry.Self()
				rows = append(rows, []string{
					strconv.Itoa(entry.Index),
					self.ID,
					self.Composition,
					self.SpaceGroup,
					strconv.Itoa(len(entry.Similar)),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.RenderTable([]report.Column{
				{Header: "#", Right: true},
				{Header: "ID"},
				{Header: "Composition"},
				{Header: "Space group"},
				{Header: "Similar", Right: true},
			}, rows))
			fmt.Fprintf(out, "%d of %d entries\n", len(entries), cat.Len())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries (0 for all)")
	return cmd
}

type catalogEntryJSON struct {
	Index   int             `json:"index"`
	Label   string          `json:"label"`
	Members []catalogMember `json:"members"`
}

type catalogMember struct {
	ID          string `json:"id"`
	Composition string `json:"composition,omitempty"`
	SpaceGroup  string `json:"space_group,omitempty"`
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <label>",
		Short: "Show one catalog entry and its similar structures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			entry, ok := cat.Lookup(args[0])
			if !ok {
				return fmt.Errorf("catalog has no entry %q", strings.TrimSpace(args[0]))
			}

			members := append([]catalog.Member{entry.Self()}, entry.Members()...)
			if asJSON {
				payload := catalogEntryJSON{Index: entry.Index, Label: entry.Label}
				for _, m := range members {
					payload.Members = append(payload.Members, catalogMember(m))
				}
				return report.WriteJSON(cmd.OutOrStdout(), payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Label: %s (class %d)\n", entry.Label, entry.Index)
			rows := make([][]string, 0, len(members))
			for i, m := range members {
				role := "similar"
				if i == 0 {
					role = "entry"
				}
				rows = append(rows, []string{m.ID, role, m.Composition, m.SpaceGroup})
			}
			fmt.Fprintln(out, report.RenderTable([]report.Column{
				{Header: "ID"}, {Header: "Role"}, {Header: "Composition"}, {Header: "Space group"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
