package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wr-burden-mcp-server/internal/domain"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Search the job preset catalog",
		Long: `Job presets carry the typical load weight and squatting time of common
occupations. The catalog is read from --presets or WRB_PRESET_SOURCE; when
neither is set, or the catalog cannot be loaded, the built-in presets are
used.`,
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Find presets whose job name or category contains query",
		Example: `  wrbctl presets search 제조
  wrbctl presets search 건설 --presets ./presets.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(cmd)
			catalog, err := e.openCatalog(cmd)
			if err != nil {
				return err
			}
			return renderPresets(cmd, e, catalog.Search(strings.Join(args, " ")), catalog.Meta())
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(cmd)
			catalog, err := e.openCatalog(cmd)
			if err != nil {
				return err
			}
			return renderPresets(cmd, e, catalog.All(), catalog.Meta())
		},
	}

	cmd.AddCommand(search, list)
	return cmd
}

func renderPresets(cmd *cobra.Command, e *env, found []domain.Preset, meta domain.CatalogMeta) error {
	if found == nil {
		found = []domain.Preset{}
	}
	if e.jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"presets": found,
			"meta":    meta,
		})
	}

	if meta.LoadError != "" {
		pterm.Warning.Printfln("Catalog could not be loaded, using built-in presets: %s", meta.LoadError)
	}
	if len(found) == 0 {
		pterm.Info.Println("No matching presets")
		return nil
	}

	data := pterm.TableData{{"ID", "Job", "Category", "Load (g)", "Squatting (min)", "Source"}}
	for _, p := range found {
		data = append(data, []string{
			strconv.Itoa(p.ID),
			p.JobName,
			p.Category,
			domain.Quantity(p.Weight).String(),
			domain.Quantity(p.Squatting).String(),
			orDash(p.Source),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return fmt.Errorf("failed to render presets: %w", err)
	}
	pterm.Printfln("Catalog version %s, %d presets", meta.Version, meta.Count)
	return nil
}
