// Package commands implements the wrbctl command tree.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wr-burden-mcp-server/internal/config"
	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/presets"
	"github.com/wr-burden-mcp-server/internal/service"
)

// NewRootCmd builds the wrbctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wrbctl",
		Short: "Work-relatedness and physical-burden evaluation",
		Long: `wrbctl evaluates occupational knee-disorder records from the command line.

Available commands:
  classify  - Classify the physical burden of one job
  period    - Compute the effective work period of one job
  evaluate  - Evaluate patient records (YAML or JSON)
  report    - Render the work-relatedness opinion for a record
  presets   - Search the job preset catalog
  setup     - Register the MCP server with a desktop client
  version   - Show version information

Examples:
  wrbctl classify --weight 3000 --squatting 180
  wrbctl period --start 2010-01-01 --end 2015-07-01
  wrbctl evaluate -f patient.yaml --json
  wrbctl report -f patient.yaml --lang en
  wrbctl presets search 제조`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			pterm.SetDefaultOutput(cmd.OutOrStdout())
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				pterm.DisableStyling()
			}
		},
	}

	root.PersistentFlags().String("lang", "", "Label language: ko or en (default from WRB_LOCALE)")
	root.PersistentFlags().String("presets", "", "Preset catalog file or URL (default from WRB_PRESET_SOURCE)")
	root.PersistentFlags().BoolP("json", "j", false, "Output results in JSON format")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().CountP("verbose", "v", "Log to stderr (repeat for debug)")

	root.AddCommand(
		newClassifyCmd(),
		newPeriodCmd(),
		newEvaluateCmd(),
		newReportCmd(),
		newPresetsCmd(),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

// env carries the services shared by the subcommands.
type env struct {
	cfg       *config.LiteConfig
	lang      string
	jsonOut   bool
	logger    *logrus.Logger
	evaluator *service.EvaluationService
	reports   *service.ReportService
}

func newEnv(cmd *cobra.Command) *env {
	cfg := config.LoadLiteConfig()

	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = cfg.Locale
	}
	jsonOut, _ := cmd.Flags().GetBool("json")

	logger := logging.Discard()
	switch verbosity, _ := cmd.Flags().GetCount("verbose"); {
	case verbosity == 1:
		logger = logging.NewWithWriter("info", "text", cmd.ErrOrStderr())
	case verbosity > 1:
		logger = logging.NewWithWriter("debug", "text", cmd.ErrOrStderr())
	}

	evaluator := service.NewEvaluationService(logger, domain.EvaluationConfig{
		Locale:         lang,
		MaxParallelism: cfg.MaxParallelism,
	})

	return &env{
		cfg:       cfg,
		lang:      lang,
		jsonOut:   jsonOut,
		logger:    logger,
		evaluator: evaluator,
		reports:   service.NewReportService(logger, evaluator, lang),
	}
}

func (e *env) openCatalog(cmd *cobra.Command) (*presets.Catalog, error) {
	pcfg := e.cfg.PresetsConfig()
	if src, _ := cmd.Flags().GetString("presets"); src != "" {
		pcfg.Source = src
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), pcfg.Timeout)
	defer cancel()

	catalog, _, err := presets.Open(ctx, pcfg, e.logger)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// loadRecords reads one record or a list of records from a YAML or JSON
// file. "-" reads standard input as YAML, which also accepts JSON.
func loadRecords(cmd *cobra.Command, path string) ([]*domain.PatientRecord, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decodeJSONRecords(data)
	}
	return decodeYAMLRecords(data)
}

func decodeJSONRecords(data []byte) ([]*domain.PatientRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var records []*domain.PatientRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
		return records, nil
	}

	var record domain.PatientRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return []*domain.PatientRecord{&record}, nil
}

func decodeYAMLRecords(data []byte) ([]*domain.PatientRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("no records found")
	}

	doc := node.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var records []*domain.PatientRecord
		if err := doc.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
		return records, nil
	}

	var record domain.PatientRecord
	if err := doc.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return []*domain.PatientRecord{&record}, nil
}
