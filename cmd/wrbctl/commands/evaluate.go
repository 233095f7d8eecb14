package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate patient records",
		Long: `Evaluate one record or a list of records read from a YAML or JSON file.
Partial records are accepted: missing values count as absent.`,
		Example: `  wrbctl evaluate -f patient.yaml
  wrbctl evaluate -f patients.json --json
  cat patient.yaml | wrbctl evaluate -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			e := newEnv(cmd)

			records, err := loadRecords(cmd, file)
			if err != nil {
				return err
			}

			evals, err := e.evaluator.EvaluateBatch(cmd.Context(), records)
			if err != nil {
				return err
			}

			if e.jsonOut {
				if len(evals) == 1 {
					return writeJSON(cmd.OutOrStdout(), evals[0])
				}
				return writeJSON(cmd.OutOrStdout(), evals)
			}
			renderEvaluations(locale.New(e.lang), evals)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Record file (.yaml, .yml or .json; - for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func renderEvaluations(tr *locale.Translator, evals []*domain.Evaluation) {
	for _, eval := range evals {
		pterm.DefaultSection.Println(orDash(eval.PatientName))
		pterm.Printfln("Age at injury: %d   BMI: %s", eval.AgeYears, formatOptional(eval.BMI))

		data := pterm.TableData{{"#", "Job", "Period", "Load (g)", "Squatting (min)", "Burden"}}
		for i, j := range eval.Jobs {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				orDash(j.JobName),
				j.PeriodLabel,
				domain.Quantity(j.WeightGrams).String(),
				domain.Quantity(j.SquattingMinutes).String(),
				tr.Level(j.Burden.Level),
			})
		}
		if len(eval.Jobs) > 0 {
			_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		}

		pterm.Info.Printfln("Work-relatedness: %.1f%% ~ %.1f%%", eval.RelatednessDisplay.Min, eval.RelatednessDisplay.Max)
		pterm.Success.Printfln("Cumulative burden: %s", tr.Verdict(eval.Verdict))
		pterm.Println()
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the work-relatedness opinion for a record",
		Long: `Render the medical opinion for a complete record. The record must carry a
name, birth date, injury date, at least one diagnosis and one job.

Formats:
  text  plain-text opinion (default)
  emr   opinion laid out as the sections of the EMR form`,
		Example: `  wrbctl report -f patient.yaml
  wrbctl report -f patient.yaml --format emr --lang en
  wrbctl report -f patient.yaml -o opinion.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("output")
			e := newEnv(cmd)

			records, err := loadRecords(cmd, file)
			if err != nil {
				return err
			}
			if len(records) != 1 {
				return fmt.Errorf("report expects exactly one record, got %d", len(records))
			}
			record := records[0]

			var text string
			switch format {
			case "text":
				text, err = e.reports.Generate(cmd.Context(), record, e.lang)
				if err != nil {
					return describeValidation(err)
				}
			case "emr":
				report, err := e.reports.GenerateEMR(cmd.Context(), record, e.lang)
				if err != nil {
					return describeValidation(err)
				}
				if e.jsonOut {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				text = report.Title + "\n"
				for _, s := range report.Sections {
					text += "\n[" + s.Heading + "]\n" + s.Body + "\n"
				}
			default:
				return fmt.Errorf("unknown format %q: must be text or emr", format)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				pterm.Success.Printfln("Report written to %s", outPath)
				return nil
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"report": text, "lang": e.lang})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringP("file", "f", "", "Record file (.yaml, .yml or .json; - for stdin)")
	cmd.Flags().String("format", "text", "Report format: text or emr")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// describeValidation lists the missing fields of an incomplete record.
func describeValidation(err error) error {
	var ves domain.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	for _, ve := range ves {
		pterm.Warning.Printfln("%s: %s", ve.Field, ve.Message)
	}
	return fmt.Errorf("record is incomplete: %d problem(s)", len(ves))
}

func orDash(s string) string {
	if s == "" {
		return locale.Placeholder
	}
	return s
}

func formatOptional(v float64) string {
	if v == 0 {
		return locale.Placeholder
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
