package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

type classifyOutput struct {
	WeightGrams      float64 `json:"weight_grams"`
	SquattingMinutes float64 `json:"squatting_minutes"`
	burden.Result
	Label string `json:"label"`
}

type periodOutput struct {
	Years     float64 `json:"years"`
	Source    string  `json:"source"`
	Label     string  `json:"label"`
	Formatted string  `json:"formatted"`
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify the physical burden of one job",
		Long: `Classify a job by load weight (grams per lift) and squatting time
(minutes per day). A trailing unit such as "3000g" is ignored; invalid or
negative values count as 0.`,
		Example: `  wrbctl classify --weight 3000 --squatting 180
  wrbctl classify --weight 2500g --squatting 60 --lang en --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weightText, _ := cmd.Flags().GetString("weight")
			squatText, _ := cmd.Flags().GetString("squatting")
			e := newEnv(cmd)

			weight := burden.CoerceNumber(weightText)
			squat := burden.CoerceNumber(squatText)
			result := burden.Classify(weight, squat)
			out := classifyOutput{
				WeightGrams:      weight,
				SquattingMinutes: squat,
				Result:           result,
				Label:            locale.New(e.lang).Level(result.Level),
			}

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			pterm.Info.Printfln("Load %s g, squatting %s min/day", domain.Quantity(weight), domain.Quantity(squat))
			pterm.Success.Printfln("Burden: %s (%.1f ~ %.1f)", out.Label, result.MinScore, result.MaxScore)
			return nil
		},
	}

	cmd.Flags().String("weight", "0", "Load weight per lift in grams")
	cmd.Flags().String("squatting", "0", "Squatting time in minutes per day")
	return cmd
}

func newPeriodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Compute the effective work period of one job",
		Long: `Compute a job's work period from its start and end dates (YYYY-MM-DD).
A manual override such as "3년 6개월", "3 years 6 months" or "3y 6m" takes
precedence over the dates.`,
		Example: `  wrbctl period --start 2010-01-01 --end 2015-07-01
  wrbctl period --override "10년"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			override, _ := cmd.Flags().GetString("override")
			e := newEnv(cmd)

			job := domain.JobHistory{
				StartDate:          domain.ParseDate(start),
				EndDate:            domain.ParseDate(end),
				WorkPeriodOverride: override,
			}
			period := job.BurdenJob().Period()
			out := periodOutput{
				Years:     period.Years(),
				Source:    string(period.Source()),
				Label:     locale.New(e.lang).JobPeriod(job),
				Formatted: burden.FormatWorkPeriod(job.StartDate.Time, job.EndDate.Time),
			}

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			pterm.Success.Printfln("Work period: %s (%.2f years, %s)", out.Label, out.Years, out.Source)
			return nil
		},
	}

	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().String("override", "", "Manually entered work period")
	return cmd
}
