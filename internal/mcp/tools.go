package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/metrics"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

// Tool names
const (
	ToolClassifyBurden       = "classify_burden"
	ToolCalculateWorkPeriod  = "calculate_work_period"
	ToolCalculateRelatedness = "calculate_relatedness"
	ToolEvaluatePatient      = "evaluate_patient"
	ToolSearchJobPresets     = "search_job_presets"
	ToolGenerateReport       = "generate_report"
)

var toolNames = []string{
	ToolClassifyBurden,
	ToolCalculateWorkPeriod,
	ToolCalculateRelatedness,
	ToolEvaluatePatient,
	ToolSearchJobPresets,
	ToolGenerateReport,
}

// ClassifyBurdenParams represents parameters for the classify_burden tool
type ClassifyBurdenParams struct {
	WeightGrams      float64 `json:"weight_grams" jsonschema:"load weight handled per lift, in grams"`
	SquattingMinutes float64 `json:"squatting_minutes" jsonschema:"squatting time per day, in minutes"`
	Lang             string  `json:"lang,omitempty" jsonschema:"label language: ko or en"`
}

// ClassifyBurdenResult represents the result of burden classification
type ClassifyBurdenResult struct {
	Level    burden.Level `json:"level"`
	Label    string       `json:"label"`
	MinScore float64      `json:"min_score"`
	MaxScore float64      `json:"max_score"`
}

// WorkPeriodParams represents parameters for the calculate_work_period tool
type WorkPeriodParams struct {
	StartDate          string `json:"start_date,omitempty" jsonschema:"first day of the job, YYYY-MM-DD"`
	EndDate            string `json:"end_date,omitempty" jsonschema:"last day of the job, YYYY-MM-DD"`
	WorkPeriodOverride string `json:"work_period_override,omitempty" jsonschema:"manually entered period such as 3년 6개월 or 3 years 6 months"`
	Lang               string `json:"lang,omitempty" jsonschema:"label language: ko or en"`
}

// WorkPeriodResult represents the effective period of one job
type WorkPeriodResult struct {
	Years     float64 `json:"years"`
	Source    string  `json:"source"`
	Label     string  `json:"label"`
	Formatted string  `json:"formatted"`
}

// JobParams is one job of the calculate_relatedness tool.
type JobParams struct {
	WeightGrams        float64 `json:"weight_grams"`
	SquattingMinutes   float64 `json:"squatting_minutes"`
	StartDate          string  `json:"start_date,omitempty"`
	EndDate            string  `json:"end_date,omitempty"`
	WorkPeriodOverride string  `json:"work_period_override,omitempty"`
}

// RelatednessParams represents parameters for the calculate_relatedness tool
type RelatednessParams struct {
	Age        int         `json:"age,omitempty" jsonschema:"age at injury, used when birth_date or injury_date is missing"`
	BirthDate  string      `json:"birth_date,omitempty" jsonschema:"YYYY-MM-DD"`
	InjuryDate string      `json:"injury_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Jobs       []JobParams `json:"jobs" jsonschema:"job exposure history"`
	Lang       string      `json:"lang,omitempty" jsonschema:"label language: ko or en"`
}

// RelatednessResult represents the relatedness range and verdict
type RelatednessResult struct {
	AgeYears     int            `json:"age_years"`
	Relatedness  burden.Range   `json:"relatedness"`
	Display      burden.Range   `json:"display"`
	Midpoint     float64        `json:"midpoint"`
	Verdict      burden.Verdict `json:"verdict"`
	VerdictLabel string         `json:"verdict_label"`
}

// EvaluatePatientParams represents parameters for the evaluate_patient tool
type EvaluatePatientParams struct {
	Record map[string]any `json:"record" jsonschema:"patient record with demographics, diagnoses and jobs"`
}

// SearchPresetsParams represents parameters for the search_job_presets tool
type SearchPresetsParams struct {
	Query string `json:"query" jsonschema:"substring of a job name or category"`
}

// SearchPresetsResult lists the matching presets.
type SearchPresetsResult struct {
	Presets []domain.Preset    `json:"presets"`
	Meta    domain.CatalogMeta `json:"meta"`
}

// GenerateReportParams represents parameters for the generate_report tool
type GenerateReportParams struct {
	Record map[string]any `json:"record" jsonschema:"complete patient record"`
	Lang   string         `json:"lang,omitempty" jsonschema:"report language: ko or en"`
	Format string         `json:"format,omitempty" jsonschema:"text (default) or emr"`
}

// ToolError is the body of a failed tool call.
type ToolError struct {
	*domain.ServiceError
	Fields []*domain.ValidationError `json:"fields,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolClassifyBurden,
		Description: "Classify the physical burden of a job from its load weight (g) and daily squatting time (min)",
	}, timed(s.logger, ToolClassifyBurden, s.handleClassifyBurden))

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolCalculateWorkPeriod,
		Description: "Compute the effective work period of a job from its dates or a manual override",
	}, timed(s.logger, ToolCalculateWorkPeriod, s.handleWorkPeriod))

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolCalculateRelatedness,
		Description: "Aggregate job burdens into a work-relatedness range and cumulative-burden verdict",
	}, timed(s.logger, ToolCalculateRelatedness, s.handleRelatedness))

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolEvaluatePatient,
		Description: "Evaluate a full patient record: age, BMI, per-job burden, relatedness and verdict",
	}, timed(s.logger, ToolEvaluatePatient, s.handleEvaluatePatient))

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolSearchJobPresets,
		Description: "Search the job preset catalog by job name or category",
	}, timed(s.logger, ToolSearchJobPresets, s.handleSearchPresets))

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGenerateReport,
		Description: "Generate the work-relatedness medical opinion for a complete patient record",
	}, timed(s.logger, ToolGenerateReport, s.handleGenerateReport))

	s.logger.WithField("tool_count", len(toolNames)).Info("Registered MCP tools")
}

var errToolResult = errors.New("tool returned an error result")

// timed wraps a tool handler with operation logging.
func timed[In any](
	logger logrus.FieldLogger,
	tool string,
	h func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params In) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		res, out, err := h(ctx, req, params)

		logErr := err
		if logErr == nil && res != nil && res.IsError {
			logErr = errToolResult
		}
		logging.LogOperation(logger, logging.OperationToolCall, tool, start, logErr, nil)
		return res, out, err
	}
}

func (s *Server) handleClassifyBurden(ctx context.Context, req *mcp.CallToolRequest, params ClassifyBurdenParams) (*mcp.CallToolResult, any, error) {
	result := burden.Classify(params.WeightGrams, params.SquattingMinutes)

	return s.jsonResult(ToolClassifyBurden, ClassifyBurdenResult{
		Level:    result.Level,
		Label:    locale.New(s.lang(params.Lang)).Level(result.Level),
		MinScore: result.MinScore,
		MaxScore: result.MaxScore,
	})
}

func (s *Server) handleWorkPeriod(ctx context.Context, req *mcp.CallToolRequest, params WorkPeriodParams) (*mcp.CallToolResult, any, error) {
	job := domain.JobHistory{
		StartDate:          domain.ParseDate(params.StartDate),
		EndDate:            domain.ParseDate(params.EndDate),
		WorkPeriodOverride: params.WorkPeriodOverride,
	}
	period := job.BurdenJob().Period()

	return s.jsonResult(ToolCalculateWorkPeriod, WorkPeriodResult{
		Years:     period.Years(),
		Source:    string(period.Source()),
		Label:     locale.New(s.lang(params.Lang)).JobPeriod(job),
		Formatted: burden.FormatWorkPeriod(job.StartDate.Time, job.EndDate.Time),
	})
}

func (s *Server) handleRelatedness(ctx context.Context, req *mcp.CallToolRequest, params RelatednessParams) (*mcp.CallToolResult, any, error) {
	birth := domain.ParseDate(params.BirthDate)
	injury := domain.ParseDate(params.InjuryDate)

	age := params.Age
	if !birth.IsZero() && !injury.IsZero() {
		age = burden.AgeAt(birth.Time, injury.Time)
	}

	jobs := make([]burden.Job, 0, len(params.Jobs))
	for _, j := range params.Jobs {
		jobs = append(jobs, domain.JobHistory{
			StartDate:          domain.ParseDate(j.StartDate),
			EndDate:            domain.ParseDate(j.EndDate),
			WorkPeriodOverride: j.WorkPeriodOverride,
			Weight:             domain.Quantity(j.WeightGrams),
			Squatting:          domain.Quantity(j.SquattingMinutes),
		}.BurdenJob())
	}

	rel := burden.Relatedness(jobs, age)
	verdict := burden.CumulativeVerdict(rel)

	return s.jsonResult(ToolCalculateRelatedness, RelatednessResult{
		AgeYears:    age,
		Relatedness: rel,
		Display: burden.Range{
			Min: burden.Round1(rel.Min),
			Max: burden.Round1(rel.Max),
		},
		Midpoint:     rel.Midpoint(),
		Verdict:      verdict,
		VerdictLabel: locale.New(s.lang(params.Lang)).Verdict(verdict),
	})
}

func (s *Server) handleEvaluatePatient(ctx context.Context, req *mcp.CallToolRequest, params EvaluatePatientParams) (*mcp.CallToolResult, any, error) {
	record, err := decodeRecord(params.Record)
	if err != nil {
		return s.errorResult(ToolEvaluatePatient, err)
	}

	eval, err := s.services.Evaluator.Evaluate(ctx, record)
	if err != nil {
		return s.errorResult(ToolEvaluatePatient, err)
	}
	return s.jsonResult(ToolEvaluatePatient, eval)
}

func (s *Server) handleSearchPresets(ctx context.Context, req *mcp.CallToolRequest, params SearchPresetsParams) (*mcp.CallToolResult, any, error) {
	presets := s.services.Presets.Search(params.Query)
	if presets == nil {
		presets = []domain.Preset{}
	}
	return s.jsonResult(ToolSearchJobPresets, SearchPresetsResult{
		Presets: presets,
		Meta:    s.services.Presets.Meta(),
	})
}

func (s *Server) handleGenerateReport(ctx context.Context, req *mcp.CallToolRequest, params GenerateReportParams) (*mcp.CallToolResult, any, error) {
	record, err := decodeRecord(params.Record)
	if err != nil {
		return s.errorResult(ToolGenerateReport, err)
	}
	lang := s.lang(params.Lang)

	switch params.Format {
	case "", "text":
		text, err := s.services.Reports.Generate(ctx, record, lang)
		if err != nil {
			return s.errorResult(ToolGenerateReport, err)
		}
		return s.textResult(ToolGenerateReport, text)
	case "emr":
		report, err := s.services.Reports.GenerateEMR(ctx, record, lang)
		if err != nil {
			return s.errorResult(ToolGenerateReport, err)
		}
		return s.jsonResult(ToolGenerateReport, report)
	default:
		return s.errorResult(ToolGenerateReport, domain.NewValidationError("format", "must be one of text, emr", params.Format))
	}
}

// decodeRecord converts the loosely typed tool argument into a record,
// applying the same lenient decoding as the HTTP API.
func decodeRecord(raw map[string]any) (*domain.PatientRecord, error) {
	if raw == nil {
		return nil, domain.NewValidationError("record", "is required", nil)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, domain.NewValidationError("record", err.Error(), nil)
	}
	var record domain.PatientRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, domain.NewValidationError("record", err.Error(), nil)
	}
	return &record, nil
}

func (s *Server) textResult(tool, text string) (*mcp.CallToolResult, any, error) {
	metrics.RequestsTotal.WithLabelValues("mcp", tool, "ok").Inc()
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func (s *Server) jsonResult(tool string, v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.errorResult(tool, fmt.Errorf("failed to encode result: %w", err))
	}
	return s.textResult(tool, string(data))
}

// errorResult reports err inside the tool result so the calling model can
// read it and correct its arguments.
func (s *Server) errorResult(tool string, err error) (*mcp.CallToolResult, any, error) {
	body := ToolError{
		ServiceError: domain.NewServiceError(domain.ErrInternalServer, "Internal server error", "", ""),
	}

	var ves domain.ValidationErrors
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ves):
		body.Code, body.Message, body.Fields = domain.ErrValidation, "Record is incomplete", ves
	case errors.As(err, &ve):
		body.Code, body.Message, body.Fields = domain.ErrInvalidInput, ve.Message, []*domain.ValidationError{ve}
	case errors.Is(err, domain.ErrNotFound):
		body.Code, body.Message = domain.ErrResourceNotFound, "Resource not found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		body.Code, body.Message = domain.ErrTimeout, "Request timed out"
	default:
		s.logger.WithError(err).WithField("tool", tool).Error("Tool call failed")
	}

	s.logger.WithFields(logrus.Fields{
		"tool": tool,
		"code": body.Code,
	}).Debug("Tool call rejected")
	metrics.RequestsTotal.WithLabelValues("mcp", tool, "error").Inc()

	data, _ := json.MarshalIndent(body, "", "  ")
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}
