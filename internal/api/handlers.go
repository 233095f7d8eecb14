package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
	"github.com/wr-burden-mcp-server/internal/middleware"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	*domain.ServiceError
	Fields []*domain.ValidationError `json:"fields,omitempty"`
}

// ClassifyRequest is the body of POST /burden/classify.
type ClassifyRequest struct {
	Weight    domain.Quantity `json:"weight"`
	Squatting domain.Quantity `json:"squatting"`
}

// ClassifyResponse carries the burden of one job.
type ClassifyResponse struct {
	burden.Result
	Label string `json:"label"`
}

// WorkPeriodRequest is the body of POST /work-period.
type WorkPeriodRequest struct {
	StartDate          domain.Date `json:"start_date"`
	EndDate            domain.Date `json:"end_date"`
	WorkPeriodOverride string      `json:"work_period_override,omitempty"`
}

// WorkPeriodResponse carries the effective period of one job.
type WorkPeriodResponse struct {
	Years     float64 `json:"years"`
	Source    string  `json:"source"`
	Label     string  `json:"label"`
	Formatted string  `json:"formatted"`
}

// RelatednessRequest is the body of POST /relatedness. Age is used when
// the dates do not determine it.
type RelatednessRequest struct {
	Age        int                 `json:"age"`
	BirthDate  domain.Date         `json:"birth_date"`
	InjuryDate domain.Date         `json:"injury_date"`
	Jobs       []domain.JobHistory `json:"jobs"`
}

// RelatednessResponse carries the relatedness range and verdict.
type RelatednessResponse struct {
	AgeYears     int            `json:"age_years"`
	Relatedness  burden.Range   `json:"relatedness"`
	Display      burden.Range   `json:"display"`
	Midpoint     float64        `json:"midpoint"`
	Verdict      burden.Verdict `json:"verdict"`
	VerdictLabel string         `json:"verdict_label"`
}

// BatchRequest is the body of POST /evaluate/batch.
type BatchRequest struct {
	Records []*domain.PatientRecord `json:"records"`
}

func (s *Server) lang(c *gin.Context) string {
	if l := c.Query("lang"); l != "" {
		return locale.Normalize(l)
	}
	if l := c.GetHeader("Accept-Language"); l != "" {
		return locale.Normalize(l)
	}
	return locale.Normalize(s.configManager.GetConfig().Evaluation.Locale)
}

// respondError maps service errors onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString(middleware.CorrelationIDKey)

	var (
		status = http.StatusInternalServerError
		code   = domain.ErrInternalServer
		msg    = "Internal server error"
	)
	var fields []*domain.ValidationError

	var ves domain.ValidationErrors
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ves):
		status, code, msg, fields = http.StatusUnprocessableEntity, domain.ErrValidation, "Record is incomplete", ves
	case errors.As(err, &ve):
		status, code, msg, fields = http.StatusBadRequest, domain.ErrInvalidInput, ve.Message, []*domain.ValidationError{ve}
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = http.StatusNotFound, domain.ErrResourceNotFound, "Resource not found"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, msg = http.StatusGatewayTimeout, domain.ErrTimeout, "Request timed out"
	}

	entry := s.logger.WithError(err).WithField("correlation_id", requestID)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		ServiceError: domain.NewServiceError(code, msg, "", requestID),
		Fields:       fields,
	})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		ServiceError: domain.NewServiceError(domain.ErrInvalidInput, "Malformed request body", err.Error(), c.GetString(middleware.CorrelationIDKey)),
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   s.version,
	}
	if s.services.Presets != nil {
		meta := s.services.Presets.Meta()
		body["presets"] = meta
		if meta.LoadError != "" {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var record domain.PatientRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		s.badRequest(c, err)
		return
	}

	eval, err := s.services.Evaluator.Evaluate(c.Request.Context(), &record)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (s *Server) handleEvaluateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	evals, err := s.services.Evaluator.EvaluateBatch(c.Request.Context(), req.Records)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": evals, "count": len(evals)})
}

func (s *Server) handleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	result := burden.Classify(req.Weight.Float64(), req.Squatting.Float64())
	c.JSON(http.StatusOK, ClassifyResponse{
		Result: result,
		Label:  locale.New(s.lang(c)).Level(result.Level),
	})
}

func (s *Server) handleWorkPeriod(c *gin.Context) {
	var req WorkPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	job := domain.JobHistory{
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		WorkPeriodOverride: req.WorkPeriodOverride,
	}
	period := job.BurdenJob().Period()

	c.JSON(http.StatusOK, WorkPeriodResponse{
		Years:     period.Years(),
		Source:    string(period.Source()),
		Label:     locale.New(s.lang(c)).JobPeriod(job),
		Formatted: burden.FormatWorkPeriod(req.StartDate.Time, req.EndDate.Time),
	})
}

func (s *Server) handleRelatedness(c *gin.Context) {
	var req RelatednessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	age := req.Age
	if !req.BirthDate.IsZero() && !req.InjuryDate.IsZero() {
		age = burden.AgeAt(req.BirthDate.Time, req.InjuryDate.Time)
	}

	jobs := make([]burden.Job, 0, len(req.Jobs))
	for _, j := range req.Jobs {
		jobs = append(jobs, j.BurdenJob())
	}

	rel := burden.Relatedness(jobs, age)
	verdict := burden.CumulativeVerdict(rel)

	c.JSON(http.StatusOK, RelatednessResponse{
		AgeYears:    age,
		Relatedness: rel,
		Display: burden.Range{
			Min: burden.Round1(rel.Min),
			Max: burden.Round1(rel.Max),
		},
		Midpoint:     rel.Midpoint(),
		Verdict:      verdict,
		VerdictLabel: locale.New(s.lang(c)).Verdict(verdict),
	})
}

func (s *Server) handleReport(c *gin.Context) {
	var record domain.PatientRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		s.badRequest(c, err)
		return
	}
	lang := s.lang(c)

	switch format := c.DefaultQuery("format", "text"); format {
	case "emr":
		report, err := s.services.Reports.GenerateEMR(c.Request.Context(), &record, lang)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	case "text", "json":
		text, err := s.services.Reports.Generate(c.Request.Context(), &record, lang)
		if err != nil {
			s.respondError(c, err)
			return
		}
		if format == "json" {
			c.JSON(http.StatusOK, gin.H{"report": text, "lang": lang})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
	default:
		s.respondError(c, domain.NewValidationError("format", "must be one of text, json, emr", format))
	}
}

func (s *Server) handleSearchPresets(c *gin.Context) {
	presets := s.services.Presets.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"presets": presets,
		"meta":    s.services.Presets.Meta(),
	})
}

func (s *Server) handleGetPreset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		s.respondError(c, domain.NewValidationError("id", "must be an integer", c.Param("id")))
		return
	}

	preset, err := s.services.Presets.Get(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}
