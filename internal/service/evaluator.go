package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/metrics"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

// EvaluationService derives evaluations from patient records. It holds no
// per-record state, so one instance serves any number of goroutines.
type EvaluationService struct {
	logger         *logrus.Logger
	translator     *locale.Translator
	maxParallelism int
	maxBatchSize   int
	now            func() time.Time
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(logger *logrus.Logger, cfg domain.EvaluationConfig) *EvaluationService {
	if cfg.MaxParallelism <= 0 {
		cfg.MaxParallelism = 4
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 500
	}
	return &EvaluationService{
		logger:         logger,
		translator:     locale.New(cfg.Locale),
		maxParallelism: cfg.MaxParallelism,
		maxBatchSize:   cfg.MaxBatchSize,
		now:            time.Now,
	}
}

// Evaluate computes age, BMI, per-job burden and period, the
// work-relatedness range and the cumulative verdict for record. Partial
// records are accepted; missing values contribute zero.
func (s *EvaluationService) Evaluate(ctx context.Context, record *domain.PatientRecord) (*domain.Evaluation, error) {
	if record == nil {
		return nil, domain.NewValidationError("record", "is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.WithLabelValues("evaluate").Observe(time.Since(start).Seconds())
	}()

	age := record.Age()
	jobs := record.BurdenJobs()

	jobEvals := make([]domain.JobEvaluation, 0, len(jobs))
	for i, bj := range jobs {
		history := record.Jobs[i]
		result := burden.ClassifyJob(bj)
		period := bj.Period()

		jobEvals = append(jobEvals, domain.JobEvaluation{
			JobName:          history.JobName,
			WeightGrams:      bj.LoadWeightGrams,
			SquattingMinutes: bj.SquattingMinutesPerDay,
			Burden:           result,
			PeriodYears:      period.Years(),
			PeriodSource:     string(period.Source()),
			PeriodLabel:      s.translator.JobPeriod(history),
			AuxiliaryFactors: history.AuxiliaryFactors(),
		})
		metrics.JobsClassified.WithLabelValues(result.Level.String()).Inc()
	}

	rel := burden.Relatedness(jobs, age)
	verdict := burden.CumulativeVerdict(rel)
	metrics.EvaluationsTotal.WithLabelValues(verdict.String()).Inc()

	eval := &domain.Evaluation{
		ID:          uuid.New().String(),
		EvaluatedAt: s.now().UTC(),
		PatientName: record.Name,
		AgeYears:    age,
		BMI:         burden.BMI(record.HeightCM.Float64(), record.WeightKG.Float64()),
		Jobs:        jobEvals,
		Relatedness: rel,
		RelatednessDisplay: burden.Range{
			Min: burden.Round1(rel.Min),
			Max: burden.Round1(rel.Max),
		},
		Midpoint: rel.Midpoint(),
		Verdict:  verdict,
	}

	logging.LogOperation(s.logger, logging.OperationEvaluation, "evaluate", start, nil, logrus.Fields{
		"evaluation_id": eval.ID,
		"jobs":          len(jobEvals),
		"verdict":       verdict,
	})

	return eval, nil
}

// EvaluateBatch evaluates records concurrently with bounded parallelism.
// Results keep the input order. The first failure cancels the remaining
// work and is returned with the index of the offending record.
func (s *EvaluationService) EvaluateBatch(ctx context.Context, records []*domain.PatientRecord) ([]*domain.Evaluation, error) {
	if len(records) > s.maxBatchSize {
		return nil, domain.NewValidationError("records",
			fmt.Sprintf("batch of %d exceeds the maximum of %d", len(records), s.maxBatchSize), len(records))
	}

	start := time.Now()
	results := make([]*domain.Evaluation, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallelism)

	for i, rec := range records {
		g.Go(func() error {
			metrics.BatchInFlight.Inc()
			defer metrics.BatchInFlight.Dec()

			eval, err := s.Evaluate(gctx, rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			results[i] = eval
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("records", len(records)).Warn("Batch evaluation failed")
		return nil, err
	}

	metrics.EvaluationDuration.WithLabelValues("evaluate_batch").Observe(time.Since(start).Seconds())
	s.logger.WithFields(logrus.Fields{
		"records":     len(records),
		"parallelism": s.maxParallelism,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Batch evaluation completed")

	return results, nil
}
