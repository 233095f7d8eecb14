package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

// sampleRecord is a 40-year-old with ten years of high-burden work, which
// yields 83.3% ~ 88.9% and a sufficient cumulative burden.
func sampleRecord() *domain.PatientRecord {
	return &domain.PatientRecord{
		Name:           "Hong Gildong",
		Gender:         domain.GenderMale,
		HeightCM:       175,
		WeightKG:       70,
		BirthDate:      domain.NewDate(1980, time.March, 1),
		InjuryDate:     domain.NewDate(2020, time.June, 1),
		HospitalName:   "Seoul Clinic",
		Department:     "Occupational Medicine",
		DoctorName:     "Dr. Kim",
		EvaluationDate: domain.NewDate(2020, time.September, 15),
		Diagnoses: []domain.Diagnosis{{
			Code:            "M17.1",
			Name:            "Primary gonarthrosis",
			Side:            domain.SideBoth,
			ConfirmedCode:   "M17.0",
			ConfirmedName:   "Bilateral primary gonarthrosis",
			ConfirmedRight:  domain.StatusConfirmed,
			ConfirmedLeft:   domain.StatusMild,
			AssessmentRight: domain.AssessmentHigh,
			AssessmentLeft:  domain.AssessmentLow,
			ReasonLeft:      domain.ReasonOther,
			ReasonLeftOther: "prior injury",
			KLGRight:        domain.KLGrade3,
			KLGLeft:         domain.KLGrade2,
		}},
		Jobs: []domain.JobHistory{{
			JobName:            "Construction worker",
			WorkPeriodOverride: "10년",
			Weight:             3000,
			Squatting:          180,
			Stairs:             true,
			KneeTwist:          true,
		}},
		ReturnConsiderations: "Avoid prolonged squatting.",
	}
}

func newTestEvaluator(cfg domain.EvaluationConfig) *EvaluationService {
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	return NewEvaluationService(logging.Discard(), cfg)
}

func TestEvaluationService_Evaluate(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{})
	fixed := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	eval, err := s.Evaluate(context.Background(), sampleRecord())
	require.NoError(t, err)

	assert.NotEmpty(t, eval.ID)
	assert.Equal(t, fixed, eval.EvaluatedAt)
	assert.Equal(t, "Hong Gildong", eval.PatientName)
	assert.Equal(t, 40, eval.AgeYears)
	assert.Equal(t, 22.9, eval.BMI)

	require.Len(t, eval.Jobs, 1)
	job := eval.Jobs[0]
	assert.Equal(t, burden.High, job.Burden.Level)
	assert.Equal(t, 10.0, job.PeriodYears)
	assert.Equal(t, string(burden.SourceOverridden), job.PeriodSource)
	assert.Equal(t, "10 years 0 months", job.PeriodLabel)
	assert.Equal(t, []domain.AuxiliaryFactor{domain.FactorStairs, domain.FactorKneeTwist}, job.AuxiliaryFactors)

	assert.InDelta(t, 50.0/60.0*100, eval.Relatedness.Min, 1e-9)
	assert.InDelta(t, 80.0/90.0*100, eval.Relatedness.Max, 1e-9)
	assert.Equal(t, burden.Range{Min: 83.3, Max: 88.9}, eval.RelatednessDisplay)
	assert.InDelta(t, eval.Relatedness.Midpoint(), eval.Midpoint, 1e-12)
	assert.Equal(t, burden.Sufficient, eval.Verdict)
}

func TestEvaluationService_EvaluatePartialRecord(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{})

	eval, err := s.Evaluate(context.Background(), &domain.PatientRecord{
		Jobs: []domain.JobHistory{{JobName: "Clerk"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, eval.AgeYears)
	assert.Equal(t, 0.0, eval.BMI)
	assert.True(t, eval.Relatedness.IsZero())
	assert.Equal(t, burden.Insufficient, eval.Verdict)
	require.Len(t, eval.Jobs, 1)
	assert.Equal(t, burden.Low, eval.Jobs[0].Burden.Level)
	assert.Equal(t, "-", eval.Jobs[0].PeriodLabel)
}

func TestEvaluationService_EvaluateUsesDates(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{Locale: "ko"})
	rec := sampleRecord()
	rec.Jobs[0].WorkPeriodOverride = ""
	rec.Jobs[0].StartDate = domain.NewDate(2010, time.January, 1)
	rec.Jobs[0].EndDate = domain.NewDate(2015, time.July, 1)

	eval, err := s.Evaluate(context.Background(), rec)
	require.NoError(t, err)

	job := eval.Jobs[0]
	assert.Equal(t, string(burden.SourceComputed), job.PeriodSource)
	assert.InDelta(t, 5.5, job.PeriodYears, 0.01)
	assert.Equal(t, "5년 6개월", job.PeriodLabel)
}

func TestEvaluationService_EvaluateErrors(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{})

	_, err := s.Evaluate(context.Background(), nil)
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Evaluate(ctx, sampleRecord())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluationService_EvaluateBatchPreservesOrder(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{MaxParallelism: 3})

	records := make([]*domain.PatientRecord, 20)
	for i := range records {
		rec := sampleRecord()
		rec.Name = fmt.Sprintf("patient-%02d", i)
		if i%2 == 1 {
			rec.Jobs[0].Weight = 0
			rec.Jobs[0].Squatting = 0
		}
		records[i] = rec
	}

	evals, err := s.EvaluateBatch(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, evals, len(records))

	for i, eval := range evals {
		assert.Equal(t, fmt.Sprintf("patient-%02d", i), eval.PatientName)
		if i%2 == 1 {
			assert.Equal(t, burden.Low, eval.Jobs[0].Burden.Level)
			assert.Equal(t, burden.Insufficient, eval.Verdict)
		} else {
			assert.Equal(t, burden.Sufficient, eval.Verdict)
		}
	}
}

func TestEvaluationService_EvaluateBatchErrors(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{MaxBatchSize: 2})

	_, err := s.EvaluateBatch(context.Background(), []*domain.PatientRecord{sampleRecord(), sampleRecord(), sampleRecord()})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "records", ve.Field)

	_, err = s.EvaluateBatch(context.Background(), []*domain.PatientRecord{sampleRecord(), nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.EvaluateBatch(ctx, []*domain.PatientRecord{sampleRecord()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluationService_EvaluateBatchEmpty(t *testing.T) {
	s := newTestEvaluator(domain.EvaluationConfig{})

	evals, err := s.EvaluateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, evals)
}
