package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
)

func TestValidateRecord_Complete(t *testing.T) {
	assert.NoError(t, ValidateRecord(sampleRecord(), nil))
}

func TestValidateRecord_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.PatientRecord)
		fields []string
	}{
		{
			name:   "blank name",
			mutate: func(r *domain.PatientRecord) { r.Name = "  " },
			fields: []string{"name"},
		},
		{
			name: "missing dates",
			mutate: func(r *domain.PatientRecord) {
				r.BirthDate = domain.Date{}
				r.InjuryDate = domain.Date{}
			},
			fields: []string{"birth_date", "injury_date"},
		},
		{
			name:   "diagnosis without name",
			mutate: func(r *domain.PatientRecord) { r.Diagnoses[0].Name = "" },
			fields: []string{"diagnoses"},
		},
		{
			name:   "no jobs",
			mutate: func(r *domain.PatientRecord) { r.Jobs = nil },
			fields: []string{"jobs"},
		},
		{
			name:   "unnamed job",
			mutate: func(r *domain.PatientRecord) { r.Jobs[0].JobName = "" },
			fields: []string{"jobs"},
		},
		{
			name:   "unknown side",
			mutate: func(r *domain.PatientRecord) { r.Diagnoses[0].Side = "middle" },
			fields: []string{"diagnoses[0].side"},
		},
		{
			name:   "unknown grade",
			mutate: func(r *domain.PatientRecord) { r.Diagnoses[0].KLGLeft = "7" },
			fields: []string{"diagnoses[0].klg_left"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord()
			tt.mutate(rec)

			err := ValidateRecord(rec, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrIncompleteInput))

			var ve domain.ValidationErrors
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.fields, ve.Fields())
		})
	}
}

func TestValidateRecord_Empty(t *testing.T) {
	err := ValidateRecord(&domain.PatientRecord{}, nil)

	var ve domain.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"name", "birth_date", "injury_date", "diagnoses", "jobs"}, ve.Fields())
	assert.Equal(t, "is required", ve[0].Message)

	err = ValidateRecord(nil, nil)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"record"}, ve.Fields())
}

func TestValidateRecord_LocalisedMessages(t *testing.T) {
	err := ValidateRecord(&domain.PatientRecord{}, locale.New(locale.Korean))

	var ve domain.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.NotEqual(t, "is required", ve[0].Message)
	assert.NotEqual(t, "validation.required", ve[0].Message)
}
