package service

import (
	"fmt"
	"strings"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
)

// ValidateRecord checks that a record is complete enough for a report:
// name, birth date and injury date present, at least one diagnosis with
// both code and name, and at least one named job. Categorical fields that
// are filled in must hold known values. It returns domain.ValidationErrors
// or nil. Messages are rendered with tr, or in English when tr is nil.
func ValidateRecord(record *domain.PatientRecord, tr *locale.Translator) error {
	if tr == nil {
		tr = locale.New(locale.English)
	}
	required := tr.T("validation.required", nil)

	if record == nil {
		return domain.ValidationErrors{domain.NewValidationError("record", required, nil)}
	}

	var errs domain.ValidationErrors

	if strings.TrimSpace(record.Name) == "" {
		errs = append(errs, domain.NewValidationError("name", required, record.Name))
	}
	if record.BirthDate.IsZero() {
		errs = append(errs, domain.NewValidationError("birth_date", required, nil))
	}
	if record.InjuryDate.IsZero() {
		errs = append(errs, domain.NewValidationError("injury_date", required, nil))
	}

	hasDiagnosis := false
	for i, d := range record.Diagnoses {
		if d.IsComplete() {
			hasDiagnosis = true
		}
		errs = append(errs, validateDiagnosis(i, d)...)
	}
	if !hasDiagnosis {
		errs = append(errs, domain.NewValidationError("diagnoses", tr.T("validation.diagnosis_required", nil), nil))
	}

	hasJob := false
	for _, j := range record.Jobs {
		if strings.TrimSpace(j.JobName) != "" {
			hasJob = true
			break
		}
	}
	if !hasJob {
		errs = append(errs, domain.NewValidationError("jobs", tr.T("validation.job_required", nil), nil))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateDiagnosis(i int, d domain.Diagnosis) domain.ValidationErrors {
	var errs domain.ValidationErrors
	field := func(name string) string { return fmt.Sprintf("diagnoses[%d].%s", i, name) }

	if d.Side != "" && !d.Side.IsValid() {
		errs = append(errs, domain.NewValidationError(field("side"), domain.ErrInvalidSide.Error(), d.Side))
	}
	for name, s := range map[string]domain.DiagnosisStatus{"confirmed_right": d.ConfirmedRight, "confirmed_left": d.ConfirmedLeft} {
		if s != "" && !s.IsValid() {
			errs = append(errs, domain.NewValidationError(field(name), domain.ErrInvalidStatus.Error(), s))
		}
	}
	for name, g := range map[string]domain.KLGrade{"klg_right": d.KLGRight, "klg_left": d.KLGLeft} {
		if g != "" && !g.IsValid() {
			errs = append(errs, domain.NewValidationError(field(name), domain.ErrInvalidKLGrade.Error(), g))
		}
	}
	for name, r := range map[string]domain.LowRelatednessReason{"reason_right": d.ReasonRight, "reason_left": d.ReasonLeft} {
		if r != "" && !r.IsValid() {
			errs = append(errs, domain.NewValidationError(field(name), domain.ErrInvalidReason.Error(), r))
		}
	}
	return errs
}
