package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
	"github.com/wr-burden-mcp-server/internal/metrics"
)

const signatureRuleWidth = 50

// EMRSection is one labelled cell of the EMR opinion form.
type EMRSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// EMRReport is the opinion laid out as the sections of the EMR form.
type EMRReport struct {
	Title    string       `json:"title"`
	Sections []EMRSection `json:"sections"`
}

// ReportService renders opinions for complete patient records.
type ReportService struct {
	logger      *logrus.Logger
	evaluator   *EvaluationService
	defaultLang string
}

// NewReportService creates a new report service
func NewReportService(logger *logrus.Logger, evaluator *EvaluationService, defaultLang string) *ReportService {
	return &ReportService{
		logger:      logger,
		evaluator:   evaluator,
		defaultLang: locale.Normalize(defaultLang),
	}
}

func (s *ReportService) prepare(ctx context.Context, record *domain.PatientRecord, lang string) (*locale.Translator, *domain.Evaluation, error) {
	if lang == "" {
		lang = s.defaultLang
	}
	tr := locale.New(lang)

	if err := ValidateRecord(record, tr); err != nil {
		return nil, nil, err
	}
	eval, err := s.evaluator.Evaluate(ctx, record)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate record: %w", err)
	}
	return tr, eval, nil
}

func (s *ReportService) done(format string, tr *locale.Translator, eval *domain.Evaluation, start time.Time) {
	metrics.ReportsGenerated.WithLabelValues(format, tr.Lang()).Inc()
	s.logger.WithFields(logrus.Fields{
		"evaluation_id": eval.ID,
		"format":        format,
		"lang":          tr.Lang(),
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("Opinion report generated")
}

// Generate renders the plain-text work-relatedness opinion for record in
// lang. Incomplete records are rejected with domain.ValidationErrors.
func (s *ReportService) Generate(ctx context.Context, record *domain.PatientRecord, lang string) (string, error) {
	start := time.Now()

	tr, eval, err := s.prepare(ctx, record, lang)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	line := func(id string, data map[string]interface{}) {
		b.WriteString(tr.T(id, data))
		b.WriteByte('\n')
	}

	line("report.title", nil)
	b.WriteByte('\n')
	line("report.name", map[string]interface{}{"Name": record.Name, "Gender": tr.Gender(record.Gender)})
	line("report.body", map[string]interface{}{
		"Height": record.HeightCM.String(),
		"Weight": record.WeightKG.String(),
		"BMI":    formatBMI(eval.BMI),
	})
	line("report.birth_date", map[string]interface{}{"Date": orPlaceholder(record.BirthDate.String())})
	line("report.injury_date", map[string]interface{}{"Date": orPlaceholder(record.InjuryDate.String()), "Age": eval.AgeYears})
	b.WriteByte('\n')

	line("report.section.diagnoses", nil)
	for i, d := range record.Diagnoses {
		if d.IsEntered() {
			line("report.diagnosis_line", map[string]interface{}{
				"Index": i + 1, "Code": d.Code, "Name": d.Name, "Side": tr.Side(d.Side),
			})
		}
	}

	b.WriteByte('\n')
	line("report.section.notes", nil)
	b.WriteString(orPlaceholder(record.SpecialNotes))
	b.WriteString("\n\n")

	line("report.section.jobs", nil)
	for i, j := range record.Jobs {
		je := eval.Jobs[i]
		line("report.job_line", map[string]interface{}{
			"Index":     i + 1,
			"Job":       orPlaceholder(j.JobName),
			"Period":    tr.JobPeriod(j),
			"Weight":    j.Weight.String(),
			"Squatting": j.Squatting.String(),
			"Level":     tr.Level(je.Burden.Level),
		})
		if len(je.AuxiliaryFactors) > 0 {
			line("report.aux", map[string]interface{}{"Factors": tr.Factors(je.AuxiliaryFactors)})
		}
	}

	b.WriteByte('\n')
	line("report.relatedness", map[string]interface{}{
		"Min": formatPercent(eval.RelatednessDisplay.Min),
		"Max": formatPercent(eval.RelatednessDisplay.Max),
	})
	line("report.cumulative", map[string]interface{}{"Verdict": tr.Verdict(eval.Verdict)})
	b.WriteByte('\n')

	line("report.section.summary", nil)
	for i, d := range record.Diagnoses {
		if !d.IsEntered() {
			continue
		}
		b.WriteByte('\n')
		line("report.diagnosis_heading", map[string]interface{}{"Index": i + 1, "Code": d.Code, "Name": d.Name})
		for _, sf := range sideFindings(d) {
			b.WriteString(tr.T("report.side_line", sf.templateData(tr)))
			if sf.assessment == domain.AssessmentLow {
				b.WriteString(tr.T("report.low_reason", map[string]interface{}{"Reason": tr.Reason(sf.reason, sf.reasonOther)}))
			}
			b.WriteByte('\n')
		}
	}

	if record.ReturnConsiderations != "" {
		b.WriteByte('\n')
		line("report.section.return", nil)
		b.WriteString(record.ReturnConsiderations)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(strings.Repeat("─", signatureRuleWidth))
	b.WriteByte('\n')
	b.WriteString(record.EvaluationDate.String())
	b.WriteByte('\n')
	b.WriteString(record.HospitalName + " " + record.Department)
	b.WriteByte('\n')
	b.WriteString(tr.T("report.doctor", map[string]interface{}{"Doctor": record.DoctorName}))

	s.done("text", tr, eval, start)
	return b.String(), nil
}

// GenerateEMR renders the opinion as the sections of the EMR form:
// confirmed diagnoses, occupational factors, personal factors, overall
// opinion and return-to-work considerations.
func (s *ReportService) GenerateEMR(ctx context.Context, record *domain.PatientRecord, lang string) (*EMRReport, error) {
	start := time.Now()

	tr, eval, err := s.prepare(ctx, record, lang)
	if err != nil {
		return nil, err
	}

	report := &EMRReport{
		Title: tr.T("emr.title", nil),
		Sections: []EMRSection{
			{Heading: tr.T("emr.confirmed", nil), Body: emrConfirmed(tr, record)},
			{Heading: tr.T("emr.occupational", nil), Body: emrOccupational(tr, record, eval)},
			{Heading: tr.T("emr.personal", nil), Body: emrPersonal(tr, record, eval)},
			{Heading: tr.T("emr.summary", nil), Body: emrSummary(tr, record, eval)},
			{Heading: tr.T("emr.return", nil), Body: record.ReturnConsiderations},
		},
	}

	s.done("emr", tr, eval, start)
	return report, nil
}

func emrConfirmed(tr *locale.Translator, record *domain.PatientRecord) string {
	var blocks []string
	for _, d := range record.Diagnoses {
		if d.ConfirmedCode == "" && d.ConfirmedName == "" {
			continue
		}
		block := strings.TrimSpace(d.ConfirmedCode + " " + d.ConfirmedName)
		for _, sf := range sideFindings(d) {
			block += "\n" + tr.T("emr.side_detail", sf.templateData(tr))
			if sf.assessment == domain.AssessmentLow {
				block += tr.T("emr.low_reason", map[string]interface{}{"Reason": tr.Reason(sf.reason, sf.reasonOther)})
			}
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func emrOccupational(tr *locale.Translator, record *domain.PatientRecord, eval *domain.Evaluation) string {
	var jobLines []string
	for i, j := range record.Jobs {
		if j.JobName == "" {
			continue
		}
		je := eval.Jobs[i]
		l := tr.T("emr.job_line", map[string]interface{}{
			"Job":       j.JobName,
			"Period":    tr.JobPeriod(j),
			"Weight":    j.Weight.String(),
			"Squatting": j.Squatting.String(),
			"Level":     tr.Level(je.Burden.Level),
		})
		if len(je.AuxiliaryFactors) > 0 {
			l += "\n" + tr.T("report.aux", map[string]interface{}{"Factors": tr.Factors(je.AuxiliaryFactors)})
		}
		jobLines = append(jobLines, l)
	}

	mean := (eval.RelatednessDisplay.Min + eval.RelatednessDisplay.Max) / 2
	return tr.T("report.section.jobs", nil) + "\n" + strings.Join(jobLines, "\n") + "\n\n" +
		tr.T("emr.relatedness", map[string]interface{}{
			"Min":  formatPercent(eval.RelatednessDisplay.Min),
			"Max":  formatPercent(eval.RelatednessDisplay.Max),
			"Mean": formatPercent(mean),
		}) + "\n\n" +
		tr.T("emr.cumulative", map[string]interface{}{"Verdict": tr.Verdict(eval.Verdict)})
}

func emrPersonal(tr *locale.Translator, record *domain.PatientRecord, eval *domain.Evaluation) string {
	age := locale.Placeholder
	if eval.AgeYears > 0 {
		age = strconv.Itoa(eval.AgeYears)
	}
	notes := record.SpecialNotes
	if notes == "" {
		notes = tr.T("emr.no_notes", nil)
	}
	return tr.T("emr.personal_body", map[string]interface{}{
		"Height": record.HeightCM.String(),
		"Weight": record.WeightKG.String(),
		"BMI":    formatBMI(eval.BMI),
		"Age":    age,
		"Notes":  notes,
	})
}

func emrSummary(tr *locale.Translator, record *domain.PatientRecord, eval *domain.Evaluation) string {
	var blocks []string
	n := 0
	for _, d := range record.Diagnoses {
		if !d.IsEntered() {
			continue
		}
		n++
		block := tr.T("emr.diagnosis_summary", map[string]interface{}{
			"Index": n, "Code": d.Code, "Name": d.Name, "Side": tr.Side(d.Side),
		})
		for _, sf := range sideFindings(d) {
			block += "\n" + tr.T("emr.side_summary", sf.templateData(tr))
			if sf.assessment == domain.AssessmentLow {
				block += tr.T("emr.low_reason", map[string]interface{}{"Reason": tr.Reason(sf.reason, sf.reasonOther)})
			}
		}
		blocks = append(blocks, block)
	}

	return tr.T("emr.summary_header", nil) + "\n" + strings.Join(blocks, "\n\n") + "\n\n" +
		tr.T("emr.conclusion", map[string]interface{}{
			"Min":     formatPercent(eval.RelatednessDisplay.Min),
			"Max":     formatPercent(eval.RelatednessDisplay.Max),
			"Verdict": tr.Verdict(eval.Verdict),
		})
}

// sideFinding is the examining physician's finding for one affected side.
type sideFinding struct {
	side        domain.Side
	status      domain.DiagnosisStatus
	assessment  domain.AssessmentLevel
	reason      domain.LowRelatednessReason
	reasonOther string
}

func (sf sideFinding) templateData(tr *locale.Translator) map[string]interface{} {
	return map[string]interface{}{
		"Side":       tr.Side(sf.side),
		"Status":     tr.Status(sf.status),
		"Assessment": tr.Assessment(sf.assessment),
	}
}

// sideFindings lists the right then the left finding, for the sides the
// diagnosis covers.
func sideFindings(d domain.Diagnosis) []sideFinding {
	var out []sideFinding
	if d.Side.IncludesRight() {
		out = append(out, sideFinding{domain.SideRight, d.ConfirmedRight, d.AssessmentRight, d.ReasonRight, d.ReasonRightOther})
	}
	if d.Side.IncludesLeft() {
		out = append(out, sideFinding{domain.SideLeft, d.ConfirmedLeft, d.AssessmentLeft, d.ReasonLeft, d.ReasonLeftOther})
	}
	return out
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatBMI(v float64) string {
	if v == 0 {
		return locale.Placeholder
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return locale.Placeholder
	}
	return s
}
