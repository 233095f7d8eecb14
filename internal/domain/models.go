package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wr-burden-mcp-server/pkg/burden"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date. The zero value means the date is absent.
// Malformed input decodes to the zero value instead of failing, since
// records typically come from partially filled forms.
type Date struct {
	time.Time
}

// NewDate returns the date y-m-d at UTC midnight.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD" or an RFC 3339 timestamp. Anything else
// yields an absent date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return NewDate(y, m, d)
	}
	return Date{}
}

// String renders the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	*d = ParseDate(value.Value)
	return nil
}

// Quantity is a non-negative numeric form value. It decodes from JSON
// numbers or strings; invalid, negative or missing values become 0.
type Quantity float64

// Float64 returns q as a float64.
func (q Quantity) Float64() float64 { return float64(q) }

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*q = 0
			return nil
		}
		*q = Quantity(burden.CoerceNumber(s))
		return nil
	}
	*q = Quantity(burden.CoerceNumber(string(data)))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *Quantity) UnmarshalYAML(value *yaml.Node) error {
	*q = Quantity(burden.CoerceNumber(value.Value))
	return nil
}

// String formats q without trailing zeros, or "-" when zero.
func (q Quantity) String() string {
	if q == 0 {
		return "-"
	}
	return strconv.FormatFloat(float64(q), 'f', -1, 64)
}

// PatientRecord is one patient's evaluation form. It is treated as an
// immutable value: evaluators read it and never modify it.
type PatientRecord struct {
	Name                 string       `json:"name" yaml:"name"`
	Gender               Gender       `json:"gender,omitempty" yaml:"gender,omitempty"`
	HeightCM             Quantity     `json:"height,omitempty" yaml:"height,omitempty"`
	WeightKG             Quantity     `json:"weight,omitempty" yaml:"weight,omitempty"`
	BirthDate            Date         `json:"birth_date" yaml:"birth_date"`
	InjuryDate           Date         `json:"injury_date" yaml:"injury_date"`
	HospitalName         string       `json:"hospital_name,omitempty" yaml:"hospital_name,omitempty"`
	Department           string       `json:"department,omitempty" yaml:"department,omitempty"`
	DoctorName           string       `json:"doctor_name,omitempty" yaml:"doctor_name,omitempty"`
	EvaluationDate       Date         `json:"evaluation_date,omitempty" yaml:"evaluation_date,omitempty"`
	SpecialNotes         string       `json:"special_notes,omitempty" yaml:"special_notes,omitempty"`
	Diagnoses            []Diagnosis  `json:"diagnoses" yaml:"diagnoses"`
	Jobs                 []JobHistory `json:"jobs" yaml:"jobs"`
	ReturnConsiderations string       `json:"return_considerations,omitempty" yaml:"return_considerations,omitempty"`
}

// Diagnosis is a claimed condition together with the examining physician's
// per-side findings.
type Diagnosis struct {
	Code             string               `json:"code" yaml:"code"`
	Name             string               `json:"name" yaml:"name"`
	Side             Side                 `json:"side,omitempty" yaml:"side,omitempty"`
	ConfirmedCode    string               `json:"confirmed_code,omitempty" yaml:"confirmed_code,omitempty"`
	ConfirmedName    string               `json:"confirmed_name,omitempty" yaml:"confirmed_name,omitempty"`
	KLGRight         KLGrade              `json:"klg_right,omitempty" yaml:"klg_right,omitempty"`
	KLGLeft          KLGrade              `json:"klg_left,omitempty" yaml:"klg_left,omitempty"`
	ConfirmedRight   DiagnosisStatus      `json:"confirmed_right,omitempty" yaml:"confirmed_right,omitempty"`
	ConfirmedLeft    DiagnosisStatus      `json:"confirmed_left,omitempty" yaml:"confirmed_left,omitempty"`
	AssessmentRight  AssessmentLevel      `json:"assessment_right,omitempty" yaml:"assessment_right,omitempty"`
	AssessmentLeft   AssessmentLevel      `json:"assessment_left,omitempty" yaml:"assessment_left,omitempty"`
	ReasonRight      LowRelatednessReason `json:"reason_right,omitempty" yaml:"reason_right,omitempty"`
	ReasonRightOther string               `json:"reason_right_other,omitempty" yaml:"reason_right_other,omitempty"`
	ReasonLeft       LowRelatednessReason `json:"reason_left,omitempty" yaml:"reason_left,omitempty"`
	ReasonLeftOther  string               `json:"reason_left_other,omitempty" yaml:"reason_left_other,omitempty"`
}

// IsEntered reports whether the diagnosis carries a code or a name.
func (d Diagnosis) IsEntered() bool {
	return d.Code != "" || d.Name != ""
}

// IsComplete reports whether the diagnosis carries both a code and a name.
func (d Diagnosis) IsComplete() bool {
	return d.Code != "" && d.Name != ""
}

// JobHistory is one entry of the patient's occupational history.
type JobHistory struct {
	JobName            string   `json:"job_name" yaml:"job_name"`
	PresetID           *int     `json:"preset_id,omitempty" yaml:"preset_id,omitempty"`
	StartDate          Date     `json:"start_date" yaml:"start_date"`
	EndDate            Date     `json:"end_date" yaml:"end_date"`
	WorkPeriodOverride string   `json:"work_period_override,omitempty" yaml:"work_period_override,omitempty"`
	EvidenceSources    []string `json:"evidence_sources,omitempty" yaml:"evidence_sources,omitempty"`
	// Weight is the daily load handled, in grams.
	Weight Quantity `json:"weight" yaml:"weight"`
	// Squatting is the daily squatting time, in minutes.
	Squatting   Quantity `json:"squatting" yaml:"squatting"`
	Stairs      bool     `json:"stairs,omitempty" yaml:"stairs,omitempty"`
	KneeTwist   bool     `json:"knee_twist,omitempty" yaml:"knee_twist,omitempty"`
	StartStop   bool     `json:"start_stop,omitempty" yaml:"start_stop,omitempty"`
	TightSpace  bool     `json:"tight_space,omitempty" yaml:"tight_space,omitempty"`
	KneeContact bool     `json:"knee_contact,omitempty" yaml:"knee_contact,omitempty"`
	JumpDown    bool     `json:"jump_down,omitempty" yaml:"jump_down,omitempty"`
}

// BurdenJob converts the history entry into the scoring engine's job
// record. A parseable WorkPeriodOverride becomes the job's period.
func (j JobHistory) BurdenJob() burden.Job {
	bj := burden.Job{
		LoadWeightGrams:        j.Weight.Float64(),
		SquattingMinutesPerDay: j.Squatting.Float64(),
		Start:                  j.StartDate.Time,
		End:                    j.EndDate.Time,
	}
	if d, ok := burden.ParseOverride(j.WorkPeriodOverride); ok {
		bj.Override = &d
	}
	return bj
}

// AuxiliaryFactors returns the checked auxiliary activities in report order.
func (j JobHistory) AuxiliaryFactors() []AuxiliaryFactor {
	checked := map[AuxiliaryFactor]bool{
		FactorStairs:      j.Stairs,
		FactorKneeTwist:   j.KneeTwist,
		FactorStartStop:   j.StartStop,
		FactorTightSpace:  j.TightSpace,
		FactorKneeContact: j.KneeContact,
		FactorJumpDown:    j.JumpDown,
	}
	var out []AuxiliaryFactor
	for _, f := range AllAuxiliaryFactors {
		if checked[f] {
			out = append(out, f)
		}
	}
	return out
}

// ApplyPreset returns a copy of j with the preset's name and typical
// exposure values filled in.
func (j JobHistory) ApplyPreset(p Preset) JobHistory {
	id := p.ID
	j.PresetID = &id
	j.JobName = p.JobName
	j.Weight = Quantity(p.Weight)
	j.Squatting = Quantity(p.Squatting)
	return j
}

// BurdenJobs converts every job of the record.
func (p *PatientRecord) BurdenJobs() []burden.Job {
	jobs := make([]burden.Job, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		jobs = append(jobs, j.BurdenJob())
	}
	return jobs
}

// Age returns the patient's age on the injury date.
func (p *PatientRecord) Age() int {
	return burden.AgeAt(p.BirthDate.Time, p.InjuryDate.Time)
}

// JobEvaluation is the per-job part of an Evaluation.
type JobEvaluation struct {
	JobName          string            `json:"job_name"`
	WeightGrams      float64           `json:"weight_grams"`
	SquattingMinutes float64           `json:"squatting_minutes"`
	Burden           burden.Result     `json:"burden"`
	PeriodYears      float64           `json:"period_years"`
	PeriodSource     string            `json:"period_source"`
	PeriodLabel      string            `json:"period_label"`
	AuxiliaryFactors []AuxiliaryFactor `json:"auxiliary_factors,omitempty"`
}

// Evaluation is the full derived assessment of a PatientRecord.
// Relatedness holds full-precision percentages; RelatednessDisplay holds
// the same values rounded to one decimal.
type Evaluation struct {
	ID                 string          `json:"id"`
	EvaluatedAt        time.Time       `json:"evaluated_at"`
	PatientName        string          `json:"patient_name"`
	AgeYears           int             `json:"age_years"`
	BMI                float64         `json:"bmi"`
	Jobs               []JobEvaluation `json:"jobs"`
	Relatedness        burden.Range    `json:"relatedness"`
	RelatednessDisplay burden.Range    `json:"relatedness_display"`
	Midpoint           float64         `json:"midpoint"`
	Verdict            burden.Verdict  `json:"verdict"`
}

// Preset is a catalogued job profile with typical exposure values.
type Preset struct {
	ID        int     `json:"id" yaml:"id"`
	JobName   string  `json:"jobName" yaml:"job_name"`
	Category  string  `json:"category" yaml:"category"`
	Weight    float64 `json:"weight" yaml:"weight"`
	Squatting float64 `json:"squatting" yaml:"squatting"`
	Source    string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// CatalogMeta describes the loaded preset catalog.
type CatalogMeta struct {
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated,omitempty"`
	Count       int    `json:"count"`
	Fallback    bool   `json:"fallback"`
	LoadError   string `json:"load_error,omitempty"`
}
