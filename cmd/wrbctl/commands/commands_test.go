package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/setup"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

const sampleRecordYAML = `name: Hong Gildong
gender: male
height: 175
weight: "70"
birth_date: 1980-03-01
injury_date: 2020-06-01
hospital_name: Seoul Clinic
department: Occupational Medicine
doctor_name: Dr. Kim
evaluation_date: 2020-09-15
diagnoses:
  - code: M17.1
    name: Primary gonarthrosis
    side: right
    confirmed_right: confirmed
    assessment_right: high
jobs:
  - job_name: Rebar worker
    work_period_override: 10 years
    weight: 3000g
    squatting: 180
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WRB_LOCALE", "en")
	t.Setenv("WRB_PRESET_SOURCE", "")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--no-color"))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClassifyCmd(t *testing.T) {
	out, err := run(t, "classify", "--weight", "3000g", "--squatting", "180", "--json")
	require.NoError(t, err)

	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3000.0, got.WeightGrams)
	assert.Equal(t, burden.High, got.Level)
	assert.Equal(t, "High", got.Label)
	assert.Equal(t, 6.0, got.MinScore)
	assert.Equal(t, 9.0, got.MaxScore)
}

func TestClassifyCmd_Korean(t *testing.T) {
	out, err := run(t, "classify", "--weight", "abc", "--squatting", "-5", "--lang", "ko", "--json")
	require.NoError(t, err)

	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Zero(t, got.WeightGrams)
	assert.Zero(t, got.SquattingMinutes)
	assert.Equal(t, burden.Low, got.Level)
	assert.Equal(t, "하", got.Label)
}

func TestPeriodCmd(t *testing.T) {
	out, err := run(t, "period", "--start", "2010-01-01", "--end", "2015-07-01", "--json")
	require.NoError(t, err)

	var got periodOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 5.5, got.Years, 0.01)
	assert.Equal(t, "computed", got.Source)
	assert.Equal(t, "5 years 6 months", got.Formatted)

	out, err = run(t, "period", "--override", "3y 6m", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 3.5, got.Years, 1e-9)
	assert.Equal(t, "overridden", got.Source)
	assert.Equal(t, "-", got.Formatted)
}

func TestEvaluateCmd_YAML(t *testing.T) {
	path := writeFile(t, "patient.yaml", sampleRecordYAML)

	out, err := run(t, "evaluate", "-f", path, "--json")
	require.NoError(t, err)

	var eval domain.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &eval))
	assert.Equal(t, "Hong Gildong", eval.PatientName)
	assert.Equal(t, 40, eval.AgeYears)
	assert.InDelta(t, 83.3, eval.RelatednessDisplay.Min, 0.05)
	assert.InDelta(t, 88.9, eval.RelatednessDisplay.Max, 0.05)
	assert.Equal(t, burden.Sufficient, eval.Verdict)
}

func TestEvaluateCmd_List(t *testing.T) {
	list := `[
  {"name": "A", "birth_date": "1980-03-01", "injury_date": "2020-06-01",
   "jobs": [{"work_period_override": "10 years", "weight": 3000, "squatting": 180}]},
  {"name": "B", "birth_date": "1995-01-01", "injury_date": "2020-01-01",
   "jobs": [{"work_period_override": "10 years", "weight": 3000, "squatting": 180}]}
]`
	path := writeFile(t, "patients.json", list)

	out, err := run(t, "evaluate", "-f", path, "--json")
	require.NoError(t, err)

	var evals []domain.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &evals))
	require.Len(t, evals, 2)
	assert.Equal(t, "A", evals[0].PatientName)
	assert.Equal(t, burden.Sufficient, evals[0].Verdict)
	assert.Equal(t, "B", evals[1].PatientName)
	assert.Equal(t, burden.Insufficient, evals[1].Verdict)
}

func TestEvaluateCmd_MissingFile(t *testing.T) {
	_, err := run(t, "evaluate", "-f", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)

	_, err = run(t, "evaluate")
	assert.Error(t, err)
}

func TestReportCmd(t *testing.T) {
	path := writeFile(t, "patient.yaml", sampleRecordYAML)

	out, err := run(t, "report", "-f", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Work-Relatedness Special Examination Opinion"))
	assert.Contains(t, out, "[Work-relatedness] 83.3% ~ 88.9%\n")

	target := filepath.Join(t.TempDir(), "opinion.txt")
	_, err = run(t, "report", "-f", path, "--lang", "ko", "-o", target)
	require.NoError(t, err)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "[업무관련성] 83.3% ~ 88.9%\n")
}

func TestReportCmd_EMR(t *testing.T) {
	path := writeFile(t, "patient.yaml", sampleRecordYAML)

	out, err := run(t, "report", "-f", path, "--format", "emr", "--json")
	require.NoError(t, err)

	var report struct {
		Title    string `json:"title"`
		Sections []struct {
			Heading string `json:"heading"`
			Body    string `json:"body"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Sections, 5)
}

func TestReportCmd_Errors(t *testing.T) {
	incomplete := writeFile(t, "partial.yaml", "name: Hong Gildong\n")
	_, err := run(t, "report", "-f", incomplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 problem(s)")

	path := writeFile(t, "patient.yaml", sampleRecordYAML)
	_, err = run(t, "report", "-f", path, "--format", "pdf")
	assert.Error(t, err)
}

func TestPresetsSearchCmd(t *testing.T) {
	out, err := run(t, "presets", "search", "제조", "--json")
	require.NoError(t, err)

	var got struct {
		Presets []domain.Preset    `json:"presets"`
		Meta    domain.CatalogMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Presets, 2)
	assert.True(t, got.Meta.Fallback)
}

func TestPresetsCmd_CatalogFile(t *testing.T) {
	catalog := `{
  "version": "2.0.0",
  "lastUpdated": "2025-01-01",
  "presets": [
    {"id": 10, "jobName": "타일공", "category": "건설업", "weight": 2000, "squatting": 240, "source": "Survey"}
  ]
}`
	path := writeFile(t, "presets.json", catalog)

	out, err := run(t, "presets", "list", "--presets", path, "--json")
	require.NoError(t, err)

	var got struct {
		Presets []domain.Preset    `json:"presets"`
		Meta    domain.CatalogMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Presets, 1)
	assert.Equal(t, "타일공", got.Presets[0].JobName)
	assert.Equal(t, "2.0.0", got.Meta.Version)
	assert.False(t, got.Meta.Fallback)
}

func TestSetupCmd(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "client.json")
	binary := writeFile(t, setup.BinaryName, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(binary, 0o755))

	_, err := run(t, "setup", "register", "--config", configPath, "--binary", binary, "--lang", "en", "--json")
	require.NoError(t, err)

	out, err := run(t, "setup", "status", "--config", configPath, "--json")
	require.NoError(t, err)

	var st setup.Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.True(t, st.Registered)
	assert.Equal(t, binary, st.ServerPath)
	assert.Equal(t, "en", st.Locale)
	assert.Empty(t, st.Issues)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}
