package locale

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", Korean},
		{"ko", Korean},
		{"ko-KR", Korean},
		{"ko_KR", Korean},
		{"en", English},
		{"en-US", English},
		{"en-GB", English},
		{"fr", Korean},
		{"garbage!!", Korean},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestLocaleFilesHaveSameKeys(t *testing.T) {
	load := func(path string) map[string]string {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	}

	en := load("locales/active.en.json")
	ko := load("locales/active.ko.json")

	for k := range en {
		assert.Contains(t, ko, k, "missing in ko")
	}
	for k := range ko {
		assert.Contains(t, en, k, "missing in en")
	}
}

func TestTranslator_Korean(t *testing.T) {
	tr := New("ko")

	assert.Equal(t, Korean, tr.Lang())
	assert.Equal(t, "고", tr.Level(burden.High))
	assert.Equal(t, "중하", tr.Level(burden.MediumLow))
	assert.Equal(t, "충분함", tr.Verdict(burden.Sufficient))
	assert.Equal(t, "불충분함", tr.Verdict(burden.Insufficient))
	assert.Equal(t, "양측", tr.Side(domain.SideBoth))
	assert.Equal(t, "미확인", tr.Status(domain.StatusUnconfirmed))
	assert.Equal(t, "낮음", tr.Assessment(domain.AssessmentLow))
	assert.Equal(t, "해당없음", tr.KLG(domain.KLGradeNA))
	assert.Equal(t, "3등급", tr.KLG(domain.KLGrade3))
	assert.Equal(t, "업무중단 후 상당기간 경과", tr.Reason(domain.ReasonDelayed, ""))
	assert.Equal(t, "기타 (외상력)", tr.Reason(domain.ReasonOther, "외상력"))
	assert.Equal(t, "남", tr.Gender(domain.GenderMale))
	assert.Equal(t, "3년 6개월", tr.Period(burden.Overridden(3, 6)))
	assert.Equal(t, "계단오르내리기, 뛰어내리기",
		tr.Factors([]domain.AuxiliaryFactor{domain.FactorStairs, domain.FactorJumpDown}))
}

func TestTranslator_English(t *testing.T) {
	tr := New("en-US")

	assert.Equal(t, English, tr.Lang())
	assert.Equal(t, "High", tr.Level(burden.High))
	assert.Equal(t, "Sufficient", tr.Verdict(burden.Sufficient))
	assert.Equal(t, "Right", tr.Side(domain.SideRight))
	assert.Equal(t, "Grade 2", tr.KLG(domain.KLGrade2))
	assert.Equal(t, "Other (trauma)", tr.Reason(domain.ReasonOther, "trauma"))
	assert.Equal(t, "10 years 0 months", tr.Period(burden.Overridden(10, 0)))
}

func TestTranslator_Placeholders(t *testing.T) {
	tr := New("en")

	assert.Equal(t, Placeholder, tr.Level(burden.Level(0)))
	assert.Equal(t, Placeholder, tr.Verdict(burden.Verdict("")))
	assert.Equal(t, Placeholder, tr.Side(""))
	assert.Equal(t, Placeholder, tr.Status(""))
	assert.Equal(t, Placeholder, tr.Assessment(""))
	assert.Equal(t, Placeholder, tr.KLG(""))
	assert.Equal(t, Placeholder, tr.Reason("", ""))
	assert.Equal(t, "", tr.Gender(""))
	assert.Equal(t, "no.such.message", tr.T("no.such.message", nil))
}

func TestTranslator_JobPeriod(t *testing.T) {
	tr := New("en")

	tests := []struct {
		name string
		job  domain.JobHistory
		want string
	}{
		{
			name: "override wins",
			job: domain.JobHistory{
				StartDate:          domain.NewDate(2000, time.January, 1),
				EndDate:            domain.NewDate(2010, time.January, 1),
				WorkPeriodOverride: "3년 6개월",
			},
			want: "3 years 6 months",
		},
		{
			name: "dates",
			job: domain.JobHistory{
				StartDate: domain.NewDate(2010, time.March, 15),
				EndDate:   domain.NewDate(2013, time.September, 15),
			},
			want: "3 years 6 months",
		},
		{
			name: "unparseable override shown as entered",
			job:  domain.JobHistory{WorkPeriodOverride: "about a decade"},
			want: "about a decade",
		},
		{
			name: "nothing",
			job:  domain.JobHistory{},
			want: Placeholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.JobPeriod(tt.job))
		})
	}
}
