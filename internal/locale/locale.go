// Package locale renders the human-readable labels used in evaluation
// reports. Messages are embedded JSON bundles loaded with go-i18n; Korean is
// the default language and English the fallback for missing messages.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/pkg/burden"
)

//go:embed locales/*.json
var localeFS embed.FS

// Supported languages, default first.
const (
	Korean  = "ko"
	English = "en"

	DefaultLanguage = Korean
)

// Placeholder is printed for absent values.
const Placeholder = "-"

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error

	matcher = language.NewMatcher([]language.Tag{language.Korean, language.English})
)

func loadBundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			bundleErr = fmt.Errorf("reading embedded locales: %w", err)
			return
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
				continue
			}
			if _, err := b.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
				bundleErr = fmt.Errorf("loading locale %s: %w", name, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Normalize maps an arbitrary language tag ("en-US", "ko_KR", "") onto a
// supported language.
func Normalize(lang string) string {
	tag, _ := language.MatchStrings(matcher, strings.ReplaceAll(lang, "_", "-"))
	base, _ := tag.Base()
	switch base.String() {
	case English:
		return English
	default:
		return Korean
	}
}

// Supported lists the languages with an embedded message file.
func Supported() []string {
	return []string{Korean, English}
}

// Translator renders labels in one language. It is safe for concurrent use.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// New returns a translator for lang, normalized with Normalize. It panics
// only if the embedded message files are malformed.
func New(lang string) *Translator {
	b, err := loadBundle()
	if err != nil {
		panic(err)
	}
	lang = Normalize(lang)
	return &Translator{lang: lang, localizer: i18n.NewLocalizer(b, lang, English)}
}

// Lang returns the translator's language.
func (t *Translator) Lang() string { return t.lang }

// T localizes the message id, returning id itself when it is unknown.
func (t *Translator) T(id string, data map[string]interface{}) string {
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if data != nil {
		cfg.TemplateData = data
	}
	msg, err := t.localizer.Localize(cfg)
	if err != nil {
		return id
	}
	return msg
}

func (t *Translator) optional(prefix, value string) string {
	if value == "" {
		return Placeholder
	}
	return t.T(prefix+"."+value, nil)
}

// Level labels a burden level.
func (t *Translator) Level(l burden.Level) string {
	if !l.IsValid() {
		return Placeholder
	}
	return t.T("level."+l.String(), nil)
}

// Verdict labels a cumulative-burden verdict.
func (t *Translator) Verdict(v burden.Verdict) string {
	if !v.IsValid() {
		return Placeholder
	}
	return t.T("verdict."+v.String(), nil)
}

// Side labels a diagnosis side.
func (t *Translator) Side(s domain.Side) string {
	if !s.IsValid() {
		return Placeholder
	}
	return t.optional("side", string(s))
}

// Status labels a per-side diagnosis status.
func (t *Translator) Status(s domain.DiagnosisStatus) string {
	if !s.IsValid() {
		return Placeholder
	}
	return t.optional("status", string(s))
}

// Assessment labels a per-side work-relatedness assessment.
func (t *Translator) Assessment(a domain.AssessmentLevel) string {
	if !a.IsValid() {
		return Placeholder
	}
	return t.optional("assessment", string(a))
}

// KLG labels a Kellgren-Lawrence grade.
func (t *Translator) KLG(g domain.KLGrade) string {
	switch {
	case g == domain.KLGradeNA:
		return t.T("klg.na", nil)
	case g.IsValid():
		return t.T("klg.grade", map[string]interface{}{"Grade": string(g)})
	default:
		return Placeholder
	}
}

// Reason labels a low-relatedness reason; other carries the free text for
// ReasonOther.
func (t *Translator) Reason(r domain.LowRelatednessReason, other string) string {
	switch r {
	case domain.ReasonOther:
		return t.T("reason.other", map[string]interface{}{"Text": other})
	case domain.ReasonUnrelated, domain.ReasonMild, domain.ReasonDelayed:
		return t.T("reason."+string(r), nil)
	default:
		return Placeholder
	}
}

// Gender labels the patient's gender, or "" when unknown.
func (t *Translator) Gender(g domain.Gender) string {
	switch g {
	case domain.GenderMale, domain.GenderFemale:
		return t.T("gender."+string(g), nil)
	default:
		return ""
	}
}

// Factor labels one auxiliary factor.
func (t *Translator) Factor(f domain.AuxiliaryFactor) string {
	return t.T("factor."+string(f), nil)
}

// Factors labels the factors and joins them with ", ".
func (t *Translator) Factors(fs []domain.AuxiliaryFactor) string {
	labels := make([]string, 0, len(fs))
	for _, f := range fs {
		labels = append(labels, t.Factor(f))
	}
	return strings.Join(labels, ", ")
}

// Period renders a duration as whole years and months.
func (t *Translator) Period(d burden.Duration) string {
	y, m := d.YearsMonths()
	return t.T("period", map[string]interface{}{"Years": y, "Months": m})
}

// JobPeriod renders the effective period of a job: a parseable override
// first, then the period between the dates, then the override text as
// entered, then Placeholder.
func (t *Translator) JobPeriod(j domain.JobHistory) string {
	if d, ok := burden.ParseOverride(j.WorkPeriodOverride); ok {
		return t.Period(d)
	}
	if !j.StartDate.IsZero() && !j.EndDate.IsZero() {
		return t.Period(burden.Computed(burden.WorkPeriodYears(j.StartDate.Time, j.EndDate.Time)))
	}
	if s := strings.TrimSpace(j.WorkPeriodOverride); s != "" {
		return s
	}
	return Placeholder
}
