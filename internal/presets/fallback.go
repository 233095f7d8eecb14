package presets

import "github.com/wr-burden-mcp-server/internal/domain"

// FallbackVersion is reported in CatalogMeta when the built-in presets are
// in use.
const FallbackVersion = "fallback"

// Fallback returns the built-in presets used when no catalog can be loaded.
func Fallback() []domain.Preset {
	return []domain.Preset{
		{ID: 1, JobName: "건설 현장 배근공", Category: "건설업", Weight: 2500, Squatting: 180, Source: "Fallback"},
		{ID: 2, JobName: "기계 조립원", Category: "제조업", Weight: 1500, Squatting: 120, Source: "Fallback"},
		{ID: 3, JobName: "포장작업원", Category: "제조업", Weight: 300, Squatting: 60, Source: "Fallback"},
	}
}
