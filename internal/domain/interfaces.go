package domain

import (
	"context"
)

// Evaluator derives an Evaluation from a patient record.
type Evaluator interface {
	Evaluate(ctx context.Context, record *PatientRecord) (*Evaluation, error)
	EvaluateBatch(ctx context.Context, records []*PatientRecord) ([]*Evaluation, error)
}

// ReportGenerator renders the medical-opinion text for a record.
type ReportGenerator interface {
	Generate(ctx context.Context, record *PatientRecord, lang string) (string, error)
}

// PresetCatalog answers job-preset lookups.
type PresetCatalog interface {
	Search(query string) []Preset
	Get(id int) (Preset, error)
	All() []Preset
	Meta() CatalogMeta
}

// PresetSource loads the raw catalog document.
type PresetSource interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetPresetsConfig() *PresetsConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
