package presets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wr-burden-mcp-server/internal/domain"
)

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"sample", sampleCatalog, true},
		{"empty presets", `{"presets": []}`, true},
		{"missing presets", `{"version": "1.0.0"}`, false},
		{"negative weight", `{"presets":[{"id":1,"jobName":"A","weight":-1,"squatting":0}]}`, false},
		{"string squatting", `{"presets":[{"id":1,"jobName":"A","weight":1,"squatting":"60"}]}`, false},
		{"missing job name", `{"presets":[{"id":1,"weight":1,"squatting":1}]}`, false},
		{"fractional id", `{"presets":[{"id":1.5,"jobName":"A","weight":1,"squatting":1}]}`, false},
		{"malformed", `{"presets": [`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalog([]byte(tt.doc))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidCatalog))
		})
	}
}
