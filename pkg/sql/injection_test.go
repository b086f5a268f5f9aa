package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTermForInjection(t *testing.T) {
	tests := []struct {
		name  string
		value any
		sqli  bool
	}{
		{name: "clean search text", value: "turbo gasket", sqli: false},
		{name: "fault code", value: "SPN 1234 FMI 5", sqli: false},
		{name: "classic tautology", value: "1' OR '1'='1", sqli: true},
		{name: "union probe", value: "x' UNION SELECT password FROM users--", sqli: true},
		{name: "non string ignored", value: 42, sqli: false},
		{name: "range map ignored", value: map[string]any{"min": 1}, sqli: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckTermForInjection("name", tt.value)
			if tt.sqli {
				require.NotNil(t, result)
				assert.True(t, result.IsSQLi)
				assert.Equal(t, "name", result.TermKey)
				assert.NotEmpty(t, result.Fingerprint)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestCheckAllTerms(t *testing.T) {
	hits := CheckAllTerms(map[string]any{
		"name":        "impeller",
		"part_number": "1' OR '1'='1",
	})
	require.Len(t, hits, 1)
	assert.Equal(t, "part_number", hits[0].TermKey)

	assert.Empty(t, CheckAllTerms(map[string]any{"name": "impeller"}))
	assert.Empty(t, CheckAllTerms(nil))
}
