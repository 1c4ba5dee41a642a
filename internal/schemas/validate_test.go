package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"formatting", "keywords", "scoring", "sections"}, Names())
}

func TestEmbeddedSchemas_ValidJSON(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			raw, err := Schema(name)
			require.NoError(t, err)

			var v map[string]any
			require.NoError(t, json.Unmarshal(raw, &v), "schema should be valid JSON")
			assert.Contains(t, v, "$schema")
		})
	}
}

func TestSchema_Unknown(t *testing.T) {
	_, err := Schema("nope")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "nope.schema.json", loadErr.Path)
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		content string
		wantErr bool
		field   string // expected in the error text
	}{
		{
			name:    "valid sections",
			doc:     "sections",
			content: `{"meta":{"version":"1"},"sections":[{"key":"experience","headings":["experience"]}]}`,
		},
		{
			name:    "sections missing headings",
			doc:     "sections",
			content: `{"meta":{"version":"1"},"sections":[{"key":"experience"}]}`,
			wantErr: true,
			field:   "headings",
		},
		{
			name:    "valid formatting",
			doc:     "formatting",
			content: `{"meta":{"version":"1"},"atsCompatibility":{"allowTables":true},"structureRules":{"maxPages":2}}`,
		},
		{
			name:    "formatting wrong type",
			doc:     "formatting",
			content: `{"meta":{"version":"1"},"atsCompatibility":{"allowTables":"yes"}}`,
			wantErr: true,
			field:   "atsCompatibility.allowTables",
		},
		{
			name:    "keywords bad threshold",
			doc:     "keywords",
			content: `{"meta":{"version":"1"},"keywordGroups":[],"penalties":{"keywordStuffing":{"enabled":true,"repeatThreshold":0}}}`,
			wantErr: true,
			field:   "penalties.keywordStuffing.repeatThreshold",
		},
		{
			name:    "scoring missing scale",
			doc:     "scoring",
			content: `{"meta":{"version":"1"},"baseWeights":{"sections":1,"keywords":1,"formatting":1,"experience_quality":1,"skills_relevance":1}}`,
			wantErr: true,
			field:   "scoreScale",
		},
		{
			name:    "scoring valid minimum",
			doc:     "scoring",
			content: `{"meta":{"version":"1"},"baseWeights":{"sections":1,"keywords":1,"formatting":1,"experience_quality":1,"skills_relevance":1},"scoreScale":{"min":0,"max":100}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc, []byte(tt.content))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.doc, validationErr.Document)
			assert.NotEmpty(t, validationErr.Errors)
			assert.Contains(t, validationErr.Error(), tt.field)
		})
	}
}

func TestValidateDocument_MalformedJSON(t *testing.T) {
	err := ValidateDocument("sections", []byte(`{"meta":`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateDocument_CachesCompiledSchema(t *testing.T) {
	ClearCache()
	require.NoError(t, ValidateDocument("formatting", []byte(`{"meta":{"version":"1"},"atsCompatibility":{}}`)))

	compiledMu.RLock()
	_, ok := compiled["formatting"]
	compiledMu.RUnlock()
	assert.True(t, ok)

	ClearCache()
	compiledMu.RLock()
	assert.Empty(t, compiled)
	compiledMu.RUnlock()
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"age": 30}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Document: "scoring",
		Errors: []FieldError{
			{Field: "baseWeights", Message: "is required"},
			{Field: "scoreScale.min", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "scoring validation failed")
	assert.Contains(t, errorMsg, "baseWeights")
	assert.Contains(t, errorMsg, "scoreScale.min")
}
