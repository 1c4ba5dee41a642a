package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRegistry(t *testing.T) {
	for _, stepName := range Order() {
		def, ok := StepRegistry[stepName]
		require.True(t, ok, "Step %s should be in registry", stepName)
		assert.Equal(t, stepName, def.Name)
		assert.NotEmpty(t, def.Category)
	}
	assert.Len(t, StepRegistry, len(Order()))
}

func TestOrderSatisfiesDependencies(t *testing.T) {
	completed := map[string]bool{}
	for _, stepName := range Order() {
		require.NoError(t, ValidateDependencies(completed, stepName))
		completed[stepName] = true
	}
}

func TestPosition(t *testing.T) {
	pos, total := Position(Rules)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 6, total)

	pos, _ = Position(Scoring)
	assert.Equal(t, 6, pos)

	pos, _ = Position("unknown")
	assert.Equal(t, 0, pos)
}

func TestValidateDependencies(t *testing.T) {
	err := ValidateDependencies(map[string]bool{Rules: true}, Scoring)
	require.Error(t, err)

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, Scoring, depErr.Step)
	assert.Equal(t, []string{Sections, Keywords, Formatting}, depErr.MissingDependencies)
	assert.Contains(t, err.Error(), "missing dependencies")
}

func TestValidateDependencies_UnknownStep(t *testing.T) {
	err := ValidateDependencies(nil, "unknown_step")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestAvailableSteps(t *testing.T) {
	assert.Equal(t, []string{Normalize, Rules}, AvailableSteps(map[string]bool{}))
	assert.Equal(t, []string{Formatting, Sections}, AvailableSteps(map[string]bool{Rules: true, Normalize: true}))
	assert.Empty(t, AvailableSteps(map[string]bool{Rules: true, Normalize: true, Sections: true, Keywords: true, Formatting: true, Scoring: true}))
}
