// Package steps provides step definitions and dependency validation for the
// analysis pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Step names
const (
	Rules      = "rules"
	Normalize  = "normalize"
	Sections   = "sections"
	Keywords   = "keywords"
	Formatting = "formatting"
	Scoring    = "scoring"
)

// Step categories
const (
	CategorySetup    = "setup"
	CategoryIngest   = "ingestion"
	CategoryAnalysis = "analysis"
	CategoryScoring  = "scoring"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	Rules: {
		Name:         Rules,
		Category:     CategorySetup,
		Dependencies: []string{},
	},
	Normalize: {
		Name:         Normalize,
		Category:     CategoryIngest,
		Dependencies: []string{},
	},
	Sections: {
		Name:         Sections,
		Category:     CategoryAnalysis,
		Dependencies: []string{Rules, Normalize},
	},
	Keywords: {
		Name:         Keywords,
		Category:     CategoryAnalysis,
		Dependencies: []string{Rules, Normalize, Sections},
	},
	Formatting: {
		Name:         Formatting,
		Category:     CategoryAnalysis,
		Dependencies: []string{Rules, Normalize},
	},
	Scoring: {
		Name:         Scoring,
		Category:     CategoryScoring,
		Dependencies: []string{Rules, Sections, Keywords, Formatting},
	},
}

// order is the execution order; it must satisfy every dependency in StepRegistry
var order = []string{Rules, Normalize, Sections, Keywords, Formatting, Scoring}

// Order returns the steps in execution order.
func Order() []string {
	return append([]string(nil), order...)
}

// Position returns the 1-based position of a step and the number of steps,
// or 0 when the step is unknown.
func Position(name string) (int, int) {
	for i, s := range order {
		if s == name {
			return i + 1, len(order)
		}
	}
	return 0, len(order)
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of a step is in completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// AvailableSteps returns the steps not yet completed whose dependencies are met, sorted
func AvailableSteps(completed map[string]bool) []string {
	var available []string
	for name := range StepRegistry {
		if completed[name] {
			continue
		}
		if ValidateDependencies(completed, name) != nil {
			continue
		}
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}
