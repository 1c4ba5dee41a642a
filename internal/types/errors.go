package types

import (
	"errors"
	"fmt"
)

// Error codes shared by every stage of the analysis pipeline.
const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeConfigFileNotFound     = "CONFIG_FILE_NOT_FOUND"
	CodeConfigInvalidJSON      = "CONFIG_INVALID_JSON"
	CodeConfigInvalidStructure = "CONFIG_INVALID_STRUCTURE"
	CodeInternal               = "INTERNAL_ERROR"
)

// Coded is implemented by every error in the analysis taxonomy.
type Coded interface {
	error
	ErrorCode() string
}

// InputError reports a caller-contract violation: a required field of a
// stage input is missing or malformed.
type InputError struct {
	Stage   string
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid input %s: %s", e.Stage, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: invalid input: %s", e.Stage, e.Message)
}

// ErrorCode returns CodeInvalidInput.
func (e *InputError) ErrorCode() string {
	return CodeInvalidInput
}

// ConfigError reports a rule table that is absent, unparsable or structurally invalid.
type ConfigError struct {
	Code    string
	Source  string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error [%s] %s: %s: %v", e.Code, e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error [%s] %s: %s", e.Code, e.Source, e.Message)
}

// ErrorCode returns the configuration sub-code.
func (e *ConfigError) ErrorCode() string {
	return e.Code
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// InternalError wraps any unexpected failure raised while calculating.
type InternalError struct {
	Stage string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: internal error: %v", e.Stage, e.Cause)
}

// ErrorCode returns CodeInternal.
func (e *InternalError) ErrorCode() string {
	return CodeInternal
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// CodeOf returns the taxonomy code carried by err, or CodeInternal when err
// is outside the taxonomy. It returns "" for a nil error.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeInternal
}
