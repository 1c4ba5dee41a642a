// Package types provides type definitions for structured data used throughout the ATS analyzer.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DocumentStats holds simple counts over the normalized text
type DocumentStats struct {
	WordCount int `json:"wordCount"`
	LineCount int `json:"lineCount"`
}

// NormalizedDocument is the cleaned form of one résumé's extracted text.
// It is created once per analysis and never modified afterwards.
type NormalizedDocument struct {
	RawText         string        `json:"rawText"`
	NormalizedText  string        `json:"normalizedText"`
	LowerText       string        `json:"-"`
	NormalizedLines []string      `json:"normalizedLines"`
	LogicalLines    []string      `json:"logicalLines"`
	Tokens          []string      `json:"-"`
	Stats           DocumentStats `json:"stats"`
}

// ContactInfo records which contact fields were found anywhere in the text
type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// HasAny reports whether at least one contact field was found.
func (c ContactInfo) HasAny() bool {
	return c.Email != "" || c.Phone != "" || c.LinkedIn != "" || c.Website != ""
}
