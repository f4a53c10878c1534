// Package formatter renders scan reports for the terminal and for machine
// consumption.
package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/fixmyk8s/kubecuro/internal/types"
	yaml "gopkg.in/yaml.v3"
)

// Formatter defines the interface for formatting a scan report
type Formatter interface {
	Format(report *types.Report) (string, error)
}

// Type represents the type of formatter
type Type string

const (
	// TypeJSON formats the report as JSON
	TypeJSON Type = "json"
	// TypeYAML formats the report as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats the report as a table
	TypeTable Type = "table"
)

// New returns the formatter for the given type.
func New(t Type) (Formatter, error) {
	switch t {
	case TypeJSON:
		return &JSON{}, nil
	case TypeYAML:
		return &YAML{}, nil
	case TypeTable:
		return &Table{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", t)
	}
}

// JSON implements JSON formatting
type JSON struct{}

// Format formats the report as JSON
func (j *JSON) Format(report *types.Report) (string, error) {
	bytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// YAML implements YAML formatting
type YAML struct{}

// Format formats the report as YAML
func (y *YAML) Format(report *types.Report) (string, error) {
	bytes, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}
