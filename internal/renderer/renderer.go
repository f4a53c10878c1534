// Package renderer turns scan targets that are not plain YAML files (Helm
// charts, Kustomize overlays) into rendered manifest text the engines can
// consume.
package renderer

import (
	"context"
	"fmt"
)

// Options contains configuration options for renderers
type Options struct {
	// Values is a path to a values.yaml file used for rendering a helm chart
	Values string
}

// DefaultOptions returns a new Options with default values
func DefaultOptions() *Options {
	return &Options{}
}

// Result contains the output of a render operation
type Result struct {
	// Source is the path that was rendered
	Source string
	// YAML is the rendered multi-document manifest text
	YAML []byte
	// Warnings carries non-fatal render problems
	Warnings []string
}

// Error types for the renderer package
var (
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrRenderFailed  = fmt.Errorf("render failed")
	ErrUnknownSource = fmt.Errorf("unknown source type")
)

// Renderer converts a source path into rendered manifest text.
type Renderer interface {
	// Render processes the source path and returns rendered manifests.
	// The context can be used to cancel long-running render operations.
	Render(ctx context.Context, path string) (*Result, error)
}

// Type represents the kind of source a renderer handles.
type Type int

const (
	// TypeYAML is used for plain YAML files
	TypeYAML Type = iota
	// TypeHelm is used for Helm chart directories
	TypeHelm
	// TypeKustomize is used for Kustomize directories
	TypeKustomize
)

// ForType returns the appropriate renderer for the given type.
func ForType(t Type, opts *Options) (Renderer, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch t {
	case TypeYAML:
		return NewYAMLRenderer(opts), nil
	case TypeHelm:
		return NewHelmRenderer(opts), nil
	case TypeKustomize:
		return NewKustomizeRenderer(opts), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownSource, t)
	}
}
