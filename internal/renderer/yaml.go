package renderer

import (
	"context"
	"fmt"
	"os"

	"github.com/fixmyk8s/kubecuro/internal/manifest"
)

// YAMLRenderer implements Renderer for plain YAML files. It passes the file
// through unchanged; unparsable documents become warnings, never errors,
// since the healer downstream may still repair them.
type YAMLRenderer struct {
	opts *Options
}

// NewYAMLRenderer creates a new YAMLRenderer
func NewYAMLRenderer(opts *Options) *YAMLRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &YAMLRenderer{opts: opts}
}

// Render reads the file and reports per-document parse warnings.
func (r *YAMLRenderer) Render(ctx context.Context, path string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result := &Result{Source: path, YAML: content}
	_, warnings := manifest.Parse(content, path)
	result.Warnings = warnings
	return result, nil
}
