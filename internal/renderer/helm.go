package renderer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
)

// HelmRenderer implements Renderer for Helm chart directories.
type HelmRenderer struct {
	opts *Options
}

// NewHelmRenderer creates a new HelmRenderer
func NewHelmRenderer(opts *Options) *HelmRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HelmRenderer{opts: opts}
}

// Render loads the chart at path, renders its templates with default (or
// user-provided) values and concatenates the resulting manifests.
func (r *HelmRenderer) Render(ctx context.Context, path string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	chart, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	values := chart.Values
	if values == nil {
		values = make(map[string]interface{})
	}
	if r.opts.Values != "" {
		overrides, err := chartutil.ReadValuesFile(r.opts.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		values = chartutil.CoalesceTables(overrides.AsMap(), values)
	}

	options := chartutil.ReleaseOptions{
		Name:      chart.Name(),
		Namespace: "default",
		Revision:  1,
		IsInstall: true,
	}
	valuesToRender, err := chartutil.ToRenderValues(chart, values, options, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart values: %w", err)
	}

	renderer := engine.Engine{Strict: false}
	rendered, err := renderer.Render(chart, valuesToRender)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	result := &Result{Source: path}

	// Sort template names so the rendered document order is stable.
	names := make([]string, 0, len(rendered))
	for name := range rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for _, name := range names {
		content := strings.TrimSpace(rendered[name])
		if content == "" {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n---\n")
		}
		builder.WriteString(content)
	}

	if builder.Len() == 0 {
		result.Warnings = append(result.Warnings, "chart rendered no manifests")
	}
	result.YAML = []byte(builder.String())
	return result, nil
}
