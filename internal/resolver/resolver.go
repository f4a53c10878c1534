// Package resolver expands a scan target (file or directory) into the
// manifest sources the scanner processes.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fixmyk8s/kubecuro/internal/renderer"
)

// Error types for resolution operations
var (
	ErrInvalidTarget = fmt.Errorf("invalid target")
	ErrNoManifests   = fmt.Errorf("no manifest files found")
)

// Options holds configuration for the resolver
type Options struct {
	// FollowSymlinks determines if symlinked files inside a directory
	// target are scanned
	FollowSymlinks bool
	// Values is a path to a values.yaml file used when the target is a
	// helm chart
	Values string
}

// Source is one unit of manifest text to scan. Rendered sources (helm,
// kustomize) are synthetic and must never be written back to disk.
type Source struct {
	// Path identifies the source in findings
	Path string
	// Content is the raw manifest text
	Content []byte
	// Writable reports whether fix mode may overwrite the file in place
	Writable bool
	// Err records a read failure for a file inside a directory target,
	// so the scanner can report it without aborting the batch
	Err error
}

// Resolver expands targets into sources.
type Resolver struct {
	opts *Options
}

// New creates a Resolver with the given options.
func New(opts *Options) *Resolver {
	if opts == nil {
		opts = &Options{}
	}
	return &Resolver{opts: opts}
}

// Resolve classifies the target and returns its manifest sources in
// deterministic order.
func (r *Resolver) Resolve(ctx context.Context, target string) ([]Source, error) {
	if target == "" {
		return nil, ErrInvalidTarget
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat target: %w", err)
	}

	if !info.IsDir() {
		return r.resolveFile(ctx, target)
	}

	switch DetectDirectory(target) {
	case renderer.TypeHelm:
		return r.resolveRendered(ctx, target, renderer.TypeHelm)
	case renderer.TypeKustomize:
		return r.resolveRendered(ctx, target, renderer.TypeKustomize)
	default:
		return r.resolveFolder(ctx, target)
	}
}

func (r *Resolver) resolveFile(ctx context.Context, path string) ([]Source, error) {
	if !hasYAMLExt(path) {
		return nil, fmt.Errorf("%w: %s is not a YAML file", ErrInvalidTarget, path)
	}
	rend, err := renderer.ForType(renderer.TypeYAML, &renderer.Options{})
	if err != nil {
		return nil, err
	}
	result, err := rend.Render(ctx, path)
	if err != nil {
		return nil, err
	}
	return []Source{{Path: path, Content: result.YAML, Writable: true}}, nil
}

// resolveFolder expands a plain directory to its top-level YAML files,
// non-recursively.
func (r *Resolver) resolveFolder(ctx context.Context, dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var sources []Source
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.IsDir() || !hasYAMLExt(entry.Name()) {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 && !r.opts.FollowSymlinks {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			sources = append(sources, Source{Path: path, Err: err})
			continue
		}
		sources = append(sources, Source{Path: path, Content: content, Writable: true})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoManifests, dir)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

func (r *Resolver) resolveRendered(ctx context.Context, dir string, t renderer.Type) ([]Source, error) {
	rend, err := renderer.ForType(t, &renderer.Options{Values: r.opts.Values})
	if err != nil {
		return nil, err
	}
	result, err := rend.Render(ctx, dir)
	if err != nil {
		return nil, err
	}
	return []Source{{Path: result.Source, Content: result.YAML, Writable: false}}, nil
}

func hasYAMLExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
