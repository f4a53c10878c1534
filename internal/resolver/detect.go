package resolver

import (
	"os"
	"path/filepath"

	"github.com/fixmyk8s/kubecuro/internal/renderer"
)

// DetectDirectory determines which renderer a directory target needs based
// on its contents.
func DetectDirectory(dirPath string) renderer.Type {
	// Check for Chart.yaml (Helm)
	chartPath := filepath.Join(dirPath, "Chart.yaml")
	if _, err := os.Stat(chartPath); err == nil {
		return renderer.TypeHelm
	}

	// Check for kustomization.yaml (Kustomize)
	kustomizePath := filepath.Join(dirPath, "kustomization.yaml")
	if _, err := os.Stat(kustomizePath); err == nil {
		return renderer.TypeKustomize
	}

	// Default to plain YAML files
	return renderer.TypeYAML
}
