package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fixmyk8s/kubecuro/internal/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDirectory(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		want   renderer.Type
	}{
		{"helm chart", "Chart.yaml", renderer.TypeHelm},
		{"kustomize overlay", "kustomization.yaml", renderer.TypeKustomize},
		{"plain directory", "", renderer.TypeYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.marker != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tt.marker), []byte("{}"), 0644))
			}
			assert.Equal(t, tt.want, DetectDirectory(dir))
		})
	}
}

func TestDetectDirectoryHelmWins(t *testing.T) {
	// A chart that vendors a kustomization is still a chart.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Chart.yaml"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kustomization.yaml"), []byte("{}"), 0644))

	assert.Equal(t, renderer.TypeHelm, DetectDirectory(dir))
}
