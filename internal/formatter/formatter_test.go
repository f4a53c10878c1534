package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fixmyk8s/kubecuro/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *types.Report {
	return &types.Report{
		Target: "./k8s",
		Files:  2,
		Findings: []types.Finding{
			{
				Code:        "GHOST",
				Severity:    types.SeverityHigh,
				File:        "service.yaml",
				Message:     "Service \"web\" routes nowhere",
				Remediation: "Fix the selector.",
				Engine:      types.EngineSynapse,
			},
			{
				Code:     "SYNTAX",
				Severity: types.SeverityLow,
				File:     "deploy.yaml",
				Message:  "Manifest has repairable defects.",
				Engine:   types.EngineHealer,
			},
		},
		HealedFiles: []string{"deploy.yaml"},
		Timestamp:   1700000000,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		t       Type
		wantErr bool
	}{
		{"json", TypeJSON, false},
		{"yaml", TypeYAML, false},
		{"table", TypeTable, false},
		{"unknown", Type("xml"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.t)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := (&JSON{}).Format(sampleReport())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "./k8s", decoded["target"])

	// severities render as names, not numbers
	assert.Contains(t, out, `"severity": "HIGH"`)
}

func TestYAMLFormat(t *testing.T) {
	out, err := (&YAML{}).Format(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, out, "target: ./k8s")
	assert.Contains(t, out, "code: GHOST")
}

func TestTableFormat(t *testing.T) {
	out, err := (&Table{}).Format(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, out, "DIAGNOSTIC REPORT")
	assert.Contains(t, out, "GHOST")
	assert.Contains(t, out, "Synapse")
	assert.Contains(t, out, "Healed files: deploy.yaml")
	assert.Contains(t, out, "SUGGESTED REMEDIATIONS:")
	assert.Contains(t, out, "2 findings across 2 files (1 blocking)")

	// triage order puts the HIGH finding before the LOW one
	assert.Less(t, strings.Index(out, "GHOST"), strings.Index(out, "SYNTAX"))
}

func TestTableFormatEmptyReport(t *testing.T) {
	out, err := (&Table{}).Format(&types.Report{Target: "clean.yaml", Files: 1})
	require.NoError(t, err)
	assert.Contains(t, out, "0 findings across 1 files (0 blocking)")
	assert.NotContains(t, out, "SUGGESTED REMEDIATIONS")
}

func TestChecklist(t *testing.T) {
	full, err := Checklist("")
	require.NoError(t, err)
	for _, topic := range []string{"Syntax", "API Versions", "Security", "Stability", "Wiring"} {
		assert.Contains(t, full, topic)
	}

	wiring, err := Checklist("wiring")
	require.NoError(t, err)
	assert.Contains(t, wiring, "selectors")
	assert.NotContains(t, wiring, "API Versions")

	_, err = Checklist("nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api, security, stability, syntax, wiring")
}
