package shield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDeprecation(t *testing.T) {
	tests := []struct {
		name            string
		apiVersion      string
		kind            string
		wantReplacement string
		wantRemoved     bool
		wantOK          bool
	}{
		{
			name:            "extensions deployment",
			apiVersion:      "extensions/v1beta1",
			kind:            "Deployment",
			wantReplacement: "apps/v1",
			wantOK:          true,
		},
		{
			name:            "extensions ingress has its own replacement",
			apiVersion:      "extensions/v1beta1",
			kind:            "Ingress",
			wantReplacement: "networking.k8s.io/v1",
			wantOK:          true,
		},
		{
			name:            "unknown kind falls back to the group default",
			apiVersion:      "extensions/v1beta1",
			kind:            "SomethingNew",
			wantReplacement: "apps/v1",
			wantOK:          true,
		},
		{
			name:        "pod security policy is removed",
			apiVersion:  "policy/v1beta1",
			kind:        "PodSecurityPolicy",
			wantRemoved: true,
			wantOK:      true,
		},
		{
			name:            "pdb moves to policy/v1",
			apiVersion:      "policy/v1beta1",
			kind:            "PodDisruptionBudget",
			wantReplacement: "policy/v1",
			wantOK:          true,
		},
		{
			name:       "stable api is untouched",
			apiVersion: "apps/v1",
			kind:       "Deployment",
			wantOK:     false,
		},
		{
			name:       "empty api version",
			apiVersion: "",
			kind:       "Deployment",
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacement, removed, ok := ResolveDeprecation(tt.apiVersion, tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantReplacement, replacement)
		})
	}
}

func TestDeprecationsListing(t *testing.T) {
	table := Deprecations()
	assert.NotEmpty(t, table)

	versions := make(map[string]bool, len(table))
	for _, d := range table {
		versions[d.APIVersion] = true
	}
	assert.True(t, versions["extensions/v1beta1"])
	assert.True(t, versions["policy/v1beta1"])
}
