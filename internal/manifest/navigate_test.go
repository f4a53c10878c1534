package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPath(t *testing.T) {
	tree := map[string]interface{}{
		"spec": map[string]interface{}{
			"replicas": 3,
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"hostNetwork": true,
				},
			},
		},
	}

	tests := []struct {
		name   string
		path   string
		want   interface{}
		wantOK bool
	}{
		{"top level", "spec", tree["spec"], true},
		{"nested scalar", "spec.replicas", 3, true},
		{"deep nested", "spec.template.spec.hostNetwork", true, true},
		{"missing leaf", "spec.missing", nil, false},
		{"scalar intermediate", "spec.replicas.more", nil, false},
		{"missing root", "nothing.here", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetPath(tree, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTypedGetters(t *testing.T) {
	tree := map[string]interface{}{
		"metadata": map[string]interface{}{
			"name": "web",
		},
		"spec": map[string]interface{}{
			"paused": true,
			"ports":  []interface{}{map[string]interface{}{"port": 80}},
		},
	}

	name, ok := GetString(tree, "metadata.name")
	assert.True(t, ok)
	assert.Equal(t, "web", name)

	_, ok = GetString(tree, "spec.paused")
	assert.False(t, ok, "bool is not a string")

	paused, ok := GetBool(tree, "spec.paused")
	assert.True(t, ok)
	assert.True(t, paused)

	ports, ok := GetSlice(tree, "spec.ports")
	assert.True(t, ok)
	assert.Len(t, ports, 1)

	meta, ok := GetMap(tree, "metadata")
	assert.True(t, ok)
	assert.Equal(t, "web", meta["name"])
}

func TestAsMapInterfaceKeys(t *testing.T) {
	m, ok := AsMap(map[interface{}]interface{}{"app": "web", 1: "one"})
	require.True(t, ok)
	assert.Equal(t, "web", m["app"])
	assert.Equal(t, "one", m["1"])
}

func TestStringMap(t *testing.T) {
	labels := StringMap(map[string]interface{}{"app": "web", "tier": 2})
	assert.Equal(t, map[string]string{"app": "web", "tier": "2"}, labels)

	assert.Nil(t, StringMap("not a map"))
}

func TestPodSpec(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		wantOK bool
	}{
		{
			name:   "bare pod",
			yaml:   "kind: Pod\nspec:\n  containers: []\n",
			wantOK: true,
		},
		{
			name:   "deployment",
			yaml:   "kind: Deployment\nspec:\n  template:\n    spec:\n      containers: []\n",
			wantOK: true,
		},
		{
			name:   "cronjob",
			yaml:   "kind: CronJob\nspec:\n  jobTemplate:\n    spec:\n      template:\n        spec:\n          containers: []\n",
			wantOK: true,
		},
		{
			name:   "service has no pod spec",
			yaml:   "kind: Service\nspec:\n  selector:\n    app: web\n",
			wantOK: false,
		},
		{
			name:   "deployment missing template",
			yaml:   "kind: Deployment\nspec:\n  replicas: 1\n",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, _ := Parse([]byte(tt.yaml), "t.yaml")
			require.Len(t, docs, 1)
			_, ok := PodSpec(docs[0])
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPodLabels(t *testing.T) {
	deployment := `kind: Deployment
metadata:
  labels:
    owner: infra
spec:
  template:
    metadata:
      labels:
        app: web
`
	docs, _ := Parse([]byte(deployment), "d.yaml")
	require.Len(t, docs, 1)
	assert.Equal(t, map[string]string{"app": "web"}, PodLabels(docs[0]),
		"controller labels come from the pod template, not the controller metadata")

	pod := "kind: Pod\nmetadata:\n  labels:\n    app: solo\n"
	docs, _ = Parse([]byte(pod), "p.yaml")
	require.Len(t, docs, 1)
	assert.Equal(t, map[string]string{"app": "solo"}, PodLabels(docs[0]))

	cron := `kind: CronJob
spec:
  jobTemplate:
    spec:
      template:
        metadata:
          labels:
            app: batch
`
	docs, _ = Parse([]byte(cron), "c.yaml")
	require.Len(t, docs, 1)
	assert.Equal(t, map[string]string{"app": "batch"}, PodLabels(docs[0]))
}

func TestIsWorkloadKind(t *testing.T) {
	for _, kind := range []string{"Pod", "Deployment", "StatefulSet", "DaemonSet", "ReplicaSet", "Job", "CronJob"} {
		assert.True(t, IsWorkloadKind(kind), kind)
	}
	assert.False(t, IsWorkloadKind("Service"))
	assert.False(t, IsWorkloadKind(""))
}
