package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitJoinRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantChunks  int
		wantLeading bool
		// wantJoined overrides the round-trip expectation when Split is
		// allowed to normalize the text
		wantJoined string
	}{
		{
			name:       "single document",
			text:       "kind: Pod\nmetadata:\n  name: a",
			wantChunks: 1,
		},
		{
			name:       "two documents",
			text:       "kind: Pod\n---\nkind: Service",
			wantChunks: 2,
		},
		{
			name:        "leading separator",
			text:        "---\nkind: Pod",
			wantChunks:  1,
			wantLeading: true,
		},
		{
			name:       "separator with trailing spaces",
			text:       "kind: Pod\n---  \nkind: Service",
			wantChunks: 2,
			wantJoined: "kind: Pod\n---\nkind: Service",
		},
		{
			name:       "trailing separator yields empty chunk",
			text:       "kind: Pod\n---\n",
			wantChunks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, leading := Split(tt.text)
			assert.Len(t, chunks, tt.wantChunks)
			assert.Equal(t, tt.wantLeading, leading)

			want := tt.text
			if tt.wantJoined != "" {
				want = tt.wantJoined
			}
			assert.Equal(t, want, Join(chunks, leading), "round trip must preserve text")
		})
	}
}

func TestParse(t *testing.T) {
	raw := []byte(`apiVersion: v1
kind: Service
metadata:
  name: web
  namespace: shop
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: api
`)
	docs, warnings := Parse(raw, "app.yaml")
	require.Empty(t, warnings)
	require.Len(t, docs, 2)

	assert.Equal(t, "Service", docs[0].Kind)
	assert.Equal(t, "web", docs[0].Name)
	assert.Equal(t, "shop", docs[0].Namespace)
	assert.Equal(t, "app.yaml", docs[0].OriginFile)
	assert.Equal(t, 0, docs[0].Index)

	assert.Equal(t, "Deployment", docs[1].Kind)
	assert.Equal(t, DefaultNamespace, docs[1].Namespace, "missing namespace defaults")
	assert.Equal(t, 1, docs[1].Index)
}

func TestParseSkipsBrokenDocument(t *testing.T) {
	raw := []byte("kind: Pod\nmetadata:\n  name: ok\n---\nkind: [unclosed\n---\nkind: Service\nmetadata:\n  name: web\n")
	docs, warnings := Parse(raw, "mixed.yaml")

	require.Len(t, docs, 2, "siblings of a broken document still parse")
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "mixed.yaml")
	assert.Equal(t, "ok", docs[0].Name)
	assert.Equal(t, "web", docs[1].Name)
}

func TestParseSkipsEmptyChunks(t *testing.T) {
	docs, warnings := Parse([]byte("---\n\n---\nkind: Pod\nmetadata:\n  name: solo\n"), "x.yaml")
	assert.Empty(t, warnings)
	require.Len(t, docs, 1)
	assert.Equal(t, "solo", docs[0].Name)
}

func TestSetAPIVersion(t *testing.T) {
	docs, _ := Parse([]byte("apiVersion: extensions/v1beta1\nkind: Ingress\nmetadata:\n  name: edge\n"), "i.yaml")
	require.Len(t, docs, 1)

	docs[0].SetAPIVersion("networking.k8s.io/v1")
	assert.Equal(t, "networking.k8s.io/v1", docs[0].APIVersion)
	assert.Equal(t, "networking.k8s.io/v1", docs[0].Content["apiVersion"], "content tree must follow the typed view")
}
