// Package manifest provides the parsed document model shared by all
// KubeCuro engines, plus tolerant navigation helpers over untyped YAML trees.
package manifest

import (
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// DefaultNamespace is assumed whenever a manifest omits metadata.namespace.
const DefaultNamespace = "default"

// Separator is the YAML document separator line.
const Separator = "---"

// Document represents one parsed YAML object from a manifest file.
// Identity fields are set at parse time; Content may be patched by the
// rule catalog when fixes are requested.
type Document struct {
	// Kind is the Kubernetes resource kind, empty if absent
	Kind string
	// APIVersion as declared in the manifest
	APIVersion string
	// Name from metadata.name
	Name string
	// Namespace from metadata.namespace, defaulting to "default"
	Namespace string
	// Content is the full parsed YAML mapping
	Content map[string]interface{}
	// OriginFile is the file the document was read from
	OriginFile string
	// Index is the zero-based document position within its file
	Index int
}

// SetAPIVersion rewrites the declared apiVersion both in the typed view and
// in the underlying content tree.
func (d *Document) SetAPIVersion(v string) {
	d.APIVersion = v
	if d.Content != nil {
		d.Content["apiVersion"] = v
	}
}

// Split divides raw manifest text into individual documents on separator
// lines, so a malformed document cannot corrupt its siblings. It also
// reports whether the text began with a separator, which Join uses to keep
// round-trip fidelity for well-formed files.
func Split(text string) (chunks []string, leadingSeparator bool) {
	lines := strings.Split(text, "\n")
	var current []string
	sawContent := false

	flush := func() {
		chunks = append(chunks, strings.Join(current, "\n"))
		current = nil
	}

	for _, line := range lines {
		if strings.TrimRight(line, " \t") == Separator {
			if !sawContent && len(chunks) == 0 && len(current) == 0 {
				leadingSeparator = true
				continue
			}
			flush()
			continue
		}
		if strings.TrimSpace(line) != "" {
			sawContent = true
		}
		current = append(current, line)
	}
	flush()
	return chunks, leadingSeparator
}

// Join is the inverse of Split.
func Join(chunks []string, leadingSeparator bool) string {
	out := strings.Join(chunks, "\n"+Separator+"\n")
	if leadingSeparator {
		out = Separator + "\n" + out
	}
	return out
}

// Parse decodes every document in raw manifest text. Each document is
// decoded independently: an unparsable document is skipped with a warning
// string while the remainder of the file proceeds.
func Parse(raw []byte, origin string) (docs []*Document, warnings []string) {
	chunks, _ := Split(string(raw))
	idx := 0
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		var content map[string]interface{}
		if err := yaml.Unmarshal([]byte(chunk), &content); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: document %d: %v", origin, i+1, err))
			continue
		}
		if len(content) == 0 {
			continue
		}
		docs = append(docs, NewDocument(content, origin, idx))
		idx++
	}
	return docs, warnings
}

// NewDocument builds a Document view over an already-parsed content tree.
func NewDocument(content map[string]interface{}, origin string, index int) *Document {
	doc := &Document{
		Content:    content,
		OriginFile: origin,
		Index:      index,
		Namespace:  DefaultNamespace,
	}
	if kind, ok := GetString(content, "kind"); ok {
		doc.Kind = kind
	}
	if api, ok := GetString(content, "apiVersion"); ok {
		doc.APIVersion = api
	}
	if name, ok := GetString(content, "metadata.name"); ok {
		doc.Name = name
	}
	if ns, ok := GetString(content, "metadata.namespace"); ok && ns != "" {
		doc.Namespace = ns
	}
	return doc
}

// Marshal re-encodes the document content as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d.Content)
}
