package manifest

import (
	"fmt"
	"strings"
)

// GetPath walks a dotted path through an untyped YAML tree. A missing or
// mistyped intermediate yields (nil, false), never a runtime error, which
// preserves the tolerant error-as-absence navigation the engines rely on.
func GetPath(m map[string]interface{}, path string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current interface{} = m
	for _, part := range parts {
		node, ok := AsMap(current)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetMap returns the mapping at path, if present.
func GetMap(m map[string]interface{}, path string) (map[string]interface{}, bool) {
	v, ok := GetPath(m, path)
	if !ok {
		return nil, false
	}
	return AsMap(v)
}

// GetSlice returns the sequence at path, if present.
func GetSlice(m map[string]interface{}, path string) ([]interface{}, bool) {
	v, ok := GetPath(m, path)
	if !ok {
		return nil, false
	}
	s, ok := v.([]interface{})
	return s, ok
}

// GetString returns the scalar string at path, if present.
func GetString(m map[string]interface{}, path string) (string, bool) {
	v, ok := GetPath(m, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the boolean at path, if present.
func GetBool(m map[string]interface{}, path string) (bool, bool) {
	v, ok := GetPath(m, path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// AsMap converts an untyped node to a string-keyed mapping. yaml.v3 already
// decodes string-keyed mappings this way; interface-keyed maps from older
// decoders are converted too.
func AsMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// StringMap flattens a mapping node into string keys and stringified scalar
// values. Used for labels and selectors where values must compare as text.
func StringMap(v interface{}) map[string]string {
	node, ok := AsMap(v)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(node))
	for k, val := range node {
		out[k] = fmt.Sprintf("%v", val)
	}
	return out
}

// MapSlice returns the mapping elements of the sequence at path.
func MapSlice(m map[string]interface{}, path string) []map[string]interface{} {
	items, ok := GetSlice(m, path)
	if !ok {
		return nil
	}
	var out []map[string]interface{}
	for _, item := range items {
		if mm, ok := AsMap(item); ok {
			out = append(out, mm)
		}
	}
	return out
}

// podSpecPaths maps workload kinds to the location of their pod spec.
var podSpecPaths = map[string]string{
	"Pod":         "spec",
	"Deployment":  "spec.template.spec",
	"StatefulSet": "spec.template.spec",
	"DaemonSet":   "spec.template.spec",
	"ReplicaSet":  "spec.template.spec",
	"Job":         "spec.template.spec",
	"CronJob":     "spec.jobTemplate.spec.template.spec",
}

// PodSpec resolves the pod spec of a workload document. Absence of any
// intermediate key means the document carries no pod spec and pod-level
// rules do not apply.
func PodSpec(doc *Document) (map[string]interface{}, bool) {
	path, ok := podSpecPaths[doc.Kind]
	if !ok {
		return nil, false
	}
	return GetMap(doc.Content, path)
}

// PodLabels resolves the labels that selectors match against: the pod
// template labels for controllers, or direct metadata labels for bare Pods.
func PodLabels(doc *Document) map[string]string {
	if doc.Kind == "Pod" {
		if v, ok := GetPath(doc.Content, "metadata.labels"); ok {
			return StringMap(v)
		}
		return nil
	}
	path := "spec.template.metadata.labels"
	if doc.Kind == "CronJob" {
		path = "spec.jobTemplate.spec.template.metadata.labels"
	}
	if v, ok := GetPath(doc.Content, path); ok {
		return StringMap(v)
	}
	return nil
}

// Containers returns the container list of a pod spec.
func Containers(podSpec map[string]interface{}) []map[string]interface{} {
	return MapSlice(podSpec, "containers")
}

// IsWorkloadKind reports whether the kind carries a pod spec.
func IsWorkloadKind(kind string) bool {
	_, ok := podSpecPaths[kind]
	return ok
}
