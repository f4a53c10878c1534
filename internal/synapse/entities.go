package synapse

import (
	"fmt"
	"strings"
)

// Probe is a declared HTTP health probe and the port it targets.
type Probe struct {
	Type string
	Port string
}

// VolumeRef is a pod volume reference to a ConfigMap or Secret by name.
type VolumeRef struct {
	Kind string // ConfigMap or Secret
	Name string
}

// Workload is the derived view of a pod-carrying document. It is built once
// per scan and never mutated afterwards.
type Workload struct {
	Kind      string
	Name      string
	Namespace string
	// Labels come from the pod template, or direct metadata for bare Pods
	Labels map[string]string
	// Ports holds container port numbers and port names as one normalized
	// string set, so a number and its string form always compare equal
	Ports       map[string]bool
	Probes      []Probe
	VolumeRefs  []VolumeRef
	ServiceName string // StatefulSet governing service, empty otherwise
	File        string
}

// ServicePort pairs a service port with its declared target. Name is kept
// so Ingress backends referencing the port by name resolve.
type ServicePort struct {
	Port       string
	Name       string
	TargetPort string
}

// Service is the derived view of a Service document. A service with an
// empty selector (headless or manual endpoints) never participates in
// workload matching but stays resolvable by name.
type Service struct {
	Name      string
	Namespace string
	Selector  map[string]string
	Ports     []ServicePort
	ClusterIP string
	File      string
}

// IngressBackend is one backend reference from an Ingress rule.
type IngressBackend struct {
	ServiceName string
	Port        string
}

// Ingress is the derived view of an Ingress document.
type Ingress struct {
	Name      string
	Namespace string
	Backends  []IngressBackend
	File      string
}

// Autoscaler is the derived view of a HorizontalPodAutoscaler document.
type Autoscaler struct {
	Name       string
	Namespace  string
	TargetKind string
	TargetName string
	File       string
}

// NetworkPolicy is the derived view of a NetworkPolicy document.
type NetworkPolicy struct {
	Name          string
	Namespace     string
	EmptySelector bool
	File          string
}

// portString normalizes any scalar port value to its string form.
func portString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// selectorMatches reports whether every selector pair is present in labels.
func selectorMatches(selector, labels map[string]string) bool {
	if len(selector) == 0 {
		return false
	}
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}
