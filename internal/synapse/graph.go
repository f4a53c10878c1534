// Package synapse builds an in-memory graph of related Kubernetes resources
// from a batch of manifests and evaluates cross-resource consistency rules
// over it: label/selector matching, port alignment and reference existence.
package synapse

import (
	"fmt"

	"github.com/fixmyk8s/kubecuro/internal/manifest"
)

// probeFields are the pod probe types that can carry an httpGet port.
var probeFields = []string{"livenessProbe", "readinessProbe", "startupProbe"}

// Graph accumulates typed entities over one scan session. It is owned by a
// single session and must not be reused across unrelated scans.
type Graph struct {
	workloads   []Workload
	services    []Service
	ingresses   []Ingress
	autoscalers []Autoscaler
	netpols     []NetworkPolicy
	// configs is the existence registry for ConfigMaps and Secrets,
	// keyed namespace/kind/name
	configs map[string]bool
}

// NewGraph creates an empty resource graph.
func NewGraph() *Graph {
	return &Graph{configs: make(map[string]bool)}
}

// Ingest classifies the documents of one file into the graph. Documents of
// unknown kinds are ignored; classification of one document never depends
// on another, so per-file batches may be built concurrently and merged.
func (g *Graph) Ingest(docs []*manifest.Document) {
	for _, doc := range docs {
		g.ingestDocument(doc)
	}
}

// Merge folds another graph into this one, preserving insertion order.
// Used to combine per-file graphs built on parallel workers.
func (g *Graph) Merge(other *Graph) {
	g.workloads = append(g.workloads, other.workloads...)
	g.services = append(g.services, other.services...)
	g.ingresses = append(g.ingresses, other.ingresses...)
	g.autoscalers = append(g.autoscalers, other.autoscalers...)
	g.netpols = append(g.netpols, other.netpols...)
	for k := range other.configs {
		g.configs[k] = true
	}
}

func (g *Graph) ingestDocument(doc *manifest.Document) {
	switch {
	case manifest.IsWorkloadKind(doc.Kind):
		g.workloads = append(g.workloads, extractWorkload(doc))
	case doc.Kind == "Service":
		g.services = append(g.services, extractService(doc))
	case doc.Kind == "Ingress":
		g.ingresses = append(g.ingresses, extractIngress(doc))
	case doc.Kind == "ConfigMap", doc.Kind == "Secret":
		g.configs[configKey(doc.Namespace, doc.Kind, doc.Name)] = true
	case doc.Kind == "HorizontalPodAutoscaler":
		g.autoscalers = append(g.autoscalers, extractAutoscaler(doc))
	case doc.Kind == "NetworkPolicy":
		g.netpols = append(g.netpols, extractNetworkPolicy(doc))
	}
}

func configKey(namespace, kind, name string) string {
	return fmt.Sprintf("%s/%s/%s", namespace, kind, name)
}

func extractWorkload(doc *manifest.Document) Workload {
	w := Workload{
		Kind:      doc.Kind,
		Name:      doc.Name,
		Namespace: doc.Namespace,
		Labels:    manifest.PodLabels(doc),
		Ports:     make(map[string]bool),
		File:      doc.OriginFile,
	}
	if doc.Kind == "StatefulSet" {
		w.ServiceName, _ = manifest.GetString(doc.Content, "spec.serviceName")
	}

	podSpec, ok := manifest.PodSpec(doc)
	if !ok {
		return w
	}

	for _, container := range manifest.Containers(podSpec) {
		// A port exposed both as a number and separately as a name is a
		// set union, never a conflict.
		for _, port := range manifest.MapSlice(container, "ports") {
			if v, ok := port["containerPort"]; ok {
				w.Ports[portString(v)] = true
			}
			if name, ok := manifest.GetString(port, "name"); ok && name != "" {
				w.Ports[name] = true
			}
		}

		for _, field := range probeFields {
			httpGet, ok := manifest.GetMap(container, field+".httpGet")
			if !ok {
				continue
			}
			if v, ok := httpGet["port"]; ok {
				w.Probes = append(w.Probes, Probe{Type: field, Port: portString(v)})
			}
		}
	}

	for _, volume := range manifest.MapSlice(podSpec, "volumes") {
		if name, ok := manifest.GetString(volume, "configMap.name"); ok && name != "" {
			w.VolumeRefs = append(w.VolumeRefs, VolumeRef{Kind: "ConfigMap", Name: name})
		}
		if name, ok := manifest.GetString(volume, "secret.secretName"); ok && name != "" {
			w.VolumeRefs = append(w.VolumeRefs, VolumeRef{Kind: "Secret", Name: name})
		}
	}
	return w
}

func extractService(doc *manifest.Document) Service {
	svc := Service{
		Name:      doc.Name,
		Namespace: doc.Namespace,
		File:      doc.OriginFile,
	}
	if selector, ok := manifest.GetPath(doc.Content, "spec.selector"); ok {
		svc.Selector = manifest.StringMap(selector)
	}
	if clusterIP, ok := manifest.GetString(doc.Content, "spec.clusterIP"); ok {
		svc.ClusterIP = clusterIP
	}
	for _, port := range manifest.MapSlice(doc.Content, "spec.ports") {
		sp := ServicePort{}
		if v, ok := port["port"]; ok {
			sp.Port = portString(v)
		}
		if name, ok := manifest.GetString(port, "name"); ok {
			sp.Name = name
		}
		if v, ok := port["targetPort"]; ok {
			sp.TargetPort = portString(v)
		}
		svc.Ports = append(svc.Ports, sp)
	}
	return svc
}

func extractIngress(doc *manifest.Document) Ingress {
	ing := Ingress{
		Name:      doc.Name,
		Namespace: doc.Namespace,
		File:      doc.OriginFile,
	}

	addBackend := func(backend map[string]interface{}) {
		if backend == nil {
			return
		}
		// networking.k8s.io/v1 shape
		if name, ok := manifest.GetString(backend, "service.name"); ok && name != "" {
			b := IngressBackend{ServiceName: name}
			if v, ok := manifest.GetPath(backend, "service.port.number"); ok {
				b.Port = portString(v)
			} else if v, ok := manifest.GetPath(backend, "service.port.name"); ok {
				b.Port = portString(v)
			}
			ing.Backends = append(ing.Backends, b)
			return
		}
		// legacy extensions/v1beta1 shape
		if name, ok := manifest.GetString(backend, "serviceName"); ok && name != "" {
			b := IngressBackend{ServiceName: name}
			if v, ok := backend["servicePort"]; ok {
				b.Port = portString(v)
			}
			ing.Backends = append(ing.Backends, b)
		}
	}

	if backend, ok := manifest.GetMap(doc.Content, "spec.defaultBackend"); ok {
		addBackend(backend)
	}
	for _, ruleNode := range manifest.MapSlice(doc.Content, "spec.rules") {
		for _, path := range manifest.MapSlice(ruleNode, "http.paths") {
			if backend, ok := manifest.GetMap(path, "backend"); ok {
				addBackend(backend)
			}
		}
	}
	return ing
}

func extractAutoscaler(doc *manifest.Document) Autoscaler {
	a := Autoscaler{
		Name:      doc.Name,
		Namespace: doc.Namespace,
		File:      doc.OriginFile,
	}
	a.TargetKind, _ = manifest.GetString(doc.Content, "spec.scaleTargetRef.kind")
	a.TargetName, _ = manifest.GetString(doc.Content, "spec.scaleTargetRef.name")
	return a
}

func extractNetworkPolicy(doc *manifest.Document) NetworkPolicy {
	np := NetworkPolicy{
		Name:      doc.Name,
		Namespace: doc.Namespace,
		File:      doc.OriginFile,
	}
	selector, ok := manifest.GetMap(doc.Content, "spec.podSelector")
	if !ok {
		np.EmptySelector = true
		return np
	}
	_, hasLabels := selector["matchLabels"]
	_, hasExpressions := selector["matchExpressions"]
	np.EmptySelector = !hasLabels && !hasExpressions
	return np
}
