package synapse

import (
	"fmt"

	"github.com/fixmyk8s/kubecuro/internal/types"
)

// Rule identifiers for cross-resource findings.
const (
	CodeGhost               = "GHOST"
	CodeNamespace           = "NAMESPACE"
	CodePortMismatch        = "PORT_MISMATCH"
	CodeIngressOrphan       = "INGRESS_ORPHAN"
	CodeIngressPortMismatch = "INGRESS_PORT_MISMATCH"
	CodeVolMissing          = "VOL_MISSING"
	CodeProbeGap            = "PROBE_GAP"
	CodeStsService          = "STS_SVC"
	CodeStsClusterIP        = "STS_IP"
	CodeHPATarget           = "HPA_TARGET"
	CodeNetpolWarn          = "NETPOL_WARN"
)

// headlessClusterIP is the sentinel a StatefulSet governing service must use.
const headlessClusterIP = "None"

// Correlate evaluates every cross-document rule over the accumulated graph.
// It must run only after every file in the batch has been ingested; it reads
// the whole index and mutates nothing, so one call per scan session.
func (g *Graph) Correlate() []types.Finding {
	var findings []types.Finding
	findings = append(findings, g.checkServices()...)
	findings = append(findings, g.checkIngresses()...)
	findings = append(findings, g.checkVolumes()...)
	findings = append(findings, g.checkProbes()...)
	findings = append(findings, g.checkStatefulSets()...)
	findings = append(findings, g.checkAutoscalers()...)
	findings = append(findings, g.checkNetworkPolicies()...)
	return findings
}

// checkServices runs GHOST, NAMESPACE and PORT_MISMATCH. Matching is
// namespace-first, then label-subset; a service whose selector matches
// nothing at all is a ghost, while label matches stranded in another
// namespace are a placement problem, not a selector problem.
func (g *Graph) checkServices() []types.Finding {
	var findings []types.Finding

	for _, svc := range g.services {
		if len(svc.Selector) == 0 {
			// headless/manual-endpoint services are excluded from matching
			continue
		}

		var labelMatches []Workload
		for _, w := range g.workloads {
			if selectorMatches(svc.Selector, w.Labels) {
				labelMatches = append(labelMatches, w)
			}
		}

		if len(labelMatches) == 0 {
			findings = append(findings, types.Finding{
				Code:        CodeGhost,
				Severity:    types.SeverityHigh,
				File:        svc.File,
				Message:     fmt.Sprintf("Service %q selects labels %v but no workload matches; the service routes nowhere", svc.Name, svc.Selector),
				Remediation: "Update the Service selector to match the workload's pod template labels.",
				Engine:      types.EngineSynapse,
			})
			continue
		}

		var nsMatches []Workload
		for _, w := range labelMatches {
			if w.Namespace == svc.Namespace {
				nsMatches = append(nsMatches, w)
			}
		}
		if len(nsMatches) == 0 {
			findings = append(findings, types.Finding{
				Code:        CodeNamespace,
				Severity:    types.SeverityMedium,
				File:        svc.File,
				Message:     fmt.Sprintf("Service %q matches workloads by label, but none share namespace %q", svc.Name, svc.Namespace),
				Remediation: "Move the Service and its workloads into the same namespace.",
				Engine:      types.EngineSynapse,
			})
			continue
		}

		for _, sp := range svc.Ports {
			// targetPort defaults to port, mirroring the platform rule
			target := sp.TargetPort
			if target == "" {
				target = sp.Port
			}
			if target == "" {
				continue
			}
			exposed := false
			for _, w := range nsMatches {
				if w.Ports[target] {
					exposed = true
					break
				}
			}
			if !exposed {
				findings = append(findings, types.Finding{
					Code:        CodePortMismatch,
					Severity:    types.SeverityHigh,
					File:        svc.File,
					Message:     fmt.Sprintf("Service %q targets port %q, but matching workloads in %q do not expose it", svc.Name, target, svc.Namespace),
					Remediation: "Align the Service targetPort with a declared containerPort number or name.",
					Engine:      types.EngineSynapse,
				})
			}
		}
	}
	return findings
}

func (g *Graph) checkIngresses() []types.Finding {
	var findings []types.Finding

	for _, ing := range g.ingresses {
		for _, backend := range ing.Backends {
			svc := g.findService(ing.Namespace, backend.ServiceName)
			if svc == nil {
				findings = append(findings, types.Finding{
					Code:        CodeIngressOrphan,
					Severity:    types.SeverityHigh,
					File:        ing.File,
					Message:     fmt.Sprintf("Ingress %q routes to Service %q which does not exist in namespace %q", ing.Name, backend.ServiceName, ing.Namespace),
					Remediation: "Create the backend Service or fix the Ingress backend name.",
					Engine:      types.EngineSynapse,
				})
				continue
			}
			if backend.Port == "" {
				continue
			}
			found := false
			for _, sp := range svc.Ports {
				// a backend may reference the port by number or by name
				if sp.Port == backend.Port || (sp.Name != "" && sp.Name == backend.Port) {
					found = true
					break
				}
			}
			if !found {
				findings = append(findings, types.Finding{
					Code:        CodeIngressPortMismatch,
					Severity:    types.SeverityCritical,
					File:        ing.File,
					Message:     fmt.Sprintf("Ingress %q requests port %q on Service %q, which only exposes %v", ing.Name, backend.Port, svc.Name, servicePortList(svc)),
					Remediation: "Point the Ingress backend at a port the Service actually declares.",
					Engine:      types.EngineSynapse,
				})
			}
		}
	}
	return findings
}

func (g *Graph) checkVolumes() []types.Finding {
	var findings []types.Finding
	for _, w := range g.workloads {
		for _, ref := range w.VolumeRefs {
			if g.configs[configKey(w.Namespace, ref.Kind, ref.Name)] {
				continue
			}
			findings = append(findings, types.Finding{
				Code:        CodeVolMissing,
				Severity:    types.SeverityMedium,
				File:        w.File,
				Message:     fmt.Sprintf("%s %q mounts %s %q which is not defined in namespace %q", w.Kind, w.Name, ref.Kind, ref.Name, w.Namespace),
				Remediation: fmt.Sprintf("Create the referenced %s or correct the volume reference.", ref.Kind),
				Engine:      types.EngineSynapse,
			})
		}
	}
	return findings
}

func (g *Graph) checkProbes() []types.Finding {
	var findings []types.Finding
	for _, w := range g.workloads {
		for _, probe := range w.Probes {
			if probe.Port == "" || w.Ports[probe.Port] {
				continue
			}
			findings = append(findings, types.Finding{
				Code:        CodeProbeGap,
				Severity:    types.SeverityMedium,
				File:        w.File,
				Message:     fmt.Sprintf("%s %q declares a %s on port %q which no container exposes", w.Kind, w.Name, probe.Type, probe.Port),
				Remediation: "Point the probe at a declared containerPort, or declare the port.",
				Engine:      types.EngineSynapse,
			})
		}
	}
	return findings
}

// checkStatefulSets verifies the governing headless service contract.
func (g *Graph) checkStatefulSets() []types.Finding {
	var findings []types.Finding
	for _, w := range g.workloads {
		if w.Kind != "StatefulSet" || w.ServiceName == "" {
			continue
		}
		svc := g.findService(w.Namespace, w.ServiceName)
		if svc == nil {
			findings = append(findings, types.Finding{
				Code:        CodeStsService,
				Severity:    types.SeverityHigh,
				File:        w.File,
				Message:     fmt.Sprintf("StatefulSet %q names governing service %q which does not exist in namespace %q", w.Name, w.ServiceName, w.Namespace),
				Remediation: "Create the headless governing Service named by spec.serviceName.",
				Engine:      types.EngineSynapse,
			})
			continue
		}
		if svc.ClusterIP != headlessClusterIP {
			findings = append(findings, types.Finding{
				Code:        CodeStsClusterIP,
				Severity:    types.SeverityMedium,
				File:        w.File,
				Message:     fmt.Sprintf("StatefulSet %q governing service %q is not headless (clusterIP must be %q)", w.Name, svc.Name, headlessClusterIP),
				Remediation: "Set clusterIP: None on the governing Service for stable per-pod DNS.",
				Engine:      types.EngineSynapse,
			})
		}
	}
	return findings
}

// checkAutoscalers flags scale target references that resolve to nothing.
func (g *Graph) checkAutoscalers() []types.Finding {
	var findings []types.Finding
	for _, a := range g.autoscalers {
		if a.TargetKind == "" || a.TargetName == "" {
			continue
		}
		found := false
		for _, w := range g.workloads {
			if w.Kind == a.TargetKind && w.Name == a.TargetName && w.Namespace == a.Namespace {
				found = true
				break
			}
		}
		if !found {
			findings = append(findings, types.Finding{
				Code:        CodeHPATarget,
				Severity:    types.SeverityHigh,
				File:        a.File,
				Message:     fmt.Sprintf("HorizontalPodAutoscaler %q targets %s %q which does not exist in namespace %q", a.Name, a.TargetKind, a.TargetName, a.Namespace),
				Remediation: "Fix scaleTargetRef to name an existing workload in the same namespace.",
				Engine:      types.EngineSynapse,
			})
		}
	}
	return findings
}

func (g *Graph) checkNetworkPolicies() []types.Finding {
	var findings []types.Finding
	for _, np := range g.netpols {
		if !np.EmptySelector {
			continue
		}
		findings = append(findings, types.Finding{
			Code:        CodeNetpolWarn,
			Severity:    types.SeverityLow,
			File:        np.File,
			Message:     fmt.Sprintf("NetworkPolicy %q has an empty pod selector and applies to every pod in namespace %q", np.Name, np.Namespace),
			Remediation: "Add matchLabels or matchExpressions unless cluster-wide targeting is intentional.",
			Engine:      types.EngineSynapse,
		})
	}
	return findings
}

func (g *Graph) findService(namespace, name string) *Service {
	for i := range g.services {
		if g.services[i].Name == name && g.services[i].Namespace == namespace {
			return &g.services[i]
		}
	}
	return nil
}

func servicePortList(svc *Service) []string {
	out := make([]string, 0, len(svc.Ports))
	for _, sp := range svc.Ports {
		out = append(out, sp.Port)
	}
	return out
}
