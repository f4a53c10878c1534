// Package shield evaluates stateless security and stability rules against
// individual manifest documents, and optionally patches the documents with
// safe defaults when fixes are requested.
package shield

import (
	"fmt"

	"github.com/fixmyk8s/kubecuro/internal/logger"
	"github.com/fixmyk8s/kubecuro/internal/manifest"
	"github.com/fixmyk8s/kubecuro/internal/types"
)

// Rule identifiers, in evaluation order.
const (
	CodeAPIDeprecated = "API_DEPRECATED"
	CodeSecPrivileged = "SEC_PRIVILEGED"
	CodeSecTokenAudit = "SEC_TOKEN_AUDIT"
	CodeOOMRisk       = "OOM_RISK"
	CodeRBACWild      = "RBAC_WILD"
	CodeHPAMissingReq = "HPA_MISSING_REQ"
)

// Default container limits injected by the OOM_RISK fix.
const (
	defaultCPULimit    = "500m"
	defaultMemoryLimit = "512Mi"
)

// Shield is the per-document rule catalog.
type Shield struct{}

// New creates a Shield.
func New() *Shield {
	return &Shield{}
}

// rule is one independent check. Rules never return errors: a document too
// strangely shaped for a rule simply yields no findings for it.
type rule struct {
	id string
	fn func(s *Shield, doc *manifest.Document, all []*manifest.Document, applyFixes bool) []types.Finding
}

// rules are evaluated in id order so output is reproducible.
var rules = []rule{
	{CodeAPIDeprecated, (*Shield).checkDeprecatedAPI},
	{CodeSecPrivileged, (*Shield).checkPrivileged},
	{CodeSecTokenAudit, (*Shield).checkTokenAutomount},
	{CodeOOMRisk, (*Shield).checkResourceLimits},
	{CodeRBACWild, (*Shield).checkRBACWildcards},
	{CodeHPAMissingReq, (*Shield).checkHPARequests},
}

// Scan evaluates every rule against the document. When applyFixes is true,
// rules with a safe automatic remediation patch the document content in
// place. A panicking rule is contained so one unexpectedly-shaped document
// cannot suppress findings from the remaining rules.
func (s *Shield) Scan(doc *manifest.Document, all []*manifest.Document, applyFixes bool) []types.Finding {
	if doc == nil || doc.Content == nil {
		return nil
	}

	var findings []types.Finding
	for _, r := range rules {
		findings = append(findings, s.runRule(r, doc, all, applyFixes)...)
	}
	return findings
}

func (s *Shield) runRule(r rule, doc *manifest.Document, all []*manifest.Document, applyFixes bool) (out []types.Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn().Msgf("rule %s skipped for %s/%s: %v", r.id, doc.OriginFile, doc.Name, rec)
			out = nil
		}
	}()
	return r.fn(s, doc, all, applyFixes)
}

func (s *Shield) checkDeprecatedAPI(doc *manifest.Document, _ []*manifest.Document, applyFixes bool) []types.Finding {
	replacement, removed, ok := ResolveDeprecation(doc.APIVersion, doc.Kind)
	if !ok {
		return nil
	}

	if removed {
		return []types.Finding{{
			Code:        CodeAPIDeprecated,
			Severity:    types.SeverityCritical,
			File:        doc.OriginFile,
			Message:     fmt.Sprintf("%s %q uses API %q which has been removed without a drop-in replacement", doc.Kind, doc.Name, doc.APIVersion),
			Remediation: "Migrate the resource to a supported API; no automatic rewrite is possible.",
			Engine:      types.EngineShield,
		}}
	}

	finding := types.Finding{
		Code:        CodeAPIDeprecated,
		Severity:    types.SeverityMedium,
		File:        doc.OriginFile,
		Message:     fmt.Sprintf("%s %q uses deprecated API %q, retired in modern clusters", doc.Kind, doc.Name, doc.APIVersion),
		Remediation: fmt.Sprintf("Update apiVersion to %q.", replacement),
		Engine:      types.EngineShield,
	}
	if applyFixes {
		doc.SetAPIVersion(replacement)
	}
	return []types.Finding{finding}
}

func (s *Shield) checkPrivileged(doc *manifest.Document, _ []*manifest.Document, applyFixes bool) []types.Finding {
	podSpec, ok := manifest.PodSpec(doc)
	if !ok {
		return nil
	}

	var findings []types.Finding
	for _, container := range manifest.Containers(podSpec) {
		sc, ok := manifest.GetMap(container, "securityContext")
		if !ok {
			continue
		}
		if privileged, _ := manifest.GetBool(sc, "privileged"); !privileged {
			continue
		}
		name, _ := manifest.GetString(container, "name")
		findings = append(findings, types.Finding{
			Code:        CodeSecPrivileged,
			Severity:    types.SeverityHigh,
			File:        doc.OriginFile,
			Message:     fmt.Sprintf("container %q in %s %q runs privileged", name, doc.Kind, doc.Name),
			Remediation: "Set securityContext.privileged to false; grant individual capabilities instead.",
			Engine:      types.EngineShield,
		})
		if applyFixes {
			sc["privileged"] = false
		}
	}
	return findings
}

func (s *Shield) checkTokenAutomount(doc *manifest.Document, _ []*manifest.Document, applyFixes bool) []types.Finding {
	podSpec, ok := manifest.PodSpec(doc)
	if !ok {
		return nil
	}
	if _, declared := podSpec["automountServiceAccountToken"]; declared {
		return nil
	}

	if applyFixes {
		podSpec["automountServiceAccountToken"] = false
	}
	return []types.Finding{{
		Code:        CodeSecTokenAudit,
		Severity:    types.SeverityLow,
		File:        doc.OriginFile,
		Message:     fmt.Sprintf("%s %q does not declare automountServiceAccountToken", doc.Kind, doc.Name),
		Remediation: "Set automountServiceAccountToken: false unless the workload talks to the API server.",
		Engine:      types.EngineShield,
	}}
}

func (s *Shield) checkResourceLimits(doc *manifest.Document, _ []*manifest.Document, applyFixes bool) []types.Finding {
	podSpec, ok := manifest.PodSpec(doc)
	if !ok {
		return nil
	}

	var findings []types.Finding
	for _, container := range manifest.Containers(podSpec) {
		if _, ok := manifest.GetMap(container, "resources.limits"); ok {
			continue
		}
		name, _ := manifest.GetString(container, "name")
		findings = append(findings, types.Finding{
			Code:        CodeOOMRisk,
			Severity:    types.SeverityMedium,
			File:        doc.OriginFile,
			Message:     fmt.Sprintf("container %q in %s %q has no resource limits and can starve the node", name, doc.Kind, doc.Name),
			Remediation: fmt.Sprintf("Add resources.limits (e.g. cpu: %s, memory: %s).", defaultCPULimit, defaultMemoryLimit),
			Engine:      types.EngineShield,
		})
		if applyFixes {
			resources, ok := manifest.GetMap(container, "resources")
			if !ok {
				resources = map[string]interface{}{}
				container["resources"] = resources
			}
			resources["limits"] = map[string]interface{}{
				"cpu":    defaultCPULimit,
				"memory": defaultMemoryLimit,
			}
		}
	}
	return findings
}

// checkRBACWildcards is detection-only: broad grants need human review and
// are never rewritten.
func (s *Shield) checkRBACWildcards(doc *manifest.Document, _ []*manifest.Document, _ bool) []types.Finding {
	if doc.Kind != "Role" && doc.Kind != "ClusterRole" {
		return nil
	}

	var findings []types.Finding
	for i, policyRule := range manifest.MapSlice(doc.Content, "rules") {
		if !hasWildcard(policyRule, "apiGroups") &&
			!hasWildcard(policyRule, "resources") &&
			!hasWildcard(policyRule, "verbs") {
			continue
		}
		findings = append(findings, types.Finding{
			Code:        CodeRBACWild,
			Severity:    types.SeverityHigh,
			File:        doc.OriginFile,
			Message:     fmt.Sprintf("%s %q rule %d grants wildcard permissions", doc.Kind, doc.Name, i+1),
			Remediation: "Replace \"*\" with the explicit apiGroups, resources and verbs the subject needs.",
			Engine:      types.EngineShield,
		})
	}
	return findings
}

func (s *Shield) checkHPARequests(doc *manifest.Document, all []*manifest.Document, _ bool) []types.Finding {
	if doc.Kind != "HorizontalPodAutoscaler" {
		return nil
	}

	refName, _ := manifest.GetString(doc.Content, "spec.scaleTargetRef.name")
	refKind, _ := manifest.GetString(doc.Content, "spec.scaleTargetRef.kind")
	if refName == "" || refKind == "" {
		return nil
	}

	target := resolveScaleTarget(doc, all, refKind, refName)
	if target == nil {
		return nil
	}
	podSpec, ok := manifest.PodSpec(target)
	if !ok {
		return nil
	}

	var findings []types.Finding
	for _, container := range manifest.Containers(podSpec) {
		if _, ok := manifest.GetMap(container, "resources.requests"); ok {
			continue
		}
		name, _ := manifest.GetString(container, "name")
		findings = append(findings, types.Finding{
			Code:        CodeHPAMissingReq,
			Severity:    types.SeverityHigh,
			File:        doc.OriginFile,
			Message:     fmt.Sprintf("HorizontalPodAutoscaler %q targets %s %q whose container %q has no resource requests", doc.Name, refKind, refName, name),
			Remediation: "Declare resources.requests on the target containers so the autoscaler metric is meaningful.",
			Engine:      types.EngineShield,
		})
	}
	return findings
}

// resolveScaleTarget finds the workload an HPA points at. Scale targets are
// namespace-local, so the lookup never crosses the HPA's namespace.
func resolveScaleTarget(hpa *manifest.Document, all []*manifest.Document, kind, name string) *manifest.Document {
	for _, candidate := range all {
		if candidate.Kind == kind && candidate.Name == name && candidate.Namespace == hpa.Namespace {
			return candidate
		}
	}
	return nil
}

func hasWildcard(policyRule map[string]interface{}, field string) bool {
	items, ok := manifest.GetSlice(policyRule, field)
	if !ok {
		return false
	}
	for _, item := range items {
		if s, ok := item.(string); ok && s == "*" {
			return true
		}
	}
	return false
}
