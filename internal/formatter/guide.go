package formatter

import (
	"fmt"
	"sort"
	"strings"
)

// checklistTopics is the static audit checklist shown by the checklist
// command. Keys are topic identifiers users can pass to narrow the output.
var checklistTopics = map[string]string{
	"syntax": `Syntax & Formatting
  - Tabs are not valid YAML indentation; use spaces.
  - Every mapping key needs a colon, and a space after it.
  - Separate documents in one file with a line containing only "---".`,
	"api": `API Versions
  - extensions/v1beta1 and friends are retired; workloads live in apps/v1,
    Ingress and NetworkPolicy in networking.k8s.io/v1.
  - Removed APIs (e.g. PodSecurityPolicy) have no drop-in replacement and
    must be migrated by hand.`,
	"security": `Security Posture
  - Avoid privileged containers; grant individual capabilities instead.
  - Set automountServiceAccountToken: false unless the pod talks to the
    API server.
  - Avoid wildcard apiGroups/resources/verbs in Roles and ClusterRoles.`,
	"stability": `Stability & Scaling
  - Every container should declare resources.requests and resources.limits.
  - HorizontalPodAutoscaler targets need resource requests, or the metric
    is meaningless to the scheduler.
  - StatefulSets need a headless (clusterIP: None) governing Service.`,
	"wiring": `Cross-Resource Wiring
  - Service selectors must match pod template labels in the same namespace.
  - Service targetPort must match a declared containerPort number or name.
  - Ingress backends must name an existing Service and one of its ports.
  - Mounted ConfigMaps and Secrets must exist in the workload's namespace.`,
}

// Checklist renders the audit checklist, optionally narrowed to one topic.
func Checklist(topic string) (string, error) {
	if topic != "" {
		entry, ok := checklistTopics[topic]
		if !ok {
			return "", fmt.Errorf("unknown checklist topic %q (available: %s)", topic, strings.Join(checklistTopicNames(), ", "))
		}
		return entry + "\n", nil
	}

	var builder strings.Builder
	for _, name := range checklistTopicNames() {
		builder.WriteString(checklistTopics[name])
		builder.WriteString("\n\n")
	}
	return builder.String(), nil
}

func checklistTopicNames() []string {
	names := make([]string, 0, len(checklistTopics))
	for name := range checklistTopics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
