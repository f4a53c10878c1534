// Package types defines the shared result types produced by the KubeCuro engines.
package types

import "fmt"

// Severity ranks how damaging a finding is at runtime.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return ""
	}
}

// MarshalText makes Severity render as its name in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name, so API clients can decode reports
// back into typed findings.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LOW":
		*s = SeverityLow
	case "MEDIUM":
		*s = SeverityMedium
	case "HIGH":
		*s = SeverityHigh
	case "CRITICAL":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Engine identifies which diagnostic engine produced a finding.
type Engine string

const (
	// EngineHealer repairs manifest syntax and rewrites retired API versions.
	EngineHealer Engine = "Healer"
	// EngineShield evaluates per-document security and stability rules.
	EngineShield Engine = "Shield"
	// EngineSynapse evaluates cross-resource consistency rules.
	EngineSynapse Engine = "Synapse"
)

// Finding is the canonical reporting unit for every engine. Once created it
// is never mutated.
type Finding struct {
	// Code is the rule identifier, e.g. GHOST or SEC_PRIVILEGED
	Code string `json:"code" yaml:"code"`
	// Severity of the finding
	Severity Severity `json:"severity" yaml:"severity"`
	// File is the manifest file the finding originated from
	File string `json:"file" yaml:"file"`
	// Line is the source line when known, zero otherwise
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
	// Message describes the detected problem
	Message string `json:"message" yaml:"message"`
	// Remediation is an actionable hint for fixing the problem
	Remediation string `json:"remediation,omitempty" yaml:"remediation,omitempty"`
	// Engine that generated the finding
	Engine Engine `json:"engine" yaml:"engine"`
}

// IsBlocking reports whether the finding should fail a CI gate.
func (f Finding) IsBlocking() bool {
	return f.Severity >= SeverityHigh
}

// Report aggregates the outcome of one scan session.
type Report struct {
	// Target is the file or directory that was scanned
	Target string `json:"target" yaml:"target"`
	// Files is the number of manifest files processed
	Files int `json:"files" yaml:"files"`
	// Findings from all engines, in deterministic order
	Findings []Finding `json:"findings" yaml:"findings"`
	// HealedFiles lists files whose healed form differs from the original
	HealedFiles []string `json:"healed_files,omitempty" yaml:"healed_files,omitempty"`
	// Notes carries informational per-file messages (unreadable files etc.)
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	// Timestamp is the scan completion time in unix seconds
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
}

// BlockingCount returns the number of findings that should fail a CI gate.
func (r *Report) BlockingCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.IsBlocking() {
			n++
		}
	}
	return n
}
