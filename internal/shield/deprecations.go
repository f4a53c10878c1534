package shield

import (
	_ "embed"
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

//go:embed deprecations.yaml
var deprecationsYAMLBytes []byte

// removedMarker flags an API that was retired without a safe replacement.
const removedMarker = "removed"

// Deprecation maps one retired API version to its replacement. Either
// Replacement applies to every kind, or Kinds maps individual kinds to
// replacements with a "default" fallback.
type Deprecation struct {
	APIVersion  string            `yaml:"apiVersion"`
	Replacement string            `yaml:"replacement,omitempty"`
	Kinds       map[string]string `yaml:"kinds,omitempty"`
}

// deprecations is keyed by retired apiVersion. It is loaded once at init
// and never mutated afterwards.
var deprecations map[string]Deprecation

// validateDeprecation ensures an entry carries a usable replacement.
func validateDeprecation(d Deprecation) error {
	if d.APIVersion == "" {
		return fmt.Errorf("deprecation entry missing apiVersion")
	}
	if d.Replacement == "" && len(d.Kinds) == 0 {
		return fmt.Errorf("deprecation entry %q has neither replacement nor kinds", d.APIVersion)
	}
	return nil
}

// loadDeprecations loads and validates the table from the embedded YAML.
func loadDeprecations() error {
	var entries []Deprecation
	if err := yaml.Unmarshal(deprecationsYAMLBytes, &entries); err != nil {
		return fmt.Errorf("failed to parse deprecations YAML: %v", err)
	}

	table := make(map[string]Deprecation, len(entries))
	for _, entry := range entries {
		if err := validateDeprecation(entry); err != nil {
			return fmt.Errorf("invalid deprecation entry: %v", err)
		}
		table[entry.APIVersion] = entry
	}

	deprecations = table
	return nil
}

// ResolveDeprecation looks up a declared apiVersion in the deprecation
// table. ok reports whether the version is retired at all; removed reports
// whether the resolved replacement is the removal marker, in which case no
// automatic rewrite is safe.
func ResolveDeprecation(apiVersion, kind string) (replacement string, removed bool, ok bool) {
	entry, ok := deprecations[apiVersion]
	if !ok {
		return "", false, false
	}

	resolved := entry.Replacement
	if len(entry.Kinds) > 0 {
		var found bool
		resolved, found = entry.Kinds[kind]
		if !found {
			resolved = entry.Kinds["default"]
		}
	}

	if resolved == removedMarker {
		return "", true, true
	}
	return resolved, false, true
}

// Deprecations returns a copy of the loaded table for read-only listings.
func Deprecations() []Deprecation {
	out := make([]Deprecation, 0, len(deprecations))
	for _, d := range deprecations {
		out = append(out, d)
	}
	return out
}

func init() {
	if err := loadDeprecations(); err != nil {
		panic(fmt.Sprintf("failed to load deprecation table: %v", err))
	}
}
