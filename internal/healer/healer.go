// Package healer repairs common syntax defects in Kubernetes manifest text
// and rewrites retired API versions during the same parse. Repair is
// best-effort: a document that cannot be parsed is passed through verbatim
// and never aborts processing of its siblings.
package healer

import (
	"regexp"
	"strings"

	"github.com/fixmyk8s/kubecuro/internal/logger"
	"github.com/fixmyk8s/kubecuro/internal/manifest"
	"github.com/fixmyk8s/kubecuro/internal/shield"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// Issue codes reported by the repair pass.
const (
	CodeTabIndent     = "TAB_INDENT"
	CodeMissingColon  = "MISSING_COLON"
	CodeColonSpacing  = "COLON_SPACING"
	CodeAPIDeprecated = shield.CodeAPIDeprecated
)

var (
	// bare key with no trailing colon, not a comment or list item
	bareKeyRe = regexp.MustCompile(`^(\s*)([A-Za-z_][A-Za-z0-9_./-]*)\s*$`)
	// key immediately followed by a colon with no space before the value
	colonSpacingRe = regexp.MustCompile(`^(\s*(?:- )?)([A-Za-z_][A-Za-z0-9_./-]*):(\S.*)$`)
)

// Result is the outcome of repairing one file's text.
type Result struct {
	// Healed is the repaired text; equal to the input when nothing applied
	Healed string
	// Changed reports whether the healed form differs from the original
	// after trimming incidental whitespace
	Changed bool
	// Codes is the set of issue codes triggered during the repair parse
	Codes map[string]bool
}

// Healer applies conservative, idempotent textual repairs and canonical
// re-serialization to manifest text.
type Healer struct {
	tabWidth int
}

// New creates a Healer. tabWidth is the number of spaces substituted for a
// tab character; values below one fall back to two.
func New(tabWidth int) *Healer {
	if tabWidth < 1 {
		tabWidth = 2
	}
	return &Healer{tabWidth: tabWidth}
}

// Repair splits text into documents, repairs each independently and rejoins
// them. It never fails: unexpected parser behavior degrades to returning the
// input unchanged.
func (h *Healer) Repair(text string) (res Result) {
	res = Result{Healed: text, Codes: map[string]bool{}}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Msgf("repair aborted, keeping original text: %v", r)
			res = Result{Healed: text, Codes: map[string]bool{}}
		}
	}()

	chunks, leading := manifest.Split(text)
	healed := make([]string, len(chunks))
	for i, chunk := range chunks {
		healed[i] = h.repairChunk(chunk, res.Codes)
	}

	res.Healed = manifest.Join(healed, leading)
	res.Changed = normalize(text) != normalize(res.Healed)
	return res
}

// repairChunk applies the textual fixes and, when the result parses,
// canonical re-serialization plus the deprecation rewrite.
func (h *Healer) repairChunk(chunk string, codes map[string]bool) string {
	if strings.TrimSpace(chunk) == "" {
		return chunk
	}

	repaired := h.repairText(chunk, codes)

	node, err := kyaml.Parse(repaired)
	if err != nil || node == nil {
		// Keep the textually repaired but unparsed chunk verbatim.
		return repaired
	}

	if h.rewriteDeprecated(node) {
		codes[CodeAPIDeprecated] = true
	}

	serialized, err := node.String()
	if err != nil {
		return repaired
	}
	return strings.TrimSuffix(serialized, "\n")
}

// repairText applies the ordered line-level fixes. Every fix is idempotent:
// running it over already-repaired text is a no-op.
func (h *Healer) repairText(chunk string, codes map[string]bool) string {
	lines := strings.Split(chunk, "\n")
	indent := strings.Repeat(" ", h.tabWidth)

	for i, line := range lines {
		if strings.Contains(line, "\t") {
			line = strings.ReplaceAll(line, "\t", indent)
			codes[CodeTabIndent] = true
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"), strings.HasPrefix(trimmed, "-"):
			// comments, blanks and list items are left alone
		case bareKeyRe.MatchString(line) && !strings.Contains(line, ":"):
			line = strings.TrimRight(line, " ") + ":"
			codes[CodeMissingColon] = true
		}

		if m := colonSpacingRe.FindStringSubmatch(line); m != nil {
			line = m[1] + m[2] + ": " + m[3]
			codes[CodeColonSpacing] = true
		}

		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// rewriteDeprecated reports whether the document declares a retired API
// version, rewriting it to the stable replacement when one exists. A removed
// API has no safe replacement and is only reported.
func (h *Healer) rewriteDeprecated(node *kyaml.RNode) bool {
	api := node.GetApiVersion()
	if api == "" {
		return false
	}
	replacement, removed, ok := shield.ResolveDeprecation(api, node.GetKind())
	if !ok {
		return false
	}
	if !removed && replacement != "" {
		node.SetApiVersion(replacement)
	}
	return true
}

// normalize strips incidental whitespace so that changed-detection ignores
// trailing spaces and surrounding blank lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
