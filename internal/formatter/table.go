package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fixmyk8s/kubecuro/internal/scanner"
	"github.com/fixmyk8s/kubecuro/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table implements terminal table formatting
type Table struct{}

// Format renders the diagnostic report as a table, followed by a
// remediation guide for every distinct rule that fired.
func (t *Table) Format(report *types.Report) (string, error) {
	var builder strings.Builder

	findings := make([]types.Finding, len(report.Findings))
	copy(findings, report.Findings)
	scanner.SortFindings(findings)

	resultTable := table.NewWriter()
	resultTable.SetOutputMirror(nil)
	resultTable.SetStyle(table.StyleLight)
	resultTable.Style().Options.SeparateColumns = true

	resultTable.SetTitle("DIAGNOSTIC REPORT")
	resultTable.AppendHeader(table.Row{
		"SEVERITY",
		"RULE",
		"ENGINE",
		"LOCATION",
		"MESSAGE",
	})

	for _, f := range findings {
		resultTable.AppendRow(table.Row{
			f.Severity.String(),
			f.Code,
			string(f.Engine),
			f.File,
			f.Message,
		})
	}

	builder.WriteString(resultTable.Render())
	builder.WriteString("\n")

	if len(report.HealedFiles) > 0 {
		builder.WriteString(fmt.Sprintf("\nHealed files: %s\n", strings.Join(report.HealedFiles, ", ")))
	}
	for _, note := range report.Notes {
		builder.WriteString(fmt.Sprintf("note: %s\n", note))
	}

	if guide := remediationGuide(findings); guide != "" {
		builder.WriteString(guide)
	}

	builder.WriteString(fmt.Sprintf("\n%d findings across %d files (%d blocking)\n",
		len(findings), report.Files, report.BlockingCount()))

	return builder.String(), nil
}

// remediationGuide lists one actionable hint per distinct rule that fired.
func remediationGuide(findings []types.Finding) string {
	hints := make(map[string]string)
	for _, f := range findings {
		if f.Remediation == "" {
			continue
		}
		if _, seen := hints[f.Code]; !seen {
			hints[f.Code] = f.Remediation
		}
	}
	if len(hints) == 0 {
		return ""
	}

	codes := make([]string, 0, len(hints))
	for code := range hints {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var builder strings.Builder
	builder.WriteString("\nSUGGESTED REMEDIATIONS:\n")
	for _, code := range codes {
		builder.WriteString(fmt.Sprintf("  [%s] %s\n", code, hints[code]))
	}
	return builder.String()
}
