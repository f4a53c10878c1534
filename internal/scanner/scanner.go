// Package scanner orchestrates a scan session: it expands the target into
// manifest sources, repairs and parses each file on a bounded worker pool,
// evaluates the per-document rule catalog, and runs the cross-resource
// correlation pass once the whole batch has been ingested.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fixmyk8s/kubecuro/internal/healer"
	"github.com/fixmyk8s/kubecuro/internal/logger"
	"github.com/fixmyk8s/kubecuro/internal/manifest"
	"github.com/fixmyk8s/kubecuro/internal/resolver"
	"github.com/fixmyk8s/kubecuro/internal/shield"
	"github.com/fixmyk8s/kubecuro/internal/synapse"
	"github.com/fixmyk8s/kubecuro/internal/types"
)

// CodeSyntax reports that a file's healed form differs from the original.
const CodeSyntax = "SYNTAX"

// Options holds configuration for a scan session.
type Options struct {
	// ApplyFixes enables automatic remediation of repairable findings
	ApplyFixes bool
	// DryRun reports what would be fixed without touching any file
	DryRun bool
	// MaxConcurrency bounds the per-file worker pool
	MaxConcurrency int
	// FollowSymlinks determines if symlinked files are scanned
	FollowSymlinks bool
	// TabWidth is the number of spaces substituted for tab characters
	TabWidth int
	// Values is a path to a values.yaml file for helm chart targets
	Values string
}

// DefaultOptions returns the default scan options.
func DefaultOptions() *Options {
	return &Options{
		MaxConcurrency: 4,
		TabWidth:       2,
	}
}

// Scanner runs scan sessions. One Scanner may run many sessions; the
// accumulated resource graph is per session, never shared.
type Scanner struct {
	opts   *Options
	healer *healer.Healer
	shield *shield.Shield
}

// New creates a Scanner with the given options.
func New(opts *Options) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Scanner{
		opts:   opts,
		healer: healer.New(opts.TabWidth),
		shield: shield.New(),
	}
}

// fileResult carries everything the barrier needs from one worker.
type fileResult struct {
	index  int
	source resolver.Source
	heal   healer.Result
	docs   []*manifest.Document
	graph  *synapse.Graph
	notes  []string
	err    error
}

// Scan processes the target and returns the unified report. Unreadable or
// unparsable files degrade to notes; the only hard error is a target that
// cannot be resolved at all.
func (s *Scanner) Scan(ctx context.Context, target string) (*types.Report, error) {
	res := resolver.New(&resolver.Options{
		FollowSymlinks: s.opts.FollowSymlinks,
		Values:         s.opts.Values,
	})
	sources, err := res.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	results := s.ingest(ctx, sources)

	report := &types.Report{Target: target, Files: len(sources)}
	graph := synapse.NewGraph()
	var allDocs []*manifest.Document

	// Barrier: merge per-file results in deterministic source order.
	for _, fr := range results {
		if fr.err != nil {
			report.Notes = append(report.Notes, fmt.Sprintf("%s: %v", fr.source.Path, fr.err))
			continue
		}
		report.Notes = append(report.Notes, fr.notes...)
		graph.Merge(fr.graph)
		allDocs = append(allDocs, fr.docs...)
	}

	// Per-document rules run after the merge so cross-file references
	// (HPA scale targets) resolve across the whole batch.
	applyFixes := s.opts.ApplyFixes
	for _, fr := range results {
		if fr.err != nil {
			continue
		}
		if fr.heal.Changed {
			report.Findings = append(report.Findings, s.syntaxFinding(fr))
			report.HealedFiles = append(report.HealedFiles, fr.source.Path)
		}
		var patched bool
		for _, doc := range fr.docs {
			findings := s.shield.Scan(doc, allDocs, applyFixes)
			report.Findings = append(report.Findings, findings...)
			if applyFixes && hasPatchableFinding(findings) {
				patched = true
			}
		}
		if applyFixes && !s.opts.DryRun {
			if err := s.persist(fr, patched); err != nil {
				report.Notes = append(report.Notes, fmt.Sprintf("%s: fix not written: %v", fr.source.Path, err))
			}
		}
	}

	report.Findings = append(report.Findings, graph.Correlate()...)
	report.Timestamp = time.Now().Unix()
	return report, nil
}

// ScanContent runs a single in-memory scan over raw manifest text, used by
// the HTTP API. Detection only: content is never written anywhere.
func (s *Scanner) ScanContent(content []byte, name string) *types.Report {
	report := &types.Report{Target: name, Files: 1}

	heal := s.healer.Repair(string(content))
	docs, warnings := manifest.Parse([]byte(heal.Healed), name)
	report.Notes = append(report.Notes, warnings...)

	if heal.Changed {
		report.Findings = append(report.Findings, types.Finding{
			Code:        CodeSyntax,
			Severity:    types.SeverityLow,
			File:        name,
			Message:     "Manifest has repairable syntax or formatting defects.",
			Remediation: "Run kubecuro fix to apply the repairs.",
			Engine:      types.EngineHealer,
		})
	}

	graph := synapse.NewGraph()
	graph.Ingest(docs)
	for _, doc := range docs {
		report.Findings = append(report.Findings, s.shield.Scan(doc, docs, false)...)
	}
	report.Findings = append(report.Findings, graph.Correlate()...)
	report.Timestamp = time.Now().Unix()
	return report
}

// ingest runs the embarrassingly parallel phase: each file's repair, parse
// and graph extraction touches only that file's data. Results are returned
// indexed so merge order is independent of worker scheduling.
func (s *Scanner) ingest(ctx context.Context, sources []resolver.Source) []fileResult {
	results := make([]fileResult, len(sources))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.opts.MaxConcurrency
	if workers > len(sources) {
		workers = len(sources)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.processSource(sources[i], i)
			}
		}()
	}

dispatch:
	for i := range sources {
		select {
		case <-ctx.Done():
			// aborting mid-batch discards the undispatched remainder;
			// marking it errored keeps the merge barrier away from
			// half-built results
			for j := i; j < len(sources); j++ {
				results[j] = fileResult{index: j, source: sources[j], err: ctx.Err()}
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (s *Scanner) processSource(source resolver.Source, index int) fileResult {
	fr := fileResult{index: index, source: source}

	if source.Err != nil {
		fr.err = source.Err
		return fr
	}

	fr.heal = s.healer.Repair(string(source.Content))

	// Documents are parsed from the healed text so a file with repairable
	// syntax defects still feeds the rule catalog and the resource graph.
	docs, warnings := manifest.Parse([]byte(fr.heal.Healed), source.Path)
	fr.docs = docs
	fr.notes = warnings

	fr.graph = synapse.NewGraph()
	fr.graph.Ingest(docs)

	logger.Debug().Msgf("ingested %s: %d documents, healed=%v", source.Path, len(docs), fr.heal.Changed)
	return fr
}

func (s *Scanner) syntaxFinding(fr fileResult) types.Finding {
	message := "Manifest has repairable syntax or formatting defects."
	remediation := "Run kubecuro fix to apply the repairs."
	if s.opts.ApplyFixes && !s.opts.DryRun && fr.source.Writable {
		message = "Applied syntax and formatting repairs."
		remediation = ""
	}
	return types.Finding{
		Code:        CodeSyntax,
		Severity:    types.SeverityLow,
		File:        fr.source.Path,
		Message:     message,
		Remediation: remediation,
		Engine:      types.EngineHealer,
	}
}

// persist writes the repaired form of one file. When the rule catalog
// patched parsed documents, the patched serialization wins over the healed
// text; otherwise the format-preserving healed text is written.
func (s *Scanner) persist(fr fileResult, patched bool) error {
	if !fr.source.Writable {
		return nil
	}

	var out []byte
	switch {
	case patched:
		body, err := marshalDocuments(fr.docs)
		if err != nil {
			return err
		}
		out = body
	case fr.heal.Changed:
		out = []byte(fr.heal.Healed)
	default:
		return nil
	}

	if bytes.Equal(out, fr.source.Content) {
		return nil
	}
	return writeFileAtomic(fr.source.Path, out)
}

func marshalDocuments(docs []*manifest.Document) ([]byte, error) {
	var buf bytes.Buffer
	for i, doc := range docs {
		if i > 0 {
			buf.WriteString("---\n")
		}
		raw, err := doc.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize document %q: %w", doc.Name, err)
		}
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes via a temp file and rename so the original is left
// untouched if anything fails mid-write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".kubecuro-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode())
	}
	return os.Rename(tmpName, path)
}

// hasPatchableFinding reports whether any finding's rule has a safe
// automatic remediation that was applied to the parsed documents.
func hasPatchableFinding(findings []types.Finding) bool {
	for _, f := range findings {
		switch f.Code {
		case shield.CodeSecPrivileged, shield.CodeSecTokenAudit, shield.CodeOOMRisk:
			return true
		case shield.CodeAPIDeprecated:
			// removed APIs are reported but never rewritten
			if f.Severity != types.SeverityCritical {
				return true
			}
		}
	}
	return false
}

// SortFindings orders findings by severity (highest first), then file, then
// code, for presentation surfaces that want triage order instead of
// discovery order.
func SortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Code < findings[j].Code
	})
}
