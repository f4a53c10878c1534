package main

import (
	"fmt"
	"os"

	"github.com/fixmyk8s/kubecuro/internal/formatter"
	"github.com/fixmyk8s/kubecuro/internal/scanner"
	"github.com/fixmyk8s/kubecuro/internal/types"
	"github.com/spf13/cobra"
)

var (
	scanOutput string
	scanValues string
	failOn     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Diagnose manifests without modifying them",
	Long: `Scan Kubernetes manifests for syntax defects, deprecated API versions,
security gaps, and cross-resource inconsistencies. Nothing is modified.

Examples:
  # Scan a single manifest
  kubecuro scan deployment.yaml

  # Scan every YAML file at the top level of a directory
  kubecuro scan ./k8s/

  # Scan a rendered helm chart
  kubecuro scan ./charts/app -f values.yaml

  # Emit machine-readable output
  kubecuro scan ./k8s/ -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runScan(cmd, args[0], false, false)
		if err != nil {
			return err
		}
		if failOn && report.BlockingCount() > 0 {
			os.Exit(2)
		}
		return nil
	},
}

// runScan is shared by scan and fix.
func runScan(cmd *cobra.Command, target string, applyFixes, dryRun bool) (*types.Report, error) {
	opts := &scanner.Options{
		ApplyFixes:     applyFixes,
		DryRun:         dryRun,
		MaxConcurrency: cfg.Scanner.MaxConcurrency,
		FollowSymlinks: cfg.Scanner.FollowSymlinks,
		TabWidth:       cfg.Healer.TabWidth,
		Values:         scanValues,
	}

	s := scanner.New(opts)
	report, err := s.Scan(cmd.Context(), target)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	f, err := formatter.New(formatter.Type(scanOutput))
	if err != nil {
		return nil, err
	}
	out, err := f.Format(report)
	if err != nil {
		return nil, err
	}
	fmt.Print(out)
	return report, nil
}

func init() {
	flags := scanCmd.Flags()
	flags.StringVarP(&scanOutput, "output", "o", "table", "output format (table, json, yaml)")
	flags.StringVarP(&scanValues, "values", "f", "", "path to a values.yaml file used for rendering a helm chart")
	flags.BoolVar(&failOn, "fail-on-findings", false, "exit with status 2 when blocking findings are present")
}
