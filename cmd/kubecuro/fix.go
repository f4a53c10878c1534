package main

import (
	"os"

	"github.com/spf13/cobra"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [target]",
	Short: "Diagnose manifests and rewrite what can be repaired in place",
	Long: `Fix runs the same diagnostics as scan and additionally writes repaired
manifests back to disk: syntax defects are healed, deprecated API
versions with a replacement are rewritten, and safe security defaults
are injected. Findings without a mechanical repair are still reported.

Rendered sources (helm charts, kustomize overlays) are never written;
fixes there only appear in the report.

Examples:
  # Repair a single manifest in place
  kubecuro fix deployment.yaml

  # Show what would change without touching any file
  kubecuro fix ./k8s/ --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runScan(cmd, args[0], true, dryRun)
		if err != nil {
			return err
		}
		if failOn && report.BlockingCount() > 0 {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	flags := fixCmd.Flags()
	flags.StringVarP(&scanOutput, "output", "o", "table", "output format (table, json, yaml)")
	flags.StringVarP(&scanValues, "values", "f", "", "path to a values.yaml file used for rendering a helm chart")
	flags.BoolVar(&dryRun, "dry-run", false, "report repairs without writing any file")
	flags.BoolVar(&failOn, "fail-on-findings", false, "exit with status 2 when blocking findings are present")
}
