package main

import (
	"fmt"

	"github.com/fixmyk8s/kubecuro/internal/formatter"
	"github.com/spf13/cobra"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist [topic]",
	Short: "Print the manifest audit checklist",
	Long: `Print a static checklist of the manifest hygiene rules the diagnostic
engines enforce, grouped by topic. Pass a topic name to show only that
section.

Examples:
  # Show the full checklist
  kubecuro checklist

  # Show only the cross-resource wiring rules
  kubecuro checklist wiring`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := ""
		if len(args) == 1 {
			topic = args[0]
		}
		out, err := formatter.Checklist(topic)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}
