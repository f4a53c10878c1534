package main

import (
	"fmt"

	"github.com/fixmyk8s/kubecuro/internal/api"
	"github.com/fixmyk8s/kubecuro/internal/scanner"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the KubeCuro API server",
	Long: `Start an HTTP server exposing the diagnostic engines. Manifests posted
to /api/v1/scan are analyzed in memory and never written to disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := scanner.New(&scanner.Options{
			MaxConcurrency: cfg.Scanner.MaxConcurrency,
			TabWidth:       cfg.Healer.TabWidth,
		})
		srv := api.NewServer(s)
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		return srv.Start(addr, cfg.Server.Timeout)
	},
}
