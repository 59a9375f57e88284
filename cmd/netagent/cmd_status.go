package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusCmd reports the resolved configuration and service health
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and check the service",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "netagent status")
	fmt.Fprintf(out, "  Server:   %s\n", cfg.Server.BaseURL)
	fmt.Fprintf(out, "  Timeout:  %s\n", cfg.GetTimeout())
	fmt.Fprintf(out, "  Database: %s\n", cfg.DatabasePath())

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.GetTimeout())
	defer cancel()

	status, err := newClient().Health(ctx)
	if err != nil {
		logger.Warn("health check failed", zap.Error(err))
		fmt.Fprintln(out, "  Service:  ❌ unreachable")
		return fmt.Errorf("service unavailable: %w", err)
	}
	fmt.Fprintf(out, "  Service:  ✅ %s\n", status)
	return nil
}
