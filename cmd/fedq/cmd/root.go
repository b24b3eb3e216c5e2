// Package cmd provides the CLI commands for fedq.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/fedq/internal/logging"
	"github.com/aman-cerp/fedq/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the fedq CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fedq",
		Short: "Federated query engine over relational, vector, graph, and KV stores",
		Long: `fedq accepts a single textual query and returns unified, ranked
results drawn from whichever of the RELATIONAL, VECTOR, GRAPH, KV, and
FILESYSTEM backing stores are configured for this deployment.

Run 'fedq query "<text>"' to execute a query against the stores
configured in .fedq.yaml or ~/.config/fedq/config.yaml.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("fedq version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.fedq/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLogsCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
