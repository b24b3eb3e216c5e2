package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/fedq/internal/config"
	"github.com/aman-cerp/fedq/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fedq configuration",
		Long: `Manage the fedq configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/fedq/config.yaml)
  3. Project config (.fedq.yaml in the current directory)
  4. Environment variables (FEDQ_*, SLA_MS, CACHE_SIZE, ...)`,
		Example: `  # Create user config from the built-in defaults
  fedq config init

  # Show effective configuration (merged from all sources)
  fedq config show

  # Print the user config file path
  fedq config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the user configuration file",
		Long: `Create the user configuration file at the built-in defaults.

The file is created at ~/.config/fedq/config.yaml (or
$XDG_CONFIG_HOME/fedq/config.yaml if XDG_CONFIG_HOME is set).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	path := config.GetUserConfigPath()

	if !force {
		if _, err := os.Stat(path); err == nil {
			out.Warningf("configuration already exists at %s (use --force to overwrite)", path)
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := config.NewConfig()
	if err := cfg.WriteYAML(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out.Successf("wrote configuration to %s", path)
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  `Show the effective configuration, merged from defaults, user config, project config, and environment overrides.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine working directory: %w", err)
			}
			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			data, err := cfg.WriteYAMLString()
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), data)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON instead of YAML")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
