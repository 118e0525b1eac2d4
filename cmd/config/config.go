// Package config provides the "kpi config" command group.
package config

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
)

// NewCommand returns the config command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kpi configuration",
		Long: `Interactive setup, view, and modify settings stored in ~/.kpi/config.yaml.

Every key can also be set through a KPI_* environment variable or a .env file,
e.g. KPI_INGEST_ENCODING=latin-1. Environment values win over the file.

Keys:
  analysis.unit       default KPI unit: percent | absolute
  ingest.encoding     CSV text encoding: auto | utf-8 | latin-1
  server.addr         listen address for kpi serve
  watch.debounce_ms   quiet period before kpi watch re-runs
  output.format       text | json
  output.color        true | false`,
	}

	cmd.AddCommand(
		newInitCommand(),
		loaded(&cobra.Command{Use: "show", Short: "Show current configuration and where each value comes from"}, runShow),
		loaded(&cobra.Command{Use: "set <key> <value>", Short: "Set a configuration value", Args: cobra.ExactArgs(2)}, runSet),
		loaded(&cobra.Command{Use: "get <key>", Short: "Get a configuration value", Args: cobra.ExactArgs(1)}, runGet),
		loaded(&cobra.Command{Use: "validate", Short: "Validate current configuration"}, runValidate),
		loaded(&cobra.Command{Use: "env", Short: "Export configuration as environment variables"}, runEnv),
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the config file and return to defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.ResetConfig(); err != nil {
					return err
				}
				fmt.Println("Configuration reset to defaults")
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show config file path",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(config.ConfigPath())
			},
		},
	)
	return cmd
}

// loaded attaches run to cmd after the configuration has been read.
func loaded(cmd *cobra.Command, run func(cmd *cobra.Command, args []string, jsonOut bool) error) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(); err != nil {
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		return run(cmd, args, jsonOut)
	}
	return cmd
}

func newInitCommand() *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactive setup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			if !defaults {
				return config.Wizard(nil, nil)
			}
			if err := config.SaveConfig(); err != nil {
				return err
			}
			fmt.Printf("Wrote defaults to %s\n", config.ConfigPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "no-interactive", false, "Skip prompts and write the current values")
	return cmd
}

type setting struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Env    string `json:"env"`
}

func runShow(_ *cobra.Command, _ []string, jsonOut bool) error {
	if !jsonOut {
		fmt.Print(config.ShowConfig())
		return nil
	}
	settings := make([]setting, 0, len(config.Keys))
	for _, k := range config.Keys {
		settings = append(settings, setting{Key: k, Value: config.Get(k), Source: config.Source(k), Env: config.EnvName(k)})
	}
	return output.PrintJSON("config show", settings)
}

func runSet(_ *cobra.Command, args []string, _ bool) error {
	if err := config.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("%w: %v", output.ErrUsage, err)
	}
	fmt.Printf("Set %s = %s\n", args[0], args[1])
	if config.Source(args[0]) == "env" {
		color.New(color.FgYellow).Printf("Note: %s is set and overrides the file\n", config.EnvName(args[0]))
	}
	return nil
}

func runGet(_ *cobra.Command, args []string, _ bool) error {
	val := config.Get(args[0])
	if val == "" {
		val = "(not set)"
	}
	return output.NewWriter(output.FormatText).WriteLn(args[0] + ": " + val)
}

func runValidate(_ *cobra.Command, _ []string, jsonOut bool) error {
	issues := config.Validate()
	if jsonOut {
		return output.PrintJSON("config validate", issues)
	}
	if len(issues) == 0 {
		color.New(color.FgGreen).Println("Configuration is valid")
		return nil
	}

	failed := 0
	for _, issue := range issues {
		c := color.New(color.FgYellow)
		if issue.Severity == "error" {
			c = color.New(color.FgRed)
			failed++
		}
		c.Printf("  %-8s %-18s %s\n", issue.Severity, issue.Key, issue.Message)
		if issue.Fix != "" {
			fmt.Printf("           fix: %s\n", issue.Fix)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d configuration errors", output.ErrUsage, failed)
	}
	return nil
}

func runEnv(_ *cobra.Command, _ []string, jsonOut bool) error {
	env := config.ToEnv()
	if jsonOut {
		return output.PrintJSON("config env", env)
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := output.NewWriter(output.FormatText)
	for _, k := range keys {
		if err := w.WriteLn(fmt.Sprintf("export %s=%q", k, env[k])); err != nil {
			return err
		}
	}
	return w.WriteLn("# Add these to your ~/.zshrc or ~/.bashrc")
}
