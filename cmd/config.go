package cmd

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tonhe/promenade/internal/config"
	"github.com/tonhe/promenade/internal/theme"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := config.GetConfigDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective config.toml",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := loadConfigFile()
				if err != nil {
					return err
				}
				return showConfig(cmd.OutOrStdout(), cfg)
			},
		},
		&cobra.Command{
			Use:   "theme NAME",
			Short: "Set the default theme",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := args[0]
				if name != "auto" && theme.Get(name) == nil {
					return fmt.Errorf("unknown theme %q (run 'promenade themes' to list them)", name)
				}
				cfg, path, err := loadConfigFile()
				if err != nil {
					return err
				}
				cfg.Theme = name
				if err := saveConfigFile(cfg, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Default theme set to %q.\n", name)
				return nil
			},
		},
	)
	return cmd
}

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, slug := range theme.List() {
				t := theme.Get(slug)
				shade := "light"
				if t.IsDark {
					shade = "dark"
				}
				fmt.Fprintf(out, "%-22s %-22s %s\n", slug, t.Name, shade)
			}
		},
	}
}

// loadConfigFile loads config.toml from the default path, falling back to
// defaults when it does not exist.
func loadConfigFile() (*config.Config, string, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// saveConfigFile writes cfg, creating directories as needed.
func saveConfigFile(cfg *config.Config, path string) error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("creating config directories: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func showConfig(w io.Writer, cfg *config.Config) error {
	cfg.TimeoutStr = cfg.Timeout.String()
	cfg.RefreshIntervalStr = cfg.RefreshInterval.String()
	return toml.NewEncoder(w).Encode(cfg)
}
