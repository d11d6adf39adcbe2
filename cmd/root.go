package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tonhe/promenade/internal/coordinator"
	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/source"
	"github.com/tonhe/promenade/internal/theme"
	"github.com/tonhe/promenade/tui"
)

// NewRootCmd builds the promenade command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promenade [DASHBOARD...]",
		Short: "Terminal dashboards for Prometheus and SNMP metrics",
		Long: heredoc.Doc(`
			promenade shows live metric values on a grid in the terminal. Each
			widget polls its query on its own timer and is styled by
			conditional-format rules.

			DASHBOARD is a YAML or TOML file, or the name of one in the
			dashboards directory. With no arguments every dashboard in that
			directory is loaded; use the arrow keys to move between them.
		`),
		Example: heredoc.Doc(`
			# Show one dashboard against a local Prometheus
			$ promenade cluster.yaml

			# Cycle through every saved dashboard with a light theme
			$ promenade --theme solarized-light

			# Point at another server
			$ PROMETHEUS_URL=http://prom:9090 promenade node.yaml
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return runDashboards(cmd.Context(), s, args)
		},
	}
	addSettingsFlags(cmd)

	cmd.AddCommand(
		newCheckCmd(),
		newSnapshotCmd(),
		newThemesCmd(),
		newConfigCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// newCoordinator validates dashes and wires each one to its source.
func newCoordinator(s *settings, dashes []*dashboard.Dashboard, logger *log.Logger) (*coordinator.Coordinator, error) {
	defaults := s.sourceDefaults(logger)
	factory := func(d *dashboard.Dashboard) (engine.Source, error) {
		return source.New(d.Source, defaults)
	}
	return coordinator.New(dashes, factory, coordinator.Options{
		Theme:         s.Theme,
		PauseInactive: s.PauseInactive,
		Timeout:       s.Timeout,
		Logger:        logger,
	})
}

func runDashboards(ctx context.Context, s *settings, args []string) error {
	dashes, err := s.loadDashboards(args)
	if err != nil {
		return err
	}
	logger, closeLog, err := s.logger()
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newCoordinator(s, dashes, logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Stop()
	logger.Info("promenade started", "version", Version, "dashboards", len(dashes), "theme", s.Theme.Slug)

	model := tui.NewAppModel(c, tui.Options{
		Version:       displayVersion(),
		Logger:        logger,
		OnThemeChange: func(t *theme.Theme) { saveTheme(s, t, logger) },
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// saveTheme remembers the theme picked in the TUI for the next run.
func saveTheme(s *settings, t *theme.Theme, logger *log.Logger) {
	s.Config.Theme = t.Slug
	if err := saveConfigFile(s.Config, s.ConfigPath); err != nil {
		logger.Warn("save theme", "err", err)
	}
}
