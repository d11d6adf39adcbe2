package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/tonhe/promenade/internal/config"
)

// exampleDashboard is a node_exporter overview that exercises every
// widget type.
var exampleDashboard = heredoc.Doc(`
	# promenade dashboard. Colors accept names, #hex, rgb(r,g,b) and theme
	# symbols such as $error or $success.
	title: Node Overview
	refresh_interval: 5
	grid_rows: 3
	grid_columns: 3
	widgets:
	  - type: digits
	    label: CPU
	    query: 100 - avg(rate(node_cpu_seconds_total{mode="idle"}[1m])) * 100
	    format_string: "{value:.0f}%"
	    row: 0
	    column: 0
	    border_style: rounded
	    conditional_formats:
	      - condition: value > 90
	        border_color: $error
	        text_color: $error
	      - condition: 70 < value <= 90
	        border_color: $warning
	  - type: sparkline
	    label: Load
	    subtitle: 1m
	    query: node_load1
	    format_string: "{value:.2f}"
	    row: 0
	    column: 1
	    column_span: 2
	    sparkline_summary: max
	  - type: progress
	    label: Memory
	    query: (1 - node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes) * 100
	    format_string: "{value:.1f}% used"
	    row: 1
	    column: 0
	    column_span: 3
	    conditional_formats:
	      - condition: value >= 85
	        text_color: $error
	  - label: Targets up
	    query: count(up == 1)
	    format_string: "{value:,d}"
	    row: 2
	    column: 0
	  - label: Uptime
	    query: time() - node_boot_time_seconds
	    format_string: "{value:.0f}s"
	    row: 2
	    column: 1
	    column_span: 2
	    border_style: dashed
`)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [NAME]",
		Short: "Write an example dashboard",
		Long: heredoc.Doc(`
			Write an example node_exporter dashboard into the dashboards
			directory. NAME defaults to "node".
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			name := "node"
			if len(args) == 1 {
				name = args[0]
			}
			path, err := writeExample(s.DashboardsDir, name, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nRun 'promenade %s' to open it.\n", path, name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func writeExample(dir, name string, force bool) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return "", fmt.Errorf("invalid dashboard name %q", name)
	}
	if err := config.EnsureDirs(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".yaml")
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(exampleDashboard); err != nil {
		return "", err
	}
	return path, nil
}
