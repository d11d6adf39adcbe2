package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tonhe/promenade/internal/coordinator"
	"github.com/tonhe/promenade/internal/logging"
	"github.com/tonhe/promenade/tui/components"
	"github.com/tonhe/promenade/tui/styles"
	"github.com/tonhe/promenade/tui/views"
)

const defaultSnapshotWidth = 100

func newSnapshotCmd() *cobra.Command {
	var width, height int
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "snapshot [DASHBOARD]",
		Short: "Poll a dashboard once and print it",
		Long: heredoc.Doc(`
			Start polling a dashboard, wait for every widget to report or for
			--wait to pass, print one rendered frame to stdout and exit.
		`),
		Example: heredoc.Doc(`
			$ promenade snapshot cluster.yaml --width 120 --height 30
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if width <= 0 {
				width = terminalWidth()
			}
			if wait <= 0 {
				wait = s.Timeout + time.Second
			}
			return runSnapshot(cmd.Context(), cmd.OutOrStdout(), s, args, width, height, wait)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "output width (default: terminal width)")
	cmd.Flags().IntVar(&height, "height", 24, "output height")
	cmd.Flags().DurationVar(&wait, "wait", 0, "longest time to wait for first values (default: timeout + 1s)")
	return cmd
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultSnapshotWidth
}

func runSnapshot(ctx context.Context, out io.Writer, s *settings, args []string, width, height int, wait time.Duration) error {
	dashes, err := s.loadDashboards(args)
	if err != nil {
		return err
	}
	c, err := newCoordinator(s, dashes[:1], logging.Discard())
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Stop()

	frame := awaitFrame(ctx, c, wait)
	fmt.Fprintln(out, renderSnapshot(frame, width, height))
	return nil
}

// awaitFrame returns the first frame with no pending widgets, or the
// latest one once wait has passed.
func awaitFrame(ctx context.Context, c *coordinator.Coordinator, wait time.Duration) coordinator.Frame {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	for {
		frame := c.Frame()
		if settled(frame) {
			return frame
		}
		select {
		case <-c.Updates():
		case <-deadline.C:
			return c.Frame()
		case <-ctx.Done():
			return c.Frame()
		}
	}
}

func settled(f coordinator.Frame) bool {
	for _, ri := range f.Widgets {
		if ri.Status == coordinator.StatusPending {
			return false
		}
	}
	return true
}

func renderSnapshot(f coordinator.Frame, width, height int) string {
	sty := styles.NewStyles(f.Theme)
	header := components.RenderHeader(sty, components.HeaderInfo{
		Title: f.Title,
		Index: f.Index,
		Count: f.Count,
		Theme: f.Theme.Name,
	}, width)

	body := views.NewDashboardView(sty)
	body.SetSize(width, max(1, height-1))
	body.SetFrame(f)
	return lipgloss.JoinVertical(lipgloss.Left, header, body.View())
}
