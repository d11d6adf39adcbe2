package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonhe/promenade/internal/coordinator"
	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/format"
	"github.com/tonhe/promenade/internal/logging"
	"github.com/tonhe/promenade/internal/source"
)

const defaultProbeParallel = 8

func newCheckCmd() *cobra.Command {
	var probe bool
	var parallel int

	cmd := &cobra.Command{
		Use:   "check [DASHBOARD...]",
		Short: "Validate dashboards without starting the TUI",
		Long: heredoc.Doc(`
			Load and validate dashboards: schema, grid placement, conditional
			format rules, colors and format strings. With --probe every widget
			query is also run once against its source.
		`),
		Example: heredoc.Doc(`
			# Validate every saved dashboard
			$ promenade check

			# Validate one file and query each widget
			$ promenade check --probe cluster.yaml
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), s, args, probe, parallel)
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "query every widget once")
	cmd.Flags().IntVar(&parallel, "parallel", defaultProbeParallel, "maximum concurrent probe queries")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, s *settings, args []string, probe bool, parallel int) error {
	paths, err := s.dashboardPaths(args)
	if err != nil {
		return err
	}

	failed := 0
	for _, p := range paths {
		d, err := dashboard.LoadDashboard(p, s.Config.RefreshInterval)
		if err == nil {
			_, err = coordinator.Prepare(d, s.Theme)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %v\n", err)
			continue
		}
		fmt.Fprintf(out, "ok    %s  (%d widgets, %s)\n", p, len(d.Widgets), source.Describe(d.Source, s.PrometheusURL))

		if probe {
			n, err := probeDashboard(ctx, out, s, d, parallel)
			if err != nil {
				return err
			}
			if n > 0 {
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d dashboards failed", failed, len(paths))
	}
	return nil
}

type probeResult struct {
	sample engine.Sample
	err    error
	took   time.Duration
}

// probeDashboard queries every widget of d once, at most parallel at a
// time, and prints one line per widget. It returns the number of widgets
// whose query failed.
func probeDashboard(ctx context.Context, out io.Writer, s *settings, d *dashboard.Dashboard, parallel int) (int, error) {
	src, err := source.New(d.Source, s.sourceDefaults(logging.Discard()))
	if err != nil {
		return 0, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	if p, ok := src.(*source.Prometheus); ok {
		pctx, cancel := context.WithTimeout(ctx, s.Timeout)
		version, err := p.Ping(pctx)
		cancel()
		if err != nil {
			fmt.Fprintf(out, "      server unreachable: %v\n", err)
			return len(d.Widgets), nil
		}
		fmt.Fprintf(out, "      prometheus %s\n", version)
	}

	results := make([]probeResult, len(d.Widgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i := range d.Widgets {
		w := &d.Widgets[i]
		timeout := s.Timeout
		if w.Timeout.Duration > 0 {
			timeout = w.Timeout.Duration
		}
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			start := time.Now()
			sample, err := src.Query(qctx, w.Query)
			results[i] = probeResult{sample: sample, err: err, took: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	failed := 0
	for i, r := range results {
		w := &d.Widgets[i]
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "      %-24s %s: %v\n", w.Name(), engine.Classify(r.err), r.err)
			continue
		}
		text, err := format.Text(w.FormatString, r.sample.Value)
		if err != nil {
			text = fmt.Sprint(r.sample.Value)
		}
		fmt.Fprintf(out, "      %-24s %s  (%s)\n", w.Name(), text, r.took.Round(time.Millisecond))
	}
	return failed, nil
}
