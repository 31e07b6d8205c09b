package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dpcal/internal/capture"
	"dpcal/internal/classify"
	"dpcal/internal/config"
	"dpcal/internal/dates"
	appLog "dpcal/internal/log"
	"dpcal/internal/model"
	"dpcal/internal/page"
	"dpcal/internal/picker"
	"dpcal/internal/term"
	"dpcal/internal/web"
)

// setupFrom resolves the picker; bad config entries are logged and skipped.
func setupFrom(conf *config.Config, now func() time.Time) (*picker.Setup, error) {
	setup, err := picker.FromConfig(conf, now)
	if setup == nil {
		return nil, err
	}
	if err != nil {
		appLog.Warn("config entries ignored", "error", err.Error())
	}
	setup.LogSummary()
	return setup, nil
}

type showFlags struct {
	month     string
	selection []string
	hover     string
	noFeeds   bool
}

func newShowCmd(g *globalFlags) *cobra.Command {
	f := &showFlags{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a classified month to the terminal",
		Long: `Prints the month grid with every cell classified against the given
selection and hover. "[" marks a start, "]" an end and "*" a highlight.

Examples:
  dpcal show --month 2025-01
  dpcal show --select 2025-01-05 --hover 2025-01-09
  dpcal show --select 2025-01-05,2025-01-09`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := g.loadConfig()
			if err != nil {
				return err
			}
			setup, err := setupFrom(conf, nil)
			if err != nil {
				return err
			}
			if setup.HasFeeds() && !f.noFeeds {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				if err := setup.RefreshFeeds(ctx, g.fetcher()); err != nil {
					appLog.Error("feed refresh failed; highlighting without some feeds", err)
				}
			}

			out, err := renderShow(setup, f, lipgloss.NewRenderer(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.month, "month", "", "First month to show, YYYY-MM (default: current month)")
	cmd.Flags().StringSliceVar(&f.selection, "select", nil, "Selected date or range boundaries, YYYY-MM-DD[,YYYY-MM-DD]")
	cmd.Flags().StringVar(&f.hover, "hover", "", "Hovered date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&f.noFeeds, "no-feeds", false, "Skip fetching ICS highlight feeds")
	return cmd
}

// renderShow classifies and renders the requested pages side by side.
func renderShow(setup *picker.Setup, f *showFlags, r *lipgloss.Renderer) (string, error) {
	first := setup.Today
	if f.month != "" {
		m, err := dates.ParseMonth(f.month, setup.Location)
		if err != nil {
			return "", err
		}
		first = m
	}

	sel, err := picker.ParseSelection(f.selection, picker.RangeMode(setup.Options), setup.Location)
	if err != nil {
		return "", err
	}

	sess := setup.NewSession()
	if f.hover != "" {
		h, err := dates.ParseDate(f.hover, setup.Location)
		if err != nil {
			return "", fmt.Errorf("hover: %w", err)
		}
		sess.SetHoverDate(model.Day{Value: h, Current: true})
	}

	opts := term.DefaultOptions(r)
	opts.WeekStart = setup.WeekStart
	classes := func(d model.Day) classify.ClassData { return sess.DayClassData(d, sel) }

	pages := page.Pages(first, setup.Options.MultiCalendars, setup.WeekStart)
	blocks := make([]string, 0, len(pages)*2)
	for i, m := range pages {
		if i > 0 {
			blocks = append(blocks, "   ")
		}
		blocks = append(blocks, term.Render(m, classes, opts))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...), nil
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classifier over HTTP",
		Long: `Serves /api/days, /api/hover, /api/selection and the /calendar preview page.
ICS highlight feeds are refreshed on the highlight.refresh cron schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := g.loadConfig()
			if err != nil {
				return err
			}
			// --listen overrides the config file if provided.
			if listen != "" {
				conf.Listen = listen
			}
			setup, err := setupFrom(conf, nil)
			if err != nil {
				return err
			}

			appLog.Info("dpcal starting", "version", version, "listen", conf.Listen, "debug", g.debug)
			if err := web.StartServer(cmd.Context(), conf, setup, g.fetcher()); err != nil {
				appLog.Error("http server failed", err)
				return err
			}
			appLog.Info("dpcal exiting")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

func newCaptureCmd(g *globalFlags) *cobra.Command {
	var (
		opts  capture.Options
		month string
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Screenshot the /calendar preview with headless Chromium",
		Long: `Captures a running "dpcal serve" preview page as PNG. Without --url the
page is taken from the configured listen address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := g.loadConfig()
			if err != nil {
				return err
			}
			if opts.URL == "" {
				opts.URL = capture.PreviewURL(conf.Listen, month)
			}
			if conf.BasicAuth != nil && opts.Username == "" {
				opts.Username = conf.BasicAuth.Username
				opts.Password = conf.BasicAuth.Password
			}
			if err := capture.CalendarPNG(cmd.Context(), opts); err != nil {
				appLog.Error("capture failed", err, "url", opts.URL)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.URL, "url", "", "Page to capture (default: /calendar on the configured listen address)")
	cmd.Flags().StringVar(&month, "month", "", "Month to capture, YYYY-MM (ignored with --url)")
	cmd.Flags().StringVar(&opts.OutputPath, "out", "preview.png", "Output PNG path")
	cmd.Flags().IntVar(&opts.Width, "width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", capture.DefaultTimeout, "Capture timeout")
	return cmd
}
