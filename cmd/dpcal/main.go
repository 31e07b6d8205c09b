// Command dpcal previews date-picker cell classification in the terminal,
// serves it over HTTP, and captures the HTML preview as PNG.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dpcal/internal/config"
	"dpcal/internal/ics"
	appLog "dpcal/internal/log"
)

const version = "0.1.0"

// globalFlags hold the persistent CLI flags shared by every subcommand.
type globalFlags struct {
	configPath string
	cacheDir   string
	debug      bool
}

func main() {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "dpcal",
		Short:         "Date-picker cell classifier",
		Version:       version,
		SilenceUsage:  true,
		Long: `dpcal classifies the cells of a date-picker month grid (range anchors,
hover previews, highlights, disabled days, today) from a YAML config.

Examples:
  dpcal show --month 2025-01 --select 2025-01-05 --hover 2025-01-03
  dpcal serve --config ./config.yaml
  dpcal capture --out preview.png`,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "/etc/dpcal/config.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&g.cacheDir, "cache-dir", "", "ICS feed cache directory (default /var/lib/dpcal/ics-cache, ./cache/ics-cache with --debug)")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Debug mode: verbose logs and local cache paths")

	root.AddCommand(newShowCmd(g), newServeCmd(g), newCaptureCmd(g))
	return root
}

// loadConfig loads the config and applies its log level. --debug forces
// debug logging.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	conf, err := config.Load(g.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", g.configPath)
		return nil, err
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if g.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	return conf, nil
}

func (g *globalFlags) fetcher() *ics.Fetcher {
	dir := g.cacheDir
	if dir == "" {
		dir = "/var/lib/dpcal/ics-cache"
		if g.debug {
			dir = "./cache/ics-cache"
		}
	}
	return ics.NewFetcher(dir, nil)
}
