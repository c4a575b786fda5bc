package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/school-assistant/internal/app"
)

// ServeAction runs the assistant headless: auto-refresh plus the metrics
// endpoint, until SIGINT or SIGTERM.
func ServeAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Bool("refresh-now") {
		if _, err := a.Service.Refresh(ctx); err != nil {
			a.Logger.Warn("Initial refresh failed", "error", err)
		}
	}

	if !a.Config.Refresh.Enabled && !a.Config.Metrics.Enabled {
		return cli.Exit("nothing to serve: enable refresh or metrics in the config", 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	a.RunBackground(gctx, g)
	a.Logger.Info("Serving", "refresh", a.Config.Refresh.Enabled, "interval", a.Config.Refresh.Interval,
		"metrics", a.Config.Metrics.Enabled, "addr", a.Config.Metrics.Addr)
	return g.Wait()
}
