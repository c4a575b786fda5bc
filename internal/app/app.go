// Package app wires configuration into the assistant's components for the
// CLI commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/school-assistant/pkg/caching"
	"github.com/dtnitsch/school-assistant/pkg/calendar"
	"github.com/dtnitsch/school-assistant/pkg/chatbot"
	"github.com/dtnitsch/school-assistant/pkg/composer"
	"github.com/dtnitsch/school-assistant/pkg/config"
	"github.com/dtnitsch/school-assistant/pkg/crawler"
	"github.com/dtnitsch/school-assistant/pkg/db"
	"github.com/dtnitsch/school-assistant/pkg/fetcher"
	"github.com/dtnitsch/school-assistant/pkg/language"
	"github.com/dtnitsch/school-assistant/pkg/llm"
	"github.com/dtnitsch/school-assistant/pkg/logger"
	"github.com/dtnitsch/school-assistant/pkg/metrics"
	"github.com/dtnitsch/school-assistant/pkg/scheduler"
	"github.com/dtnitsch/school-assistant/pkg/store"
)

// App holds the wired components for one CLI invocation.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *db.DB
	Store    *store.Store
	Calendar *calendar.Calendar
	Service  *chatbot.Service
	Metrics  *metrics.Metrics

	closers []func() error
}

// LoadConfig reads --config and applies the --quiet/--verbose overrides.
func LoadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	switch {
	case c.Bool("quiet"):
		cfg.Logging.Level = "error"
	case c.Bool("verbose"):
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// OpenDB opens the database only, for commands that need nothing else.
func OpenDB(c *cli.Context) (*config.Config, *db.DB, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, database, nil
}

// Bootstrap builds every component and loads the knowledge base.
func Bootstrap(ctx context.Context, c *cli.Context) (*App, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &App{Config: cfg, Logger: log, DB: database}
	a.closers = append(a.closers, database.Close)

	a.Metrics = metrics.New()

	a.Store = store.New(database, log, a.Metrics)
	if err := a.Store.Reload(ctx); err != nil {
		// an unreadable knowledge base starts empty
		log.Error("Failed to load knowledge base", "error", err)
	}

	f := fetcher.NewFetcher(fetcher.Options{
		UserAgent:          cfg.Crawler.UserAgent,
		Timeout:            cfg.Crawler.Timeout,
		InsecureSkipVerify: cfg.Crawler.InsecureSkipVerify,
		MaxBodyBytes:       cfg.Crawler.MaxBodyBytes,
	})
	cr := crawler.New(f, crawler.Options{
		PageBudget:       cfg.Crawler.PageBudget,
		DiscoveryCap:     cfg.Crawler.DiscoveryCap,
		Delay:            cfg.Crawler.Delay,
		MaxContentLength: cfg.Crawler.MaxContentLength,
		DefaultTitle:     cfg.School.DefaultTitle,
	}, log, a.Metrics)

	gen, purger, err := a.generator(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Calendar = calendar.New(database, log)

	comp := composer.New(a.Store, gen, a.Calendar, composer.Options{
		SchoolName:    cfg.School.Name,
		AssistantName: cfg.School.AssistantName,
		Keywords:      cfg.School.Keywords,
	}, log)

	deps := chatbot.Deps{
		Store:    a.Store,
		Crawler:  cr,
		Composer: comp,
		Language: language.NewDetector(),
		Log:      database,
		Cache:    purger,
		Metrics:  a.Metrics,
		Logger:   log,
	}
	a.Service = chatbot.New(deps, chatbot.Options{
		SchoolName:       cfg.School.Name,
		SeedURL:          cfg.School.SeedURL,
		MaxContentLength: cfg.Crawler.MaxContentLength,
	})
	return a, nil
}

// generator returns the model generator, wrapped in the configured answer
// cache. Without an API key the assistant runs on templates alone.
func (a *App) generator(ctx context.Context) (llm.Generator, chatbot.Purger, error) {
	cfg := a.Config
	var gen llm.Generator = llm.Unavailable{}
	if cfg.LLM.APIKey != "" {
		g, err := llm.NewGenAI(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, a.Logger, a.Metrics)
		if err != nil {
			a.Logger.Warn("Language model unavailable, using templates", "error", err)
		} else {
			gen = g
		}
	} else {
		a.Logger.Info("No language model API key configured, using templates")
	}

	var cache caching.Cache
	switch cfg.Cache.Backend {
	case "file":
		fc, err := caching.NewFileCache(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, err
		}
		cache = fc
	case "redis":
		rc, err := caching.NewRedisCache(ctx, caching.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, rc.Close)
		cache = rc
	default:
		return gen, nil, nil
	}
	cg := caching.NewGenerator(gen, cache, a.Logger)
	return cg, cg, nil
}

// RunBackground starts the auto-refresh scheduler and the metrics endpoint
// as configured. Both stop when ctx is cancelled.
func (a *App) RunBackground(ctx context.Context, g *errgroup.Group) {
	if a.Config.Refresh.Enabled {
		s := &scheduler.Scheduler{
			Interval: a.Config.Refresh.Interval,
			Logger:   a.Logger,
			Job: func(ctx context.Context) error {
				_, err := a.Service.Refresh(ctx)
				return err
			},
		}
		g.Go(func() error { return s.Run(ctx) })
	}
	if a.Config.Metrics.Enabled {
		g.Go(func() error { return a.Metrics.Serve(ctx, a.Config.Metrics.Addr) })
	}
}

// Close releases the database and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Close failed", "error", err)
		}
	}
}
