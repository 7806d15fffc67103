package console

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kettari/games-bot/internal/assist"
	"github.com/kettari/games-bot/internal/cache"
	"github.com/kettari/games-bot/internal/config"
	"github.com/kettari/games-bot/internal/metrics"
	"github.com/kettari/games-bot/internal/parser"
	"github.com/kettari/games-bot/internal/schedule"
	"github.com/kettari/games-bot/internal/scraper"
	"github.com/kettari/games-bot/internal/storage"
)

// environment is the loader with its collaborators, built from the configuration.
type environment struct {
	conf      *config.Config
	loader    *schedule.Loader
	snapshots schedule.SnapshotStore
	collector *metrics.Collector
	closers   []func() error
}

func newEnvironment(ctx context.Context, conf *config.Config) (*environment, error) {
	profile, err := parser.LoadProfile(conf.ProfileFile)
	if err != nil {
		return nil, err
	}

	env := &environment{conf: conf, collector: metrics.NewCollector()}
	opts := []schedule.LoaderOption{schedule.WithObserver(env.collector)}

	if client := cache.NewClient(ctx, conf.RedisAddr, conf.RedisPassword, conf.RedisDB); client != nil {
		opts = append(opts, schedule.WithCache(cache.New(client, conf.CacheTTL), conf.CacheTTL))
		env.closers = append(env.closers, client.Close)
	} else if conf.RedisAddr != "" {
		slog.Warn("redis is not available, running without cache", "addr", conf.RedisAddr)
	}

	if conf.DbConnectionString != "" {
		manager := storage.NewManager(conf.DbConnectionString)
		if err = manager.Connect(); err != nil {
			slog.Warn("database is not available, running without snapshots", "err", err)
		} else {
			env.snapshots = storage.NewRepository(manager)
			env.closers = append(env.closers, manager.Close)
			opts = append(opts, schedule.WithSnapshots(env.snapshots))
		}
	}

	if conf.OpenAIApiKey != "" {
		opts = append(opts, schedule.WithAssistant(assist.NewAssistant(conf.OpenAIApiKey, conf.OpenAILanguageModel, profile)))
	}

	fetcher := scraper.NewFetcher(scraper.Config{Retries: conf.FetchRetries, RPS: conf.FetchRPS})
	env.loader = schedule.NewLoader(conf.SourceURL, fetcher, parser.NewParser(profile), opts...)
	return env, nil
}

// flushMetrics writes the collected metrics when a textfile is configured.
func (env *environment) flushMetrics() {
	if env.conf.MetricsFile == "" {
		return
	}
	if err := env.collector.WriteTextfile(env.conf.MetricsFile); err != nil {
		slog.Error("failed to write metrics", "path", env.conf.MetricsFile, "err", err)
	}
}

func (env *environment) Close() error {
	var errs []error
	for _, c := range env.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
