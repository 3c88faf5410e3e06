package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tickermap/browser"
	"tickermap/cache"
	"tickermap/config"
	"tickermap/lookup"
	"tickermap/metrics"
	"tickermap/ops"
	"tickermap/pipeline"
	"tickermap/scraper"
	"tickermap/stock"
	"tickermap/storage"
	"tickermap/storage/clickhouse"
	"tickermap/storage/csvfile"
	"tickermap/storage/memory"
	"tickermap/storage/migrations"
	"tickermap/storage/postgres"
	"tickermap/throttle"
	"tickermap/universe"
)

// app holds the components shared by both commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	cache      *cache.Cache
	pg         *postgres.Pool
	ch         *clickhouse.Conn
	metrics    *metrics.Metrics
	tracker    *ops.Tracker
	stopServer context.CancelFunc
	serverDone chan struct{}
	closed     bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, tracker: ops.NewTracker()}

	if cfg.Cache.Addr != "" {
		c, err := cache.New(ctx, cache.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
		}, logger)
		if err != nil {
			// The cache only saves quota; run without it.
			logger.Warn("redis cache unavailable", "addr", cfg.Cache.Addr, "error", err)
		} else {
			a.cache = c
			logger.Info("redis cache connected", "addr", cfg.Cache.Addr)
		}
	}

	if cfg.Database.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.pg = pool
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("postgres connected")
	}

	if cfg.Database.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Database.ClickhouseDSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		a.ch = conn
		logger.Info("clickhouse audit log connected")
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New("tickermap")
		a.startServer()
	}

	return a, nil
}

func (a *app) startServer() {
	checks := make(map[string]ops.Pinger)
	if a.cache != nil {
		checks["redis"] = a.cache
	}
	if a.pg != nil {
		checks["postgres"] = a.pg
	}
	if a.ch != nil {
		checks["clickhouse"] = a.ch
	}
	handler := ops.NewRouter(a.tracker, a.metrics.Handler(), checks, a.logger)

	ctx, cancel := context.WithCancel(context.Background())
	a.stopServer = cancel
	a.serverDone = make(chan struct{})
	go func() {
		defer close(a.serverDone)
		if err := ops.Serve(ctx, a.cfg.Metrics.Addr, handler, a.logger); err != nil {
			a.logger.Error("ops server error", "error", err)
		}
	}()
}

// Close releases every connection. It is safe to call more than once.
func (a *app) Close() {
	if a.closed {
		return
	}
	a.closed = true

	if a.stopServer != nil {
		a.stopServer()
		<-a.serverDone
	}
	if a.ch != nil {
		a.ch.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", "error", err)
	}
}

func (a *app) mappingStore() (storage.MappingStore, error) {
	switch a.cfg.Mapping.Store {
	case config.StoreCSV:
		return csvfile.NewMappingFile(a.cfg.Mapping.Path), nil
	case config.StorePostgres:
		if a.pg == nil {
			return nil, errors.New("postgres mapping store needs database.postgres_dsn")
		}
		return postgres.NewMappingStore(a.pg), nil
	case config.StoreMemory:
		return memory.NewMappingStore(), nil
	default:
		return nil, fmt.Errorf("unknown mapping store %q", a.cfg.Mapping.Store)
	}
}

func (a *app) companyStore() (storage.CompanyStore, error) {
	switch a.cfg.Scrape.Store {
	case config.StoreCSV:
		return csvfile.NewCompanyFile(a.cfg.Scrape.OutputPath), nil
	case config.StorePostgres:
		if a.pg == nil {
			return nil, errors.New("postgres company store needs database.postgres_dsn")
		}
		return postgres.NewCompanyStore(a.pg), nil
	default:
		return nil, fmt.Errorf("unknown company store %q", a.cfg.Scrape.Store)
	}
}

func (a *app) runMap(ctx context.Context) error {
	store, err := a.mappingStore()
	if err != nil {
		return err
	}

	deps := pipeline.MapperDeps{
		Store:     store,
		Feed:      universe.NewFeed(a.cfg.Universe.FeedURL, universe.WithLogger(a.logger)),
		PublicMap: universe.NewPublicMap(a.cfg.Universe.PublicMapURL, universe.WithLogger(a.logger)),
		Policy: throttle.Policy{
			MaxAttempts: a.cfg.Lookup.MaxAttempts,
			Cooldown:    a.cfg.Lookup.Cooldown,
		},
		Metrics: a.metrics,
		Tracker: a.tracker,
		Logger:  a.logger,
	}

	if a.cfg.Lookup.Enabled {
		threshold, err := a.cfg.Lookup.ThresholdDecimal()
		if err != nil {
			return err
		}
		client := stock.NewClient(a.cfg.Lookup.BaseURL, a.cfg.Lookup.APIKey,
			stock.WithTimeout(a.cfg.Lookup.Timeout),
			stock.WithLogger(a.logger),
			stock.WithCache(a.cache, a.cfg.Cache.TTL),
		)
		deps.Looker = lookup.NewMatcher(client, threshold)
		a.logger.Info("symbol search enabled",
			"threshold", threshold.String(),
			"max_attempts", a.cfg.Lookup.MaxAttempts,
			"cooldown", a.cfg.Lookup.Cooldown,
		)
	}

	if a.ch != nil {
		deps.Audit = clickhouse.NewAuditLog(a.ch)
	}

	_, err = pipeline.NewMapper(deps).Run(ctx)
	return err
}

func (a *app) runScrape(ctx context.Context) error {
	mappings, err := a.mappingStore()
	if err != nil {
		return err
	}
	companies, err := a.companyStore()
	if err != nil {
		return err
	}

	sc := a.cfg.Scrape
	pool := browser.New(browser.Options{
		Headless:        sc.HeadlessEnabled(),
		MaxSessions:     sc.Concurrency,
		NavigateTimeout: sc.NavigateTimeout,
		ExecPath:        sc.ChromePath,
		Logger:          a.logger,
	})
	service := scraper.NewService(pool,
		scraper.WithBaseURL(sc.BaseURL),
		scraper.WithSettle(sc.Settle),
		scraper.WithRetryWait(sc.RetryWait),
		scraper.WithServiceLogger(a.logger),
	)

	_, err = pipeline.NewCompanyScraper(pipeline.ScraperDeps{
		Mappings:  mappings,
		Companies: companies,
		Scraper:   service,
		Batch: scraper.BatchOptions{
			Concurrency: sc.Concurrency,
			MinPause:    sc.MinPause,
			MaxPause:    sc.MaxPause,
		},
		Metrics: a.metrics,
		Tracker: a.tracker,
		Logger:  a.logger,
	}).Run(ctx)
	return err
}
