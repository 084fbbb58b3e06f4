package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/retailjet/glance/components/dashboard"
	"github.com/retailjet/glance/components/dashboard/commands"
	"github.com/retailjet/glance/components/glance"
	"github.com/retailjet/glance/components/retail"
	"github.com/retailjet/glance/pkg/activity"
	"github.com/retailjet/glance/pkg/activity/usersink"
	"github.com/retailjet/glance/pkg/analytics"
	"github.com/retailjet/glance/pkg/config"
	"github.com/retailjet/glance/pkg/conversations"
	"github.com/retailjet/glance/pkg/retailsql"
	"github.com/retailjet/glance/pkg/shell"
	"github.com/retailjet/glance/pkg/telemetry"
)

// app holds every wired component. Close releases what open acquired.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	repo      retail.Repository
	telemetry telemetry.Multi
	meters    *sdkmetric.MeterProvider
	redis     *redis.Client

	store      *dashboard.MemoryWidgetStore
	registry   *dashboard.Registry
	service    *dashboard.Service
	broadcast  *dashboard.BroadcastHook
	themes     *dashboard.StoreThemes
	feed       *dashboard.ActivityFeed
	manifests  []*dashboard.WidgetManifestDocument
	controller *dashboard.Controller

	chat  *glance.Service
	shell *shell.Shell

	closers []io.Closer
}

func loadConfig(g *Globals) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	if err := a.openRepository(ctx); err != nil {
		return nil, err
	}
	if err := a.openTelemetry(); err != nil {
		return nil, err
	}
	if err := a.openRedis(ctx); err != nil {
		return nil, err
	}
	if err := a.buildDashboard(ctx); err != nil {
		return nil, err
	}
	if err := a.buildChat(); err != nil {
		return nil, err
	}
	a.shell, err = shell.New(shell.Config{Stores: a.repo})
	if err != nil {
		return nil, err
	}
	if err := a.shell.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openRepository(ctx context.Context) error {
	var (
		repo retail.Repository
		err  error
	)
	if a.cfg.Storage.SeedFile != "" {
		repo, err = retail.LoadSeedFile(a.cfg.Storage.SeedFile)
	} else {
		repo, err = retail.DefaultRepository()
	}
	if err != nil {
		return err
	}
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		sqlRepo, err := a.openSQL(ctx)
		if err != nil {
			return err
		}
		repo = sqlRepo
	}
	if a.cfg.Analytics.BaseURL != "" {
		client, err := analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL: a.cfg.Analytics.BaseURL,
			APIKey:  os.Getenv("GLANCE_ANALYTICS_API_KEY"),
		})
		if err != nil {
			return err
		}
		repo = analytics.NewRepository(repo, client)
		a.logger.Info("remote analytics enabled", slog.String("base_url", a.cfg.Analytics.BaseURL))
	}
	a.repo = repo
	return nil
}

func (a *app) openSQL(ctx context.Context) (*retailsql.Repository, error) {
	dialect := retailsql.Dialect(a.cfg.Storage.Driver)
	db, err := retailsql.Open(dialect, a.cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("storage: ping %s: %w", dialect, err)
	}
	repo := retailsql.New(db, dialect)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *app) openTelemetry() error {
	a.telemetry = telemetry.Multi{telemetry.NewLogger(a.logger, slog.LevelDebug)}
	if !a.cfg.Telemetry.Metrics {
		return nil
	}
	a.meters = sdkmetric.NewMeterProvider()
	counter, err := telemetry.NewCounter(a.meters.Meter(telemetry.DefaultMeterName), "area_code", "category", "store_id")
	if err != nil {
		return err
	}
	a.telemetry = append(a.telemetry, counter)
	return nil
}

func (a *app) openRedis(ctx context.Context) error {
	if a.cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, client)
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping %s: %w", a.cfg.Redis.Addr, err)
	}
	a.redis = client
	return nil
}

func (a *app) buildDashboard(ctx context.Context) error {
	a.themes = storeThemes()
	cache := dashboard.NewChartCache(a.cfg.Dashboard.ChartCacheTTL)
	charts := dashboard.NewChartRenderer(
		dashboard.WithChartCache(cache),
		dashboard.WithChartThemeResolver(dashboard.ChartThemeResolver(a.themes)),
		dashboard.WithChartAssetsHost(dashboard.EChartsAssetsHost(a.cfg.Dashboard.EChartsCDN)),
	)
	a.registry = dashboard.NewRegistry(
		dashboard.WithRetailRepository(a.repo),
		dashboard.WithChartRenderer(charts),
	)
	if err := a.registry.ApplyHooks(); err != nil {
		return err
	}
	for _, path := range a.cfg.Dashboard.Manifests {
		doc, err := dashboard.ReadManifest(path)
		if err != nil {
			return err
		}
		a.manifests = append(a.manifests, doc)
	}

	a.broadcast = dashboard.NewBroadcastHook()
	var refresh dashboard.RefreshHook = a.broadcast
	if a.redis != nil {
		refresh = &dashboard.NotificationsHook{
			Publisher: conversations.NewPublisher(a.redis),
			Channel:   a.cfg.Redis.Channel,
		}
	}

	a.feed = dashboard.NewActivityFeed(0)
	hooks := activity.Hooks{a.feed, activity.LogHook{Logger: a.logger, Level: slog.LevelDebug}}
	if a.cfg.Dashboard.AuditFile != "" {
		sink, err := openAuditSink(a.cfg.Dashboard.AuditFile)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, sink)
		hooks = append(hooks, usersink.Hook{Sink: sink})
	}

	translator, err := loadTranslator(a.cfg.Dashboard.Translations)
	if err != nil {
		return err
	}

	a.store = dashboard.NewMemoryWidgetStore()
	a.service = dashboard.NewService(dashboard.Options{
		WidgetStore:    a.store,
		Providers:      a.registry,
		RefreshHook:    refresh,
		Telemetry:      a.telemetry,
		Translator:     translator,
		RenderCache:    cache,
		Logger:         a.logger,
		ActivityHooks:  hooks,
		ActivityConfig: activity.Config{Enabled: true},
	})

	seed := commands.NewSeedDashboardCommand(a.store, a.registry, a.service, a.telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{
		SeedLayout: a.cfg.Dashboard.SeedLayout,
		Manifests:  a.manifests,
	}); err != nil {
		return fmt.Errorf("dashboard: seed: %w", err)
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	a.controller = dashboard.NewController(dashboard.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		Themes:   a.themes,
		Activity: a.feed,
	})
	return nil
}

func (a *app) buildChat() error {
	kb, err := glance.DefaultKnowledgeBase()
	if a.cfg.Chat.KnowledgeFile != "" {
		kb, err = glance.LoadKnowledgeFile(a.cfg.Chat.KnowledgeFile)
	}
	if err != nil {
		return err
	}
	composer, err := glance.NewComposer(kb)
	if err != nil {
		return err
	}
	var store glance.ConversationStore = glance.NewMemoryStore(a.cfg.Chat.HistoryLimit)
	if a.redis != nil {
		store = conversations.NewRedisStore(a.redis, a.cfg.Redis.HistoryTTL, a.cfg.Chat.HistoryLimit)
	}
	a.chat, err = glance.NewService(glance.Options{
		Composer:  composer,
		Snapshots: glance.RetailSnapshotter{Repo: a.repo},
		Store:     store,
		Telemetry: a.telemetry,
		Logger:    a.logger,
		Latency:   a.cfg.Chat.Latency,
	})
	return err
}

func loadTranslator(path string) (dashboard.TranslationService, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open translations %s: %w", path, err)
	}
	defer f.Close()
	return dashboard.LoadCatalog(f)
}

// storeThemes brands the fixture stores. Unknown stores use the default.
func storeThemes() *dashboard.StoreThemes {
	themes := dashboard.NewStoreThemes(dashboard.ThemeSelection{Name: "default"})
	themes.Set("retailjet", dashboard.ThemeSelection{
		Name:   "retailjet",
		Tokens: map[string]string{"brand": "#2563eb", "accent": "#f97316"},
		Assets: dashboard.ThemeAssets{Values: map[string]string{"logo": "/static/retailjet.svg"}},
	})
	themes.Set("vitamax", dashboard.ThemeSelection{
		Name:       "vitamax",
		ChartTheme: "macarons",
		Tokens:     map[string]string{"brand": "#16a34a"},
	})
	return themes
}

func (a *app) Close() error {
	var errs error
	if a.broadcast != nil {
		a.broadcast.Close()
	}
	if a.meters != nil {
		errs = errors.Join(errs, a.meters.Shutdown(context.Background()))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errs
}
