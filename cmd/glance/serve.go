package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retailjet/glance/components/dashboard/commands"
	"github.com/retailjet/glance/components/dashboard/httpapi"
	"github.com/retailjet/glance/components/dashboard/queries"
	"github.com/retailjet/glance/components/glance"
	chatapi "github.com/retailjet/glance/components/glance/httpapi"
	"github.com/retailjet/glance/pkg/auth"
	"github.com/retailjet/glance/pkg/conversations"
	"github.com/retailjet/glance/pkg/ratelimit"
)

type serveCmd struct {
	Addr string `help:"Listen address, overriding server.addr."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := a.newServer()
	if err != nil {
		return err
	}
	if a.redis != nil {
		go func() {
			if err := conversations.Relay(ctx, a.redis, cfg.Redis.Channel, a.broadcast, logger); err != nil {
				logger.Error("widget event relay stopped", slog.Any("error", err))
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("glance listening", slog.String("addr", cfg.Server.Addr))
		errc <- server.Listen(cfg.Server.Addr)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	if err := server.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newServer mounts health, auth, shell, dashboard and chat routes.
func (a *app) newServer() (*fiber.App, error) {
	cfg := a.cfg
	server := fiber.New(fiber.Config{
		AppName:               "glance",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: true,
	})
	server.Get("/healthz", a.health)

	var validator *auth.Validator
	if cfg.Auth.Secret != "" {
		v, err := auth.NewValidator(cfg.Auth.Secret, cfg.Auth.Issuer)
		if err != nil {
			return nil, err
		}
		validator = v
	}
	server.Use(auth.New(auth.Config{
		Validator:      validator,
		DevBypass:      cfg.Auth.DevBypass,
		PublicPrefixes: cfg.Auth.PublicPrefixes,
		Logger:         a.logger,
	}))

	a.shell.Register(server)

	executor := &httpapi.CommandExecutor{
		AssignCommander:      commands.NewAssignWidgetCommand(a.service, a.telemetry),
		UpdateCommander:      commands.NewUpdateWidgetCommand(a.service, a.telemetry),
		RemoveCommander:      commands.NewRemoveWidgetCommand(a.service, a.telemetry),
		ReorderCommander:     commands.NewReorderWidgetsCommand(a.service, a.telemetry),
		RefreshCommander:     commands.NewRefreshWidgetCommand(a.service, a.telemetry),
		PreferencesCommander: commands.NewSaveLayoutPreferencesCommand(a.service, a.telemetry),
	}
	if err := httpapi.Register(server, httpapi.Config{
		Controller: a.controller,
		API:        executor,
		AreaQuery:  queries.NewWidgetAreaQuery(a.service),
		Broadcast:  a.broadcast,
		BasePath:   cfg.Dashboard.BasePath,
		Logger:     a.logger,
	}); err != nil {
		return nil, err
	}

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.Chat.RateLimit.RequestsPerSecond,
		Burst:             cfg.Chat.RateLimit.Burst,
	})
	if err := chatapi.Register(server, chatapi.Config{
		Completion: glance.NewCompletionQuery(a.chat),
		History:    glance.NewHistoryQuery(a.chat),
		Middleware: []fiber.Handler{limiter.Middleware()},
		Logger:     a.logger,
	}); err != nil {
		return nil, err
	}
	return server, nil
}

func (a *app) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	checks := fiber.Map{"storage": "ok"}
	status := fiber.StatusOK
	if _, err := a.repo.Stores(ctx); err != nil {
		checks["storage"] = err.Error()
		status = fiber.StatusServiceUnavailable
	}
	if a.redis != nil {
		checks["redis"] = "ok"
		if err := a.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = fiber.StatusServiceUnavailable
		}
	}
	return c.Status(status).JSON(fiber.Map{"status": statusText(status), "checks": checks})
}

func statusText(status int) string {
	if status == fiber.StatusOK {
		return "ok"
	}
	return "degraded"
}
