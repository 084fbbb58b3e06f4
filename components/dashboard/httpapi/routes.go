package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"

	"github.com/retailjet/glance/components/dashboard"
	"github.com/retailjet/glance/components/dashboard/commands"
	"github.com/retailjet/glance/components/dashboard/queries"
)

// Config wires the dashboard controller, commands and refresh hook into a
// fiber router.
type Config struct {
	Controller     *dashboard.Controller
	API            Executor
	AreaQuery      gocommand.Querier[queries.WidgetAreaInput, dashboard.ResolvedArea]
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
	Logger         *slog.Logger
}

// RouteConfig customizes the paths, relative to BasePath.
type RouteConfig struct {
	HTML        string
	Layout      string
	Area        string
	Widgets     string
	WidgetID    string
	Reorder     string
	Refresh     string
	Preferences string
	WebSocket   string
}

// DefaultBasePath is where dashboard routes mount when BasePath is empty.
const DefaultBasePath = "/dashboard"

type addWidgetBody struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration"`
	Position      *int           `json:"position"`
	Roles         []string       `json:"roles"`
	StartAt       *time.Time     `json:"start_at"`
	EndAt         *time.Time     `json:"end_at"`
}

type updateWidgetBody struct {
	Configuration map[string]any `json:"configuration"`
	Metadata      map[string]any `json:"metadata"`
}

type reorderBody struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
}

type preferencesBody struct {
	AreaOrder     map[string][]string `json:"area_order"`
	HiddenWidgets []string            `json:"hidden_widget_ids"`
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket).
func Register(r fiber.Router, cfg Config) error {
	if r == nil {
		return errors.New("httpapi: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("httpapi: controller is required")
	}
	h := &handlers{
		cfg:    cfg,
		routes: defaultRouteConfig(cfg.Routes),
		viewer: cfg.ViewerResolver,
		logger: cfg.Logger,
	}
	if h.viewer == nil {
		h.viewer = DefaultViewerResolver
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With(slog.String("component", "dashboard.httpapi"))
	base := cfg.BasePath
	if base == "" {
		base = DefaultBasePath
	}
	group := r.Group(base)

	group.Get(h.routes.HTML, h.html)
	group.Get(h.routes.Layout, h.layout)
	if cfg.AreaQuery != nil {
		group.Get(h.routes.Area, h.area)
	}
	if cfg.API != nil {
		group.Post(h.routes.Reorder, h.reorder)
		group.Post(h.routes.Refresh, h.refresh)
		group.Post(h.routes.Widgets, h.assign)
		group.Patch(h.routes.WidgetID, h.update)
		group.Delete(h.routes.WidgetID, h.remove)
		group.Post(h.routes.Preferences, h.preferences)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, h.routes.WebSocket, cfg.Broadcast, h.viewer, h.logger)
	}
	return nil
}

type handlers struct {
	cfg    Config
	routes RouteConfig
	viewer ViewerResolver
	logger *slog.Logger
}

func (h *handlers) html(c *fiber.Ctx) error {
	viewer := h.viewer(c)
	var buf bytes.Buffer
	if err := h.cfg.Controller.RenderTemplate(c.UserContext(), viewer, &buf); err != nil {
		return h.respondError(c, err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *handlers) layout(c *fiber.Ctx) error {
	payload, err := h.cfg.Controller.LayoutPayload(c.UserContext(), h.viewer(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(payload)
}

func (h *handlers) area(c *fiber.Ctx) error {
	area, err := h.cfg.AreaQuery.Query(c.UserContext(), queries.WidgetAreaInput{
		Viewer:   h.viewer(c),
		AreaCode: c.Params("area"),
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(area)
}

func (h *handlers) assign(c *fiber.Ctx) error {
	var body addWidgetBody
	if err := decodeBody(c, &body); err != nil {
		return h.respondError(c, err)
	}
	viewer := h.viewer(c)
	var created dashboard.WidgetInstance
	err := h.cfg.API.Assign(c.UserContext(), commands.AssignWidgetInput{
		Request: dashboard.AddWidgetRequest{
			DefinitionID:  body.DefinitionID,
			AreaCode:      body.AreaCode,
			Configuration: body.Configuration,
			Position:      body.Position,
			Roles:         body.Roles,
			StartAt:       body.StartAt,
			EndAt:         body.EndAt,
			ActorID:       viewer.UserID,
			UserID:        viewer.UserID,
			TenantID:      viewer.TenantID,
		},
		Result: &created,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "created", "widget": created})
}

func (h *handlers) update(c *fiber.Ctx) error {
	var body updateWidgetBody
	if err := decodeBody(c, &body); err != nil {
		return h.respondError(c, err)
	}
	viewer := h.viewer(c)
	err := h.cfg.API.Update(c.UserContext(), commands.UpdateWidgetInput{
		WidgetID:      c.Params("id"),
		Configuration: body.Configuration,
		Metadata:      body.Metadata,
		ActorID:       viewer.UserID,
		UserID:        viewer.UserID,
		TenantID:      viewer.TenantID,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *handlers) remove(c *fiber.Ctx) error {
	viewer := h.viewer(c)
	err := h.cfg.API.Remove(c.UserContext(), commands.RemoveWidgetInput{
		WidgetID: c.Params("id"),
		ActorID:  viewer.UserID,
		UserID:   viewer.UserID,
		TenantID: viewer.TenantID,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) reorder(c *fiber.Ctx) error {
	var body reorderBody
	if err := decodeBody(c, &body); err != nil {
		return h.respondError(c, err)
	}
	viewer := h.viewer(c)
	err := h.cfg.API.Reorder(c.UserContext(), commands.ReorderWidgetsInput{
		AreaCode:  body.AreaCode,
		WidgetIDs: body.WidgetIDs,
		ActorID:   viewer.UserID,
		TenantID:  viewer.TenantID,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "reordered"})
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	var payload commands.RefreshWidgetInput
	if err := decodeBody(c, &payload); err != nil {
		return h.respondError(c, err)
	}
	// Events only ever reach the caller's own store.
	payload.Event.TenantID = h.viewer(c).TenantID
	if err := h.cfg.API.Refresh(c.UserContext(), payload); err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}

func (h *handlers) preferences(c *fiber.Ctx) error {
	var body preferencesBody
	if err := decodeBody(c, &body); err != nil {
		return h.respondError(c, err)
	}
	err := h.cfg.API.Preferences(c.UserContext(), commands.SaveLayoutPreferencesInput{
		Viewer:        h.viewer(c),
		AreaOrder:     body.AreaOrder,
		HiddenWidgets: body.HiddenWidgets,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "saved"})
}

var errMalformedBody = errors.New("httpapi: malformed request body")

func decodeBody(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return errMalformedBody
	}
	if err := json.Unmarshal(c.Body(), dest); err != nil {
		return errors.Join(errMalformedBody, err)
	}
	return nil
}

func (h *handlers) respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	body := fiber.Map{"error": err.Error()}
	var verr *dashboard.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}
	if status >= fiber.StatusInternalServerError {
		h.logger.ErrorContext(c.UserContext(), "dashboard request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}
	return c.Status(status).JSON(body)
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return fiber.StatusBadRequest
	case errors.Is(err, dashboard.ErrInvalidConfiguration):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, dashboard.ErrWidgetNotFound),
		errors.Is(err, dashboard.ErrAreaNotFound),
		errors.Is(err, dashboard.ErrDefinitionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrCommandUnavailable):
		return fiber.StatusNotImplemented
	default:
		return fiber.StatusInternalServerError
	}
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.Layout == "" {
		routes.Layout = "/_layout"
	}
	if routes.Area == "" {
		routes.Area = "/areas/:area"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/widgets/:id"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/widgets/reorder"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/widgets/refresh"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/preferences"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
