package dashboard

import (
	"context"
	"errors"
	"io"
)

const (
	defaultTemplate      = "dashboard.html"
	defaultActivityLimit = 8
)

// LayoutResolver resolves a full layout for a viewer.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// ControllerOptions wires the collaborators used to build dashboard pages.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
	Areas    []WidgetAreaDefinition
	Themes   ThemeProvider
	Activity *ActivityFeed
}

// Controller builds the dashboard payload for HTML and JSON transports.
type Controller struct {
	opts ControllerOptions
}

// NewController applies defaults to the options.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaDefinitions()
	}
	return &Controller{opts: opts}
}

// Render resolves the layout for a viewer.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.opts.Service == nil {
		return Layout{}, nil
	}
	return c.opts.Service.ConfigureLayout(ctx, viewer)
}

// LayoutPayload returns the template data: ordered tabs with their widgets,
// the viewer, the store theme and recent activity.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return nil, err
	}
	areas := make([]map[string]any, 0, len(c.opts.Areas))
	for _, area := range c.opts.Areas {
		widgets := layout.Areas[area.Code]
		if widgets == nil {
			widgets = []WidgetInstance{}
		}
		areas = append(areas, map[string]any{
			"code":    area.Code,
			"name":    area.Name,
			"tab":     area.Tab,
			"widgets": widgets,
		})
	}
	payload := map[string]any{
		"areas":  areas,
		"layout": layout,
		"viewer": viewer,
		"locale": viewer.Locale,
	}
	if c.opts.Themes != nil {
		theme, err := c.opts.Themes.SelectTheme(ctx, viewer)
		if err != nil {
			return nil, err
		}
		if theme != nil {
			payload["theme"] = map[string]any{
				"name":        theme.Name,
				"chart_theme": theme.ChartTheme,
				"css":         theme.CSSVariablesInline(),
				"logo":        theme.Assets.AssetURL("logo"),
			}
		}
	}
	if c.opts.Activity != nil {
		payload["activity"] = c.opts.Activity.Recent(ctx, viewer, defaultActivityLimit)
	}
	return payload, nil
}

// RenderTemplate renders the dashboard page into w.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, w io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller renderer not configured")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, payload, w)
	return err
}
