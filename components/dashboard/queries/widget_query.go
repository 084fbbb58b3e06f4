package queries

import (
	"context"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

// WidgetAreaInput names one dashboard tab. AreaCode accepts the full code
// ("glance.inventory") or the tab name ("inventory").
type WidgetAreaInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	AreaCode string                  `json:"area_code"`
}

type areaService interface {
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// WidgetAreaQuery loads a single tab so the client can reload it after a
// refresh event without fetching the whole layout.
type WidgetAreaQuery struct {
	service areaService
	tabs    map[string]string
}

func NewWidgetAreaQuery(service areaService) *WidgetAreaQuery {
	tabs := map[string]string{}
	for _, area := range dashboard.DefaultAreaDefinitions() {
		tabs[area.Tab] = area.Code
	}
	return &WidgetAreaQuery{service: service, tabs: tabs}
}

var _ gocommand.Querier[WidgetAreaInput, dashboard.ResolvedArea] = (*WidgetAreaQuery)(nil)

func (q *WidgetAreaQuery) Query(ctx context.Context, input WidgetAreaInput) (dashboard.ResolvedArea, error) {
	code := strings.ToLower(strings.TrimSpace(input.AreaCode))
	if code == "" {
		return dashboard.ResolvedArea{}, fmt.Errorf("%w: area query requires area code", dashboard.ErrInvalidRequest)
	}
	if full, ok := q.tabs[code]; ok {
		code = full
	}
	if input.Viewer.Locale == "" {
		input.Viewer.Locale = DefaultLocale
	}
	return q.service.ResolveArea(ctx, input.Viewer, code)
}
