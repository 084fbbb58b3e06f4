package queries

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

// DefaultLocale applies when the viewer carries none.
const DefaultLocale = "en"

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
}

// LayoutQuery resolves a store's full layout with card data, as shown to
// one viewer.
type LayoutQuery struct {
	service layoutService
}

func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, dashboard.Layout] = (*LayoutQuery)(nil)

func (q *LayoutQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error) {
	viewer.Locale = strings.ToLower(strings.TrimSpace(viewer.Locale))
	if viewer.Locale == "" {
		viewer.Locale = DefaultLocale
	}
	return q.service.ConfigureLayout(ctx, viewer)
}
