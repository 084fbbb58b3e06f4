package dashboard

import "context"

// ActivityContext carries who performed a mutation, for audit events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores the actor on ctx.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ContextWithViewer stores the viewer as the acting user.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	return ContextWithActivity(ctx, ActivityContext{
		ActorID:  viewer.UserID,
		UserID:   viewer.UserID,
		TenantID: viewer.TenantID,
	})
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

// merge fills empty fields from ctx.
func (a ActivityContext) merge(ctx context.Context) ActivityContext {
	from := activityContextFrom(ctx)
	if a.ActorID == "" {
		a.ActorID = from.ActorID
	}
	if a.UserID == "" {
		a.UserID = from.UserID
	}
	if a.TenantID == "" {
		a.TenantID = from.TenantID
	}
	return a
}
