package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/retailjet/glance/components/dashboard"
)

// Locals keys read by DefaultViewerResolver. Authentication middleware sets
// them after verifying the request.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalRoles    = "roles"
	LocalLocale   = "locale"
)

// ViewerResolver converts a request into a dashboard.ViewerContext.
type ViewerResolver func(*fiber.Ctx) dashboard.ViewerContext

// DefaultViewerResolver reads the viewer from request locals and infers the
// locale from the query string or Accept-Language.
func DefaultViewerResolver(c *fiber.Ctx) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := c.Locals(LocalUserID).(string); ok {
		viewer.UserID = v
	}
	if v, ok := c.Locals(LocalTenantID).(string); ok {
		viewer.TenantID = v
	}
	if roles, ok := c.Locals(LocalRoles).([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(c)
	return viewer
}

func inferLocale(c *fiber.Ctx) string {
	if locale, ok := c.Locals(LocalLocale).(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := c.Get(fiber.HeaderAcceptLanguage); header != "" {
		return parseAcceptLanguage(header)
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" && token != "*" {
			return strings.ToLower(token)
		}
	}
	return ""
}
