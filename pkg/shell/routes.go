package shell

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/retailjet/glance/components/retail"
)

// Locals keys set by the auth middleware.
const (
	localTenantID = "tenant_id"
	localLocale   = "locale"
)

// Register mounts GET /api/stores and GET /api/navigation.
func (s *Shell) Register(r fiber.Router) {
	r.Get("/api/stores", s.storesHandler)
	r.Get("/api/navigation", s.navigationHandler)
}

func (s *Shell) storesHandler(c *fiber.Ctx) error {
	active, _ := c.Locals(localTenantID).(string)
	stores, err := s.StoresFor(c.UserContext(), active)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"stores": stores})
}

func (s *Shell) navigationHandler(c *fiber.Ctx) error {
	locale, _ := c.Locals(localLocale).(string)
	if q := c.Query("locale"); q != "" {
		locale = q
	}
	items, err := s.Navigation(c.UserContext(), locale)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	body := fiber.Map{"menu": s.cfg.MenuCode, "items": items}
	if store, _ := c.Locals(localTenantID).(string); store != "" {
		crumbs, err := s.Breadcrumbs(c.UserContext(), store, c.Query("path"))
		switch {
		case err == nil:
			body["breadcrumbs"] = crumbs
		case errors.Is(err, retail.ErrStoreNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(body)
}
