package handlers

import (
	"net/url"

	"bookbright/internal/domain"
	applog "bookbright/internal/log"
	"bookbright/internal/services"

	"github.com/gofiber/fiber/v2"
)

func currentAdmin(c *fiber.Ctx, auth *services.AuthService) (*domain.User, bool) {
	sid := c.Cookies("sid")
	if sid == "" {
		return nil, false
	}
	u, err := auth.CurrentUser(c.UserContext(), sid)
	if err != nil || u == nil || u.Role != domain.RoleAdmin {
		applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
		return nil, false
	}
	return u, true
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies("sid") == "" {
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		u, ok := currentAdmin(c, auth)
		if !ok {
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Ingen tilgang"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdminAPI is RequireAdmin for JSON endpoints: no redirects, 401 body.
func RequireAdminAPI(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := currentAdmin(c, auth)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Du må være logget inn som administrator"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
