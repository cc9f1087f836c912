package handlers

import (
	"time"

	"bookbright/internal/domain"
	"bookbright/internal/log"
	"bookbright/internal/services"
	"bookbright/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const msgBadLogin = "Feil e-post eller passord"

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Next": safeNext(c.Query("next"))})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": msgBadLogin, "CSRFToken": csrfToken(c)})
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": msgBadLogin, "CSRFToken": csrfToken(c)})
	}

	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": msgBadLogin, "CSRFToken": csrfToken(c)})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	if next := safeNext(c.FormValue("next")); next != "" {
		return c.Redirect(next)
	}
	if u.Role == domain.RoleAdmin {
		return c.Redirect("/admin/import")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(c.UserContext(), sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}

// safeNext only allows local absolute paths as a post-login target.
func safeNext(s string) string {
	if len(s) < 2 || s[0] != '/' || s[1] == '/' || s[1] == '\\' {
		return ""
	}
	return s
}
