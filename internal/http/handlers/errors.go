package handlers

import (
	"errors"
	"strings"

	applog "bookbright/internal/log"

	"github.com/gofiber/fiber/v2"
)

const msgServerError = "Noe gikk galt. Prøv igjen."

// ErrorHandler logs the error and answers with a friendly page, or a JSON
// body under /api/. Internal details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Warn(c, "server.client_error", err, nil)
	}

	msg := msgServerError
	if code == fiber.StatusNotFound {
		msg = "Fant ikke siden"
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
