package handlers

import (
	"context"

	applog "bookbright/internal/log"
	"bookbright/internal/services"
	"bookbright/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// Importer runs a bulk import; *services.ImportService implements it.
type Importer interface {
	Import(ctx context.Context, urls []string, provider string) []services.BulkImportResult
}

type AdminHandler struct {
	Importer  Importer
	Providers []string
}

// GET /admin/import
func (h *AdminHandler) ImportPage(c *fiber.Ctx) error {
	return render(c, "admin_import", fiber.Map{"Providers": h.Providers})
}

// POST /admin/import
func (h *AdminHandler) ImportForm(c *fiber.Ctx) error {
	req := validate.ImportRequest{
		URLs:     validate.SplitURLs(c.FormValue("urls")),
		Provider: c.FormValue("provider"),
	}
	if err := validate.Import(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "import", "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).Render("admin_import", fiber.Map{
			"Providers": h.Providers, "Err": err.Error(), "URLs": c.FormValue("urls"), "CSRFToken": csrfToken(c),
		})
	}
	results := h.run(c, req)
	return render(c, "admin_import", fiber.Map{"Providers": h.Providers, "Results": results, "Summary": summarize(results)})
}

// POST /api/admin/import
func (h *AdminHandler) ImportAPI(c *fiber.Ctx) error {
	var req validate.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ugyldig forespørsel: forventet JSON med urls"})
	}
	if err := validate.Import(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "import", "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"results": h.run(c, req)})
}

// GET /api/admin/providers
func (h *AdminHandler) ProvidersAPI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"providers": h.Providers})
}

func (h *AdminHandler) run(c *fiber.Ctx, req validate.ImportRequest) []services.BulkImportResult {
	applog.Audit(c, "admin.import.start", map[string]any{"urls": len(req.URLs), "provider": req.Provider})
	results := h.Importer.Import(c.UserContext(), req.URLs, req.Provider)
	applog.Audit(c, "admin.import.done", summarize(results))
	return results
}

func summarize(results []services.BulkImportResult) map[string]any {
	s := map[string]any{"total": len(results)}
	for _, st := range []services.ImportStatus{services.StatusSuccess, services.StatusWarning, services.StatusError} {
		n := 0
		for _, r := range results {
			if r.Status == st {
				n++
			}
		}
		s[string(st)] = n
	}
	return s
}
