package handlers

import (
	"bookbright/internal/log"
	"bookbright/internal/services"
	"bookbright/internal/validate"

	"github.com/gofiber/fiber/v2"
)

const categoryPageSize = 24

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	home := h.Catalog.Home()
	return render(c, "home", fiber.Map{"Categories": home.Categories, "Products": home.Latest})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	name, ok := validate.Category(c.Params("name"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, "Fant ikke kategorien")
	}
	page := validate.Page(c.Query("page"))
	products, err := h.Catalog.ListProductsByCategory(name, page, categoryPageSize)
	if err != nil {
		log.Error(c, "category.list.fail", err, map[string]any{"category": name})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Kunne ikke laste produkter. Prøv igjen."})
	}
	data := fiber.Map{"Category": name, "Products": products, "Page": page}
	if page > 1 {
		data["Prev"] = page - 1
	}
	if len(products) == categoryPageSize {
		data["Next"] = page + 1
	}
	return render(c, "category", data)
}
