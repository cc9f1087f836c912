package handlers

import (
	"database/sql"
	"errors"

	"bookbright/internal/domain"
	"bookbright/internal/log"
	"bookbright/internal/services"
	"bookbright/internal/validate"

	"github.com/gofiber/fiber/v2"
)

const msgGone = "Denne varen er ikke lenger tilgjengelig"

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, msgGone)
	}
	p, err := h.Catalog.Product(slug)
	if err != nil || !p.IsActive {
		return notFound(c, msgGone)
	}
	return render(c, "product", fiber.Map{"P": p, "Images": p.Images(), "Specs": p.Specs()})
}

type apiVariant struct {
	domain.Variant
	Attributes map[string]string `json:"attributes"`
}

type apiProduct struct {
	domain.Product
	Images   []string          `json:"images"`
	Specs    map[string]string `json:"specs"`
	Variants []apiVariant      `json:"variants,omitempty"`
}

func toAPI(p domain.Product, vs []domain.Variant) apiProduct {
	out := apiProduct{Product: p, Images: p.Images(), Specs: p.Specs()}
	for _, v := range vs {
		out.Variants = append(out.Variants, apiVariant{Variant: v, Attributes: v.Attributes()})
	}
	return out
}

// GET /api/v1/products?category=&page=
func (h *ProductHandler) APIList(c *fiber.Ctx) error {
	page := validate.Page(c.Query("page"))
	var (
		ps  []domain.Product
		err error
	)
	if raw := c.Query("category"); raw != "" {
		cat, ok := validate.Category(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ugyldig kategori"})
		}
		ps, err = h.Catalog.ListProductsByCategory(cat, page, 24)
	} else {
		ps, err = h.Catalog.Search("", "", page, 24)
	}
	if err != nil {
		log.Error(c, "api.products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "kunne ikke laste produkter"})
	}
	items := make([]apiProduct, 0, len(ps))
	for _, p := range ps {
		items = append(items, toAPI(p, nil))
	}
	return c.JSON(fiber.Map{"products": items, "page": page})
}

// GET /api/v1/products/:slug
func (h *ProductHandler) APIDetail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "fant ikke produktet"})
	}
	p, err := h.Catalog.Product(slug)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !p.IsActive) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "fant ikke produktet"})
	}
	if err != nil {
		log.Error(c, "api.products.get.fail", err, map[string]any{"slug": slug})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "kunne ikke laste produktet"})
	}
	return c.JSON(toAPI(p.Product, p.Variants))
}
