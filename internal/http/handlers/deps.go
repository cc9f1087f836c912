package handlers

import (
	"bookbright/internal/config"
	"bookbright/internal/fetcher"
	"bookbright/internal/providers"
	"bookbright/internal/repos"
	"bookbright/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	AdminHandler    *AdminHandler

	Registry *providers.Registry
	Importer *services.ImportService
}

// NewDeps wires the catalog and import stack. A nil registry gets the default
// Temu and Alibaba providers over an HTTP fetcher built from cfg.
func NewDeps(db *sqlx.DB, cfg config.Config, reg *providers.Registry) *Deps {
	prodRepo := repos.NewProductRepo(db)
	catalogSvc := services.NewCatalogService(prodRepo)

	if reg == nil {
		reg = DefaultRegistry(cfg.Fetch)
	}
	importSvc := services.NewImportService(reg, prodRepo, services.NewPricing(cfg.Import), cfg.Import.Delay)

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		AdminHandler:    &AdminHandler{Importer: importSvc, Providers: reg.Names()},
		Registry:        reg,
		Importer:        importSvc,
	}
}

// DefaultRegistry builds the marketplace providers. The headless renderer is
// only attached when enabled.
func DefaultRegistry(fc config.FetchConfig) *providers.Registry {
	f := fetcher.NewHTTPFetcher(fetcher.Options{
		UserAgent: fc.UserAgent,
		Timeout:   fc.Timeout,
		Attempts:  fc.Attempts,
	})
	var render fetcher.Fetcher
	if fc.RenderEnabled {
		render = fetcher.NewChromedpRenderer(fetcher.RenderOptions{Timeout: fc.RenderTimeout, UserAgent: fc.UserAgent})
	}
	return providers.NewRegistry(providers.NewTemu(f, render), providers.NewAlibaba(f, render))
}
