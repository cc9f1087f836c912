package services

import (
	"strings"

	"bookbright/internal/domain"
	"bookbright/internal/repos"
)

const defaultPageSize = 12

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Home is what the landing page shows. Store errors degrade to empty sections.
type Home struct {
	Categories []domain.CategoryCount
	Latest     []domain.Product
}

func (s *CatalogService) Home() Home {
	return Home{
		Categories: repos.SafeQuery("catalog.categories.fail", []domain.CategoryCount{}, s.Prods.Categories),
		Latest: repos.SafeQuery("catalog.latest.fail", []domain.Product{}, func() ([]domain.Product, error) {
			return s.Prods.Latest(defaultPageSize)
		}),
	}
}

func (s *CatalogService) ListCategories() ([]domain.CategoryCount, error) {
	return s.Prods.Categories()
}

func (s *CatalogService) ListProductsByCategory(category string, page, pageSize int) ([]domain.Product, error) {
	limit, offset := paginate(page, pageSize)
	return s.Prods.ListByCategory(category, limit, offset)
}

// Product loads an active product with its variants.
func (s *CatalogService) Product(slug string) (*domain.CatalogProduct, error) {
	p, err := s.Prods.BySlug(slug)
	if err != nil {
		return nil, err
	}
	vs, err := s.Prods.Variants(p.ID)
	if err != nil {
		return nil, err
	}
	return &domain.CatalogProduct{Product: p, Variants: vs}, nil
}

func (s *CatalogService) Search(q, category string, page, pageSize int) ([]domain.Product, error) {
	limit, offset := paginate(page, pageSize)
	return s.Prods.Search(strings.ToLower(strings.TrimSpace(q)), category, limit, offset)
}

func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return pageSize, (page - 1) * pageSize
}
