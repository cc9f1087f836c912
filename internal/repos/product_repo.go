package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookbright/internal/domain"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicateProduct is returned by Create when a row with the same
// supplier URL already exists.
var ErrDuplicateProduct = errors.New("product with this supplier url already exists")

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    id, slug, sku, name, description, price, compare_at_price, supplier_price,
    supplier_currency, images_json, tags_json, specs_json, category, supplier,
    COALESCE(supplier_url,'') AS supplier_url, is_active,
    created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) ListByCategory(category string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
  SELECT `+productCols+`
  FROM products
  WHERE category = ? AND is_active = 1
  ORDER BY created_at DESC, id
  LIMIT ? OFFSET ?
`, category, limit, offset)
	return out, err
}

func (r *ProductRepo) Latest(limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
  SELECT `+productCols+`
  FROM products
  WHERE is_active = 1
  ORDER BY created_at DESC, id
  LIMIT ?
`, limit)
	return out, err
}

func (r *ProductRepo) Categories() ([]domain.CategoryCount, error) {
	var out []domain.CategoryCount
	err := r.db.Select(&out, `
  SELECT category, COUNT(*) AS n
  FROM products
  WHERE is_active = 1
  GROUP BY category
  ORDER BY category
`)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) BySlug(slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE slug = ?`, slug)
	return p, err
}

func (r *ProductRepo) Variants(productID string) ([]domain.Variant, error) {
	var out []domain.Variant
	err := r.db.Select(&out, `
  SELECT id, product_id, name, sku, price, compare_at_price, supplier_price,
         image, attributes_json, stock, is_active
  FROM product_variants
  WHERE product_id = ?
  ORDER BY sku
`, productID)
	return out, err
}

func (r *ProductRepo) Search(q, category string, limit, offset int) ([]domain.Product, error) {
	where := `is_active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}

	query := `
  SELECT ` + productCols + `
  FROM products
  WHERE ` + where + `
  ORDER BY created_at DESC, id
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, query, args...)
	return out, err
}

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// FindBySupplierURL returns the id of the catalog row imported from url, or ""
// when there is none.
func (r *ProductRepo) FindBySupplierURL(ctx context.Context, url string) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM products WHERE supplier_url = ? LIMIT 1`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// Create writes the product and all of its variants in one transaction.
func (r *ProductRepo) Create(ctx context.Context, p *domain.CatalogProduct) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var supplierURL any
	if p.SupplierURL != "" {
		supplierURL = p.SupplierURL
	}
	_, err = tx.ExecContext(ctx, `
	  INSERT INTO products
	    (id, slug, sku, name, description, price, compare_at_price, supplier_price, supplier_currency,
	     images_json, tags_json, specs_json, category, supplier, supplier_url, is_active, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Slug, p.SKU, p.Name, p.Description, p.Price, p.CompareAtPrice, p.SupplierPrice, p.SupplierCurrency,
		p.ImagesJSON, p.TagsJSON, p.SpecsJSON, p.Category, p.Supplier, supplierURL, p.IsActive)
	if err != nil {
		if isUniqueViolation(err, "products.supplier_url") {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("insert product: %w", err)
	}

	for _, v := range p.Variants {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO product_variants
		    (id, product_id, name, sku, price, compare_at_price, supplier_price, image, attributes_json, stock, is_active)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, v.ID, p.ID, v.Name, v.SKU, v.Price, v.CompareAtPrice, v.SupplierPrice, v.Image, v.AttributesJSON, v.Stock, v.IsActive); err != nil {
			return fmt.Errorf("insert variant %s: %w", v.SKU, err)
		}
	}
	return tx.Commit()
}

func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
