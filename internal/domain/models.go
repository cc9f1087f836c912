package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CategoryCount is a category name with the number of active products in it.
type CategoryCount struct {
	Name  string `db:"category"`
	Count int    `db:"n"`
}

type Product struct {
	ID               string          `db:"id" json:"id"`
	Slug             string          `db:"slug" json:"slug"`
	SKU              string          `db:"sku" json:"sku"`
	Name             string          `db:"name" json:"name"`
	Description      string          `db:"description" json:"description"`
	Price            decimal.Decimal `db:"price" json:"price"`
	CompareAtPrice   decimal.Decimal `db:"compare_at_price" json:"compareAtPrice"`
	SupplierPrice    decimal.Decimal `db:"supplier_price" json:"supplierPrice"`
	SupplierCurrency string          `db:"supplier_currency" json:"supplierCurrency"`
	ImagesJSON       string          `db:"images_json" json:"-"`
	TagsJSON         string          `db:"tags_json" json:"-"`
	SpecsJSON        string          `db:"specs_json" json:"-"`
	Category         string          `db:"category" json:"category"`
	Supplier         string          `db:"supplier" json:"supplier"`
	SupplierURL      string          `db:"supplier_url" json:"supplierUrl"`
	IsActive         bool            `db:"is_active" json:"isActive"`
	CreatedAt        string          `db:"created_at" json:"createdAt"`
	UpdatedAt        string          `db:"updated_at" json:"updatedAt"`
}

type Variant struct {
	ID             string          `db:"id" json:"id"`
	ProductID      string          `db:"product_id" json:"productId"`
	Name           string          `db:"name" json:"name"`
	SKU            string          `db:"sku" json:"sku"`
	Price          decimal.Decimal `db:"price" json:"price"`
	CompareAtPrice decimal.Decimal `db:"compare_at_price" json:"compareAtPrice"`
	SupplierPrice  decimal.Decimal `db:"supplier_price" json:"supplierPrice"`
	Image          string          `db:"image" json:"image,omitempty"`
	AttributesJSON string          `db:"attributes_json" json:"-"`
	Stock          int             `db:"stock" json:"stock"`
	IsActive       bool            `db:"is_active" json:"isActive"`
}

// CatalogProduct is a product row together with its variant rows, written in
// one transaction.
type CatalogProduct struct {
	Product
	Variants []Variant `json:"variants"`
}

// Images decodes ImagesJSON; a malformed value yields no images.
func (p Product) Images() []string {
	var out []string
	if err := json.Unmarshal([]byte(p.ImagesJSON), &out); err != nil {
		return []string{}
	}
	return out
}

func (p Product) Specs() map[string]string {
	out := map[string]string{}
	_ = json.Unmarshal([]byte(p.SpecsJSON), &out)
	return out
}

func (v Variant) Attributes() map[string]string {
	out := map[string]string{}
	_ = json.Unmarshal([]byte(v.AttributesJSON), &out)
	return out
}
