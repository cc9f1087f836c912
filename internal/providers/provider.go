// Package providers adapts marketplace product pages (Temu, Alibaba) into one
// provider-agnostic product shape.
package providers

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData is returned when a page yields no usable product title.
var ErrInsufficientData = errors.New("insufficient product data")

// Outcome tags which step of the extraction chain produced the product title.
type Outcome string

const (
	OutcomeJSONLD       Outcome = "jsonld"
	OutcomeHydration    Outcome = "hydration"
	OutcomeHTML         Outcome = "html"
	OutcomeInsufficient Outcome = "insufficient"
)

type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

type RawVariant struct {
	Name       string
	Price      decimal.Decimal
	Image      string
	Attributes map[string]string
}

// RawProduct is what a provider could scrape from one page. Zero values mean
// "not found".
type RawProduct struct {
	Outcome          Outcome
	Title            string
	Description      string
	Images           []string
	Price            decimal.Decimal
	PriceRange       *PriceRange
	Currency         string
	SKU              string
	Brand            string
	Specs            map[string]string
	Variants         []RawVariant
	MOQ              string
	ShippingEstimate string
	OutOfStock       bool
	Warnings         []string
}

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type MappedVariant struct {
	Name       string            `json:"name"`
	Price      Money             `json:"price"`
	Image      string            `json:"image,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// MappedProduct is the common product shape every provider maps into.
// Variants is never empty and Images is never nil.
type MappedProduct struct {
	Supplier    string            `json:"supplier"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       Money             `json:"price"`
	Images      []string          `json:"images"`
	Specs       map[string]string `json:"specs"`
	Variants    []MappedVariant   `json:"variants"`
	Available   bool              `json:"available"`
	Outcome     Outcome           `json:"outcome"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// Provider is one marketplace adapter.
type Provider interface {
	Name() string
	// CanHandle reports whether the URL's host belongs to this marketplace.
	CanHandle(rawURL string) bool
	FetchProduct(ctx context.Context, rawURL string) (*RawProduct, error)
	MapToProduct(raw *RawProduct, rawURL string) (*MappedProduct, error)
}

// ProductPageChecker is implemented by providers that can tell whether a URL
// points at a single product rather than a search or store page.
type ProductPageChecker interface {
	LooksLikeProductPage(rawURL string) bool
}
