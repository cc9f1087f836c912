package providers

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// extract runs JSON-LD, then hydration state, then CSS selectors over one
// page and merges the results field by field.
func extract(body []byte, hspec hydrationSpec, sspec selectorSpec) (*RawProduct, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	raw := merge(
		extractJSONLD(doc),
		extractHydration(body, doc, hspec),
		extractSelectors(doc, sspec),
	)
	if raw.Title == "" {
		raw.Outcome = OutcomeInsufficient
		return raw, ErrInsufficientData
	}
	return raw, nil
}

// merge fills each field from the first part that has it. The outcome is
// taken from the part that supplied the title.
func merge(parts ...*RawProduct) *RawProduct {
	out := &RawProduct{Outcome: OutcomeInsufficient, Specs: map[string]string{}}
	for _, p := range parts {
		if p == nil {
			continue
		}
		if out.Title == "" && p.Title != "" {
			out.Title = p.Title
			out.Outcome = p.Outcome
		}
		if out.Description == "" {
			out.Description = p.Description
		}
		if len(out.Images) == 0 && len(p.Images) > 0 {
			out.Images = p.Images
		}
		if out.Price.IsZero() && p.Price.IsPositive() {
			out.Price = p.Price
		}
		if out.PriceRange == nil && p.PriceRange != nil {
			out.PriceRange = p.PriceRange
		}
		if out.Currency == "" {
			out.Currency = p.Currency
		}
		if out.SKU == "" {
			out.SKU = p.SKU
		}
		if out.Brand == "" {
			out.Brand = p.Brand
		}
		if len(out.Variants) == 0 && len(p.Variants) > 0 {
			out.Variants = p.Variants
		}
		if out.MOQ == "" {
			out.MOQ = p.MOQ
		}
		if out.ShippingEstimate == "" {
			out.ShippingEstimate = p.ShippingEstimate
		}
		out.OutOfStock = out.OutOfStock || p.OutOfStock
		for k, v := range p.Specs {
			if _, ok := out.Specs[k]; !ok {
				out.Specs[k] = v
			}
		}
		out.Warnings = append(out.Warnings, p.Warnings...)
	}
	return out
}
