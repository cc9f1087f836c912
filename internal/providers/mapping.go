package providers

import "strings"

const (
	SpecMOQ        = "Minimum bestilling"
	SpecPriceRange = "Prisintervall"
	SpecShipping   = "Leveringstid"
	SpecBrand      = "Merke"

	defaultVariantName = "Standard"
)

// mapRaw turns a scraped record into the common product shape. Both
// marketplaces share it; only the supplier tag differs.
func mapRaw(supplier string, raw *RawProduct, rawURL string) (*MappedProduct, error) {
	if raw == nil || strings.TrimSpace(raw.Title) == "" {
		return nil, ErrInsufficientData
	}
	currency := raw.Currency
	if currency == "" {
		currency = "USD"
	}
	price := raw.Price
	if price.IsZero() && raw.PriceRange != nil {
		price = raw.PriceRange.Min
	}
	if raw.PriceRange != nil && raw.PriceRange.Min.LessThan(price) {
		price = raw.PriceRange.Min
	}

	m := &MappedProduct{
		Supplier:    supplier,
		URL:         rawURL,
		Title:       cleanText(raw.Title),
		Description: raw.Description,
		Price:       Money{Amount: price, Currency: currency},
		Images:      dedupe(raw.Images),
		Specs:       map[string]string{},
		Available:   !raw.OutOfStock,
		Outcome:     raw.Outcome,
		Warnings:    append([]string(nil), raw.Warnings...),
	}
	for k, v := range raw.Specs {
		m.Specs[k] = v
	}
	if raw.MOQ != "" {
		m.Specs[SpecMOQ] = raw.MOQ
	}
	if r := raw.PriceRange; r != nil && !r.Min.Equal(r.Max) {
		m.Specs[SpecPriceRange] = r.Min.StringFixed(2) + " - " + r.Max.StringFixed(2) + " " + currency
	}
	if raw.ShippingEstimate != "" {
		m.Specs[SpecShipping] = raw.ShippingEstimate
	}
	if raw.Brand != "" {
		m.Specs[SpecBrand] = raw.Brand
	}

	for _, rv := range raw.Variants {
		vp := rv.Price
		if !vp.IsPositive() {
			vp = price
		}
		m.Variants = append(m.Variants, MappedVariant{
			Name:       rv.Name,
			Price:      Money{Amount: vp, Currency: currency},
			Image:      rv.Image,
			Attributes: rv.Attributes,
		})
	}
	if len(m.Variants) == 0 {
		m.Variants = []MappedVariant{{
			Name:  defaultVariantName,
			Price: Money{Amount: price, Currency: currency},
		}}
	}
	return m, nil
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "//") {
			s = "https:" + s
		}
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
