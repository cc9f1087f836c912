package providers

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractJSONLD reads the first schema.org Product (or ProductGroup) found in
// the page's ld+json blocks. It returns nil when there is none.
func extractJSONLD(doc *goquery.Document) *RawProduct {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return true
		}
		found = findProductNode(v)
		return found == nil
	})
	if found == nil {
		return nil
	}

	raw := &RawProduct{
		Outcome:     OutcomeJSONLD,
		Title:       cleanText(str(found["name"])),
		Description: cleanText(str(found["description"])),
		Images:      imageList(found["image"]),
		SKU:         str(found["sku"]),
		Brand:       brandName(found["brand"]),
		Specs:       map[string]string{},
	}
	readOffers(raw, found["offers"])

	for _, pv := range asSlice(found["hasVariant"]) {
		m, ok := pv.(map[string]any)
		if !ok {
			continue
		}
		v := RawVariant{Name: cleanText(str(m["name"])), Attributes: map[string]string{}}
		if imgs := imageList(m["image"]); len(imgs) > 0 {
			v.Image = imgs[0]
		}
		sub := &RawProduct{}
		readOffers(sub, m["offers"])
		v.Price = sub.Price
		for _, key := range []string{"color", "size", "material", "pattern"} {
			if s := str(m[key]); s != "" {
				v.Attributes[key] = s
			}
		}
		if v.Name != "" {
			raw.Variants = append(raw.Variants, v)
		}
	}
	for _, p := range asSlice(found["additionalProperty"]) {
		if m, ok := p.(map[string]any); ok {
			if k, val := str(m["name"]), str(m["value"]); k != "" && val != "" {
				raw.Specs[k] = val
			}
		}
	}
	return raw
}

func findProductNode(v any) map[string]any {
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if m := findProductNode(e); m != nil {
				return m
			}
		}
	case map[string]any:
		if isProductType(x["@type"]) {
			return x
		}
		if g, ok := x["@graph"]; ok {
			return findProductNode(g)
		}
	}
	return nil
}

func isProductType(t any) bool {
	for _, e := range asSlice(t) {
		if s, ok := e.(string); ok && (s == "Product" || s == "ProductGroup") {
			return true
		}
	}
	return false
}

func readOffers(raw *RawProduct, offers any) {
	for _, o := range asSlice(offers) {
		m, ok := o.(map[string]any)
		if !ok {
			continue
		}
		if c := str(m["priceCurrency"]); c != "" && raw.Currency == "" {
			raw.Currency = strings.ToUpper(c)
		}
		if strings.Contains(str(m["availability"]), "OutOfStock") {
			raw.OutOfStock = true
		}
		low, okLow := parseAmount(m["lowPrice"])
		high, okHigh := parseAmount(m["highPrice"])
		if okLow {
			if !okHigh {
				high = low
			}
			raw.PriceRange = &PriceRange{Min: low, Max: high}
		}
		if p, ok := parseAmount(m["price"]); ok && raw.Price.IsZero() {
			raw.Price = p
		}
		if spec, ok := m["priceSpecification"].(map[string]any); ok && raw.Price.IsZero() {
			if p, ok := parseAmount(spec["price"]); ok {
				raw.Price = p
			}
		}
	}
}

func brandName(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		return str(x["name"])
	}
	return ""
}

// imageList accepts a URL string, a list of strings, an ImageObject, or a list
// of ImageObjects.
func imageList(v any) []string {
	var out []string
	for _, e := range asSlice(v) {
		switch x := e.(type) {
		case string:
			out = append(out, x)
		case map[string]any:
			for _, k := range []string{"url", "contentUrl", "src", "imageUrl"} {
				if s := str(x[k]); s != "" {
					out = append(out, s)
					break
				}
			}
		}
	}
	return out
}

func asSlice(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	}
	return []any{v}
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		b, _ := json.Marshal(x)
		return string(b)
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
