package providers

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// hydrationSpec tells the extractor where a marketplace's front-end framework
// parks its state and which keys carry product fields. Keys are tried in order.
type hydrationSpec struct {
	Globals   []string // e.g. "rawData" for window.rawData = {...}
	ScriptIDs []string // e.g. "__NEXT_DATA__"

	TitleKeys     []string
	DescKeys      []string
	ImageKeys     []string
	PriceKeys     []string
	CentPriceKeys []string // integer minor units
	RangeKeys     []string // lists of {price|min|max} tiers
	CurrencyKeys  []string
	VariantKeys   []string
	MOQKeys       []string
	ShippingKeys  []string
}

const maxWalkNodes = 50000

// extractHydration decodes embedded framework state and pulls product fields
// out of it. It returns nil when no state blob could be decoded.
func extractHydration(body []byte, doc *goquery.Document, spec hydrationSpec) *RawProduct {
	roots := hydrationRoots(string(body), doc, spec)
	if len(roots) == 0 {
		return nil
	}
	raw := &RawProduct{Outcome: OutcomeHydration, Specs: map[string]string{}}

	if v, ok := findAny(roots, spec.TitleKeys); ok {
		raw.Title = cleanText(str(v))
	}
	if v, ok := findAny(roots, spec.DescKeys); ok {
		raw.Description = cleanText(str(v))
	}
	if v, ok := findAny(roots, spec.ImageKeys); ok {
		raw.Images = imageList(v)
	}
	raw.Price = hydrationPrice(roots, spec)
	if v, ok := findAny(roots, spec.CurrencyKeys); ok {
		raw.Currency = strings.ToUpper(str(v))
	}
	if v, ok := findAny(roots, spec.RangeKeys); ok {
		raw.PriceRange = tierRange(v)
	}
	if v, ok := findAny(roots, spec.MOQKeys); ok {
		raw.MOQ = str(v)
	}
	if v, ok := findAny(roots, spec.ShippingKeys); ok {
		raw.ShippingEstimate = cleanText(str(v))
	}
	if v, ok := findAny(roots, spec.VariantKeys); ok {
		raw.Variants = hydrationVariants(v, spec)
	}
	return raw
}

func hydrationRoots(body string, doc *goquery.Document, spec hydrationSpec) []any {
	var roots []any
	for _, g := range spec.Globals {
		re := regexp.MustCompile(`(?:window\.|var\s+|let\s+|const\s+)` + regexp.QuoteMeta(g) + `\s*=\s*`)
		for _, loc := range re.FindAllStringIndex(body, 4) {
			blob, ok := cutJSONObject(body, loc[1])
			if !ok {
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(blob), &v); err == nil {
				roots = append(roots, v)
			}
		}
	}
	if doc != nil {
		for _, id := range spec.ScriptIDs {
			txt := strings.TrimSpace(doc.Find(`script#` + id).First().Text())
			if txt == "" {
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(txt), &v); err == nil {
				roots = append(roots, v)
			}
		}
	}
	return roots
}

// cutJSONObject returns the balanced {...} object starting at or after from.
func cutJSONObject(s string, from int) (string, bool) {
	start := strings.IndexByte(s[from:], '{')
	if start < 0 {
		return "", false
	}
	start += from
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func findAny(roots []any, keys []string) (any, bool) {
	for _, k := range keys {
		for _, r := range roots {
			if v, ok := findKey(r, k); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// findKey does a breadth-first search for key, so shallower matches win.
// Map keys are visited in sorted order to keep results deterministic.
func findKey(root any, key string) (any, bool) {
	queue := []any{root}
	for seen := 0; len(queue) > 0 && seen < maxWalkNodes; seen++ {
		n := queue[0]
		queue = queue[1:]
		switch x := n.(type) {
		case map[string]any:
			if v, ok := x[key]; ok && !isEmpty(v) {
				return v, true
			}
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				queue = append(queue, x[k])
			}
		case []any:
			queue = append(queue, x...)
		}
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func hydrationPrice(roots []any, spec hydrationSpec) decimal.Decimal {
	for _, k := range spec.PriceKeys {
		for _, r := range roots {
			if v, ok := findKey(r, k); ok {
				if d, ok := parseAmount(v); ok {
					return d
				}
			}
		}
	}
	for _, k := range spec.CentPriceKeys {
		for _, r := range roots {
			if v, ok := findKey(r, k); ok {
				if d, ok := parseAmount(v); ok {
					return d.Div(decimal.NewFromInt(100))
				}
			}
		}
	}
	return decimal.Zero
}

// tierRange folds wholesale price tiers into one range.
func tierRange(v any) *PriceRange {
	var r *PriceRange
	add := func(d decimal.Decimal) {
		if r == nil {
			r = &PriceRange{Min: d, Max: d}
			return
		}
		if d.LessThan(r.Min) {
			r.Min = d
		}
		if d.GreaterThan(r.Max) {
			r.Max = d
		}
	}
	for _, e := range asSlice(v) {
		switch x := e.(type) {
		case map[string]any:
			for _, k := range []string{"price", "dollarPrice", "priceValue", "min", "max"} {
				if d, ok := parseAmount(x[k]); ok {
					add(d)
				}
			}
		case string:
			if pr, ok := parseRange(x); ok {
				add(pr.Min)
				add(pr.Max)
			}
		}
	}
	return r
}

func hydrationVariants(v any, spec hydrationSpec) []RawVariant {
	var out []RawVariant
	items := asSlice(v)
	// some pages key variants by id: {"123": {...}, "124": {...}}
	if m, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items = make([]any, 0, len(keys))
		for _, k := range keys {
			items = append(items, m[k])
		}
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rv := RawVariant{Name: variantName(m), Attributes: variantAttributes(m)}
		if rv.Name == "" {
			continue
		}
		rv.Price = hydrationPrice([]any{m}, spec)
		for _, k := range []string{"thumbUrl", "image", "imageUrl", "img", "skuImage"} {
			if s := str(m[k]); s != "" {
				rv.Image = s
				break
			}
		}
		out = append(out, rv)
	}
	return out
}

func variantName(m map[string]any) string {
	for _, k := range []string{"specName", "skuName", "skuAttr", "name", "title"} {
		if s := cleanText(str(m[k])); s != "" {
			return s
		}
	}
	var parts []string
	for _, k := range []string{"specs", "specList", "props"} {
		for _, s := range asSlice(m[k]) {
			if sm, ok := s.(map[string]any); ok {
				for _, vk := range []string{"specValue", "value", "valueName"} {
					if val := str(sm[vk]); val != "" {
						parts = append(parts, val)
						break
					}
				}
			}
		}
	}
	return strings.Join(parts, " / ")
}

func variantAttributes(m map[string]any) map[string]string {
	attrs := map[string]string{}
	for _, k := range []string{"specs", "specList", "props"} {
		for _, s := range asSlice(m[k]) {
			sm, ok := s.(map[string]any)
			if !ok {
				continue
			}
			key := ""
			for _, kk := range []string{"specKey", "key", "name", "propName"} {
				if key = str(sm[kk]); key != "" {
					break
				}
			}
			val := ""
			for _, vk := range []string{"specValue", "value", "valueName"} {
				if val = str(sm[vk]); val != "" {
					break
				}
			}
			if key != "" && val != "" {
				attrs[key] = val
			}
		}
	}
	return attrs
}
