package providers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selectorSpec lists alternative CSS selectors per field; the first selector
// with a non-empty match wins.
type selectorSpec struct {
	Title       []string
	Description []string
	Price       []string
	Images      []string
	MOQ         []string
}

var metaFallbacks = selectorSpec{
	Title:       []string{`meta[property="og:title"]`, `meta[name="twitter:title"]`, `title`},
	Description: []string{`meta[property="og:description"]`, `meta[name="description"]`},
	Price:       []string{`meta[property="product:price:amount"]`, `meta[property="og:price:amount"]`, `[itemprop="price"]`},
	Images:      []string{`meta[property="og:image"]`, `meta[name="twitter:image"]`},
}

// extractSelectors is the last-resort scrape over rendered markup.
func extractSelectors(doc *goquery.Document, spec selectorSpec) *RawProduct {
	raw := &RawProduct{Outcome: OutcomeHTML, Specs: map[string]string{}}

	raw.Title = firstText(doc, append(spec.Title, metaFallbacks.Title...))
	raw.Description = firstText(doc, append(spec.Description, metaFallbacks.Description...))

	priceText := firstText(doc, append(spec.Price, metaFallbacks.Price...))
	if priceText != "" {
		if pr, ok := parseRange(priceText); ok {
			raw.Price = pr.Min
			if !pr.Min.Equal(pr.Max) {
				raw.PriceRange = pr
			}
		}
		raw.Currency = detectCurrency(priceText)
	}
	if cur, ok := doc.Find(`meta[property="product:price:currency"]`).Attr("content"); ok && raw.Currency == "" {
		raw.Currency = strings.ToUpper(strings.TrimSpace(cur))
	}

	for _, sel := range append(spec.Images, metaFallbacks.Images...) {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if src := nodeImage(s); src != "" {
				raw.Images = append(raw.Images, src)
			}
		})
		if len(raw.Images) > 0 {
			break
		}
	}
	raw.MOQ = firstText(doc, spec.MOQ)
	return raw
}

func firstText(doc *goquery.Document, sels []string) string {
	for _, sel := range sels {
		var out string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			out = nodeText(s)
			return out == ""
		})
		if out != "" {
			return out
		}
	}
	return ""
}

func nodeText(s *goquery.Selection) string {
	if goquery.NodeName(s) == "meta" {
		v, _ := s.Attr("content")
		return cleanText(v)
	}
	if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return cleanText(v)
	}
	return cleanText(s.Text())
}

func nodeImage(s *goquery.Selection) string {
	for _, attr := range []string{"content", "data-src", "data-original", "src", "href"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
