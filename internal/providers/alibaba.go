package providers

import (
	"net/url"
	"regexp"
	"strings"

	"bookbright/internal/fetcher"
)

var (
	alibabaMOQ      = regexp.MustCompile(`(?i)min\.?\s*order\s*:?\s*([\d.,]+\s*[a-z]*)`)
	alibabaPriceTxt = regexp.MustCompile(`(?i)(?:US\s*)?\$\s*[\d.,]+(?:\s*-\s*\$?\s*[\d.,]+)?`)
)

type Alibaba struct {
	marketplace
}

// NewAlibaba builds the Alibaba provider. render may be nil.
func NewAlibaba(f, render fetcher.Fetcher) *Alibaba {
	return &Alibaba{marketplace{
		name:   "alibaba",
		host:   "alibaba.com",
		fetch:  f,
		render: render,
		hydration: hydrationSpec{
			Globals:      []string{"detailData", "__INIT_DATA", "runParams"},
			TitleKeys:    []string{"subject", "productTitle", "title"},
			DescKeys:     []string{"productDescription", "description"},
			ImageKeys:    []string{"mediaItems", "productImages", "imagePathList", "images"},
			PriceKeys:    []string{"formatPrice", "dollarPrice", "price"},
			RangeKeys:    []string{"ladderPrices", "priceRangeList", "productLadderPrices"},
			CurrencyKeys: []string{"currencyCode", "currency"},
			VariantKeys:  []string{"skuInfoMap", "skuList"},
			MOQKeys:      []string{"moq", "minOrderQuantity"},
			ShippingKeys: []string{"leadTime", "deliveryTime"},
		},
		selectors: selectorSpec{
			Title:       []string{`h1[class*="title"]`, `.product-title`, `h1`},
			Description: []string{`.product-description`, `[class*="description"]`},
			Price:       []string{`.price-range`, `[class*="price-item"]`, `.price`},
			Images:      []string{`.main-image img`, `[class*="slider"] img`, `.image-list img`},
			MOQ:         []string{`.moq-value`, `[class*="min-order"]`},
		},
		post: alibabaPost,
	}}
}

// alibabaPost backfills the wholesale fields from visible text when neither
// structured source carried them.
func alibabaPost(raw *RawProduct, body []byte) {
	text := string(body)
	if raw.MOQ == "" {
		if m := alibabaMOQ.FindStringSubmatch(text); m != nil {
			raw.MOQ = strings.TrimSpace(m[1])
		}
	}
	if raw.PriceRange == nil {
		if m := alibabaPriceTxt.FindString(text); m != "" {
			if pr, ok := parseRange(m); ok && !pr.Min.Equal(pr.Max) {
				raw.PriceRange = pr
			}
		}
	}
}

func (a *Alibaba) LooksLikeProductPage(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.Contains(u.Path, "/product-detail/") || strings.HasPrefix(u.Path, "/product/")
}
