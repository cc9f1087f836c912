package providers

import (
	"net/url"
	"regexp"
	"strings"

	"bookbright/internal/fetcher"
)

var temuGoodsPath = regexp.MustCompile(`-g-\d+\.html$`)

type Temu struct {
	marketplace
}

// NewTemu builds the Temu provider. render may be nil.
func NewTemu(f, render fetcher.Fetcher) *Temu {
	return &Temu{marketplace{
		name:   "temu",
		host:   "temu.com",
		fetch:  f,
		render: render,
		hydration: hydrationSpec{
			Globals:       []string{"rawData", "__INITIAL_STATE__"},
			ScriptIDs:     []string{"__NEXT_DATA__"},
			TitleKeys:     []string{"goodsName", "goods_name", "title"},
			DescKeys:      []string{"goodsDesc", "description"},
			ImageKeys:     []string{"gallery", "galleryList", "images", "thumbUrl"},
			PriceKeys:     []string{"priceStr", "salePriceStr", "minOnSalePrice"},
			CentPriceKeys: []string{"price", "salePrice", "minPrice"},
			CurrencyKeys:  []string{"currency", "currencyCode"},
			VariantKeys:   []string{"skuList", "skus"},
			ShippingKeys:  []string{"deliveryTime", "shippingTime"},
		},
		selectors: selectorSpec{
			Title:  []string{`h1[class*="goodsName"]`, `h1`},
			Price:  []string{`[data-type="price"]`, `[class*="goodsPrice"]`, `[aria-label*="price"]`},
			Images: []string{`[class*="gallery"] img`, `img[class*="goods"]`},
		},
	}}
}

// LooksLikeProductPage reports whether the URL names a single goods page.
func (t *Temu) LooksLikeProductPage(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if u.Query().Get("goods_id") != "" {
		return true
	}
	return strings.HasSuffix(u.Path, "/goods.html") || temuGoodsPath.MatchString(u.Path)
}
