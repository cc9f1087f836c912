package urlnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"temu tracking removed", "https://www.temu.com/goods.html?goods_id=123&utm_source=google", "https://www.temu.com/goods.html?goods_id=123"},
		{"temu mobile host and junk params", "  http://m.temu.com/goods.html?_x_sessn_id=abc&goods_id=9&refer_page_name=home#reviews ", "https://www.temu.com/goods.html?goods_id=9"},
		{"missing scheme", "temu.com/kitchen-light-g-601099.html", "https://www.temu.com/kitchen-light-g-601099.html"},
		{"alibaba spm", "https://m.alibaba.com/product-detail/Book-Light_1600.html?spm=a2700.7724857&scm=1007", "https://www.alibaba.com/product-detail/Book-Light_1600.html"},
		{"alibaba storefront host kept", "https://Acme.en.alibaba.com/product/1.html?ref=x", "https://acme.en.alibaba.com/product/1.html"},
		{"unknown host keeps non-tracking params", "https://shop.example.com/p?id=5&utm_medium=cpc&gclid=zz&color=red", "https://shop.example.com/p?color=red&id=5"},
		{"empty path", "https://example.com", "https://example.com/"},
		{"unparseable returned trimmed", "  https://exa mple.com/x  ", "https://exa mple.com/x"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.temu.com/goods.html?goods_id=123&utm_source=google",
		"temu.com/uk/lamp-g-601.html?top_gallery_url=x&goods_id=1&sku_id=7",
		"HTTPS://WWW.ALIBABA.COM/product-detail/X_1.html?spm=1#frag",
		"https://example.com:8443/a%20b/c?z=1&a=2&a=1",
		"http://[::1]:9000/x?utm_campaign=y",
		"%zz",
		"not a url at all",
		"ftp://files.example.com/a?ref=1",
		"",
		"https://",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTrackingAbsentEssentialPresent(t *testing.T) {
	in := "https://www.temu.com/goods.html?utm_campaign=a&ref=b&gclid=c&spm=d&scm=e&goods_id=42"
	out := Normalize(in)
	for _, p := range []string{"utm_campaign", "ref=", "gclid", "spm", "scm"} {
		assert.False(t, strings.Contains(out, p), "%s still in %s", p, out)
	}
	assert.Contains(t, out, "goods_id=42")
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "www.temu.com", Hostname("WWW.Temu.com/goods.html"))
	assert.Equal(t, "", Hostname("%zz://"))
}
