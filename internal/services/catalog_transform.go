package services

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"bookbright/internal/providers"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const DefaultCategory = "Annet"

type categoryRule struct {
	category string
	keywords []string
}

// Order matters: the first rule with a keyword in the title wins.
var categoryRules = []categoryRule{
	{"Halslys", []string{"neck", "hals"}},
	{"Klypelys", []string{"clip", "klype"}},
	{"Leselys", []string{"lamp", "light", "led"}},
	{"Bokmerker", []string{"bookmark"}},
	{"Bokholdere", []string{"stand", "holder"}},
	{"Tilbehør", []string{"battery", "charger", "usb"}},
}

// Categorize classifies a product title by keyword.
func Categorize(title string) string {
	t := strings.ToLower(title)
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.category
			}
		}
	}
	return DefaultCategory
}

var placeholderMarkers = []string{"placeholder", "data:image", "blank.gif", "loading"}

func isPlaceholder(u string) bool {
	l := strings.ToLower(u)
	for _, m := range placeholderMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// CollectImages returns variant images first, then product images, without
// duplicates or placeholders.
func CollectImages(m *providers.MappedProduct) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] || isPlaceholder(u) {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	for _, v := range m.Variants {
		add(v.Image)
	}
	for _, u := range m.Images {
		add(u)
	}
	return out
}

var slugFold = strings.NewReplacer("æ", "ae", "ø", "o", "å", "a", "ß", "ss")

// Slugify lower-cases and hyphenates s, folding accents to ASCII.
func Slugify(s string) string {
	s = slugFold.Replace(strings.ToLower(s))
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	var b strings.Builder
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 60 {
		out = strings.Trim(out[:60], "-")
	}
	if out == "" {
		out = "produkt"
	}
	return out
}

// NewSlug appends a short random suffix so equal titles do not collide.
func NewSlug(title string) string {
	return Slugify(title) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

var supplierCodes = map[string]string{"temu": "TM", "alibaba": "AB"}

// ProductSKU is stable for a normalized supplier URL.
func ProductSKU(supplier, normalizedURL string) string {
	code, ok := supplierCodes[supplier]
	if !ok {
		code = strings.ToUpper(supplier)
		if len(code) > 2 {
			code = code[:2]
		}
	}
	sum := sha1.Sum([]byte(normalizedURL))
	return "BB-" + code + "-" + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

func VariantSKU(productSKU string, i int) string {
	return fmt.Sprintf("%s-%02d", productSKU, i+1)
}
