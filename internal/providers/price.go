package providers

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var numberRE = regexp.MustCompile(`\d[\d.,]*`)

// parseAmount reads a price from a JSON value: a number, or a string such as
// "US$12.99", "1,299.00" or "12,99 kr".
func parseAmount(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		if x <= 0 {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil && d.IsPositive()
	case string:
		ms := numberRE.FindAllString(x, -1)
		if len(ms) == 0 {
			return decimal.Zero, false
		}
		return parseNumber(ms[0])
	}
	return decimal.Zero, false
}

func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimRight(s, ".,")
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot { // 1.299,00
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else { // 1,299.00
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 == 2 && strings.Count(s, ",") == 1 { // 12,99
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1: // 1.299.000
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// parseRange reads "US$1.20 - 3.50" style text. A single number yields a
// range with Min == Max.
func parseRange(s string) (*PriceRange, bool) {
	var vals []decimal.Decimal
	for _, m := range numberRE.FindAllString(s, -1) {
		if d, ok := parseNumber(m); ok {
			vals = append(vals, d)
		}
	}
	if len(vals) == 0 {
		return nil, false
	}
	r := &PriceRange{Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		if v.LessThan(r.Min) {
			r.Min = v
		}
		if v.GreaterThan(r.Max) {
			r.Max = v
		}
	}
	return r, true
}

// detectCurrency guesses an ISO code from price text; empty when unknown.
// currencyTokens maps whole words found in price text to ISO codes. Codes the
// catalog has no rate for are still reported so the importer can flag them.
var currencyTokens = map[string]string{
	"NOK": "NOK", "KR": "NOK",
	"EUR": "EUR", "GBP": "GBP", "USD": "USD", "US": "USD",
	"KRW": "KRW", "SEK": "SEK", "DKK": "DKK", "CNY": "CNY", "RMB": "CNY", "JPY": "JPY",
}

func detectCurrency(s string) string {
	words := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if c, ok := currencyTokens[w]; ok {
			return c
		}
	}
	switch {
	case strings.Contains(s, "€"):
		return "EUR"
	case strings.Contains(s, "£"):
		return "GBP"
	case strings.Contains(s, "₩"):
		return "KRW"
	case strings.Contains(s, "$"):
		return "USD"
	}
	return ""
}
