package services

import (
	"strings"

	"bookbright/internal/config"

	"github.com/shopspring/decimal"
)

// Pricing turns a supplier price into catalog prices in NOK.
type Pricing struct {
	// Rates is kroner per unit of each supported source currency.
	Rates            map[string]decimal.Decimal
	Margin           decimal.Decimal
	CompareAtMarkup  decimal.Decimal
	DefaultBasePrice decimal.Decimal // NOK, used when the source has no usable price
	LowPriceUSD      decimal.Decimal
}

func NewPricing(c config.ImportConfig) Pricing {
	return Pricing{
		Rates: map[string]decimal.Decimal{
			"NOK": decimal.NewFromInt(1),
			"USD": decimal.NewFromFloat(c.USDToNOK),
			"EUR": decimal.NewFromFloat(c.EURToNOK),
			"GBP": decimal.NewFromFloat(c.GBPToNOK),
		},
		Margin:           decimal.NewFromFloat(c.Margin),
		CompareAtMarkup:  decimal.NewFromFloat(c.CompareAtMarkup),
		DefaultBasePrice: decimal.NewFromFloat(c.DefaultBasePrice),
		LowPriceUSD:      decimal.NewFromFloat(c.LowPriceUSD),
	}
}

// SourceCurrency upper-cases code; an empty code means USD.
func SourceCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}

// ToNOK converts amount from currency into kroner, unrounded. ok is false for
// a currency without a configured rate.
func (p Pricing) ToNOK(amount decimal.Decimal, currency string) (nok decimal.Decimal, ok bool) {
	rate, ok := p.Rates[SourceCurrency(currency)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return amount.Mul(rate), true
}

type Quote struct {
	Base      decimal.Decimal // supplier price in NOK
	Selling   decimal.Decimal
	CompareAt decimal.Decimal
	Defaulted bool
	// UnknownCurrency is set when a positive price came in a currency with no rate.
	UnknownCurrency bool
}

// Quote prices one source amount. Base is rounded to whole kroner.
func (p Pricing) Quote(amount decimal.Decimal, currency string) Quote {
	q := Quote{}
	if amount.IsPositive() {
		if nok, ok := p.ToNOK(amount, currency); ok {
			q.Base = nok.Round(0)
		} else {
			q.UnknownCurrency = true
		}
	}
	if !q.Base.IsPositive() {
		q.Base = p.DefaultBasePrice
		q.Defaulted = true
	}
	q.Selling = q.Base.Mul(p.Margin).Round(2)
	q.CompareAt = q.Selling.Mul(p.CompareAtMarkup).Round(2)
	return q
}

// Suspicious reports a positive source price worth less than LowPriceUSD.
func (p Pricing) Suspicious(amount decimal.Decimal, currency string) bool {
	if !amount.IsPositive() {
		return false
	}
	nok, ok := p.ToNOK(amount, currency)
	floor, fok := p.ToNOK(p.LowPriceUSD, "USD")
	return ok && fok && nok.LessThan(floor)
}
