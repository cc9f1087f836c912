// Package urlnorm canonicalizes marketplace product URLs so the same product
// always maps to the same string, whatever tracking noise the link carried.
package urlnorm

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// trackingParams are removed from every URL.
var trackingParams = map[string]struct{}{
	"ref": {}, "ref_src": {}, "referrer": {}, "source": {},
	"gclid": {}, "fbclid": {}, "msclkid": {}, "dclid": {}, "yclid": {}, "ttclid": {},
	"aff_id": {}, "affiliate_id": {}, "aff_sub": {}, "click_id": {}, "clickid": {}, "irclickid": {},
	"spm": {}, "scm": {}, "trace": {}, "traceid": {}, "trace_id": {}, "tracelog": {},
	"_x_sessn_id": {}, "refer_page_name": {}, "refer_page_id": {}, "refer_page_sn": {},
	"_x_ads_channel": {}, "_x_campaign": {}, "_x_cid": {}, "_x_vst_scene": {},
	"mc_cid": {}, "mc_eid": {},
}

// family describes one marketplace domain family.
type family struct {
	match     func(host string) bool
	canonical func(host string) string
	keep      map[string]struct{} // essential params; everything else is dropped
}

var families = []family{
	{
		match:     func(h string) bool { return h == "temu.com" || strings.HasSuffix(h, ".temu.com") },
		canonical: func(string) string { return "www.temu.com" },
		keep:      set("goods_id", "sku_id"),
	},
	{
		match: func(h string) bool { return h == "alibaba.com" || strings.HasSuffix(h, ".alibaba.com") },
		canonical: func(h string) string {
			switch h {
			case "alibaba.com", "m.alibaba.com", "www.alibaba.com":
				return "www.alibaba.com"
			}
			// supplier storefronts (vendor.en.alibaba.com) keep their own host
			return h
		},
		keep: set("productid", "id"),
	},
}

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// Normalize trims raw, defaults the scheme to https, strips tracking parameters
// and canonicalizes known marketplace hosts. Unparseable input is returned
// trimmed but otherwise unchanged. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	candidate := s
	if !schemeRE.MatchString(candidate) {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return s
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	fam := lookup(host)
	if fam != nil {
		host = fam.canonical(host)
	}

	q := u.Query()
	for key := range q {
		lk := strings.ToLower(key)
		if isTracking(lk) {
			q.Del(key)
			continue
		}
		if fam != nil {
			if _, ok := fam.keep[lk]; !ok {
				q.Del(key)
			}
		}
	}

	u.Scheme = "https"
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	u.Host = host
	if port != "" && port != "443" && port != "80" {
		u.Host = host + ":" + port
	}
	u.RawQuery = q.Encode()
	u.ForceQuery = false
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String()
}

func isTracking(key string) bool {
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	_, ok := trackingParams[key]
	return ok
}

func lookup(host string) *family {
	for i := range families {
		if families[i].match(host) {
			return &families[i]
		}
	}
	return nil
}

// Hostname returns the lower-cased host of raw, or "" if it cannot be parsed.
func Hostname(raw string) string {
	s := strings.TrimSpace(raw)
	if !schemeRE.MatchString(s) {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
