package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxTitleRunes = 120

var titleNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:19|20)\d{2}\s*(?:new|nye?)?\s+`),
	regexp.MustCompile(`(?i)\bfree\s+shipping\b`),
	regexp.MustCompile(`(?i)\bhot\s+sales?\b`),
	regexp.MustCompile(`(?i)\bnew\s+arrivals?\b`),
	regexp.MustCompile(`(?i)\b(?:best|top)\s+sellers?\b`),
	regexp.MustCompile(`(?i)\bwholesale\b`),
	regexp.MustCompile(`(?i)\bdropshipping\b`),
	regexp.MustCompile(`【[^】]*】|\[[^\]]*\]`),
}

// ImproveTitle cleans marketplace titles for the storefront.
func ImproveTitle(title string) string {
	t := title
	for _, re := range titleNoise {
		t = re.ReplaceAllString(t, " ")
	}
	t = strings.Join(strings.Fields(t), " ")
	t = strings.Trim(t, " -|,/:;")
	t = strings.ReplaceAll(t, " ,", ",")

	if utf8.RuneCountInString(t) > maxTitleRunes {
		r := []rune(t)[:maxTitleRunes]
		cut := string(r)
		// only break on a space in the second half of the kept text
		if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
			cut = cut[:i]
		}
		t = strings.TrimRight(cut, " -|,/:;")
	}
	if t == "" {
		return strings.TrimSpace(title)
	}
	r, size := utf8.DecodeRuneInString(t)
	return string(unicode.ToUpper(r)) + t[size:]
}
