package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrBlocked means the marketplace served an anti-bot page instead of the product.
	ErrBlocked = errors.New("blocked by source")
	// ErrNetwork covers transport failures, timeouts and unreadable bodies.
	ErrNetwork = errors.New("network failure")
	// ErrClientStatus is matched by StatusError for 4xx responses.
	ErrClientStatus = errors.New("client error status")
	// ErrBodyTooLarge means the page exceeded MaxBodyBytes. Not retried.
	ErrBodyTooLarge = errors.New("response body too large")
)

// StatusError is an unexpected HTTP status from the marketplace.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status %d", e.Code) }

// Is lets 4xx statuses match ErrClientStatus and 5xx statuses match ErrNetwork.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrClientStatus:
		return e.Code >= 400 && e.Code < 500
	case ErrNetwork:
		return e.Code >= 500
	}
	return false
}

var (
	blockedPhrases = [][]byte{
		[]byte("captcha"),
		[]byte("access denied"),
		[]byte("robot check"),
		[]byte("are you a robot"),
		[]byte("unusual traffic"),
		[]byte("punish?x5secdata"), // alibaba slider challenge
	}
	titleRE = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// IsBlocked sniffs body for anti-bot interstitials. "verify" is only trusted
// in the document title, where product pages never carry it.
func IsBlocked(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, p := range blockedPhrases {
		if bytes.Contains(lower, p) {
			return true
		}
	}
	if m := titleRE.FindSubmatch(lower); m != nil && bytes.Contains(m[1], []byte("verify")) {
		return true
	}
	return false
}
