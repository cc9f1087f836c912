package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bookbright/internal/fetcher"
	applog "bookbright/internal/log"
)

// marketplace is the fetch-and-extract machinery Temu and Alibaba share.
type marketplace struct {
	name      string
	host      string
	fetch     fetcher.Fetcher
	render    fetcher.Fetcher // optional, for pages that only hydrate client-side
	hydration hydrationSpec
	selectors selectorSpec
	post      func(raw *RawProduct, body []byte)
}

func (m *marketplace) Name() string { return m.name }

func (m *marketplace) CanHandle(rawURL string) bool {
	return hostContains(rawURL, m.host)
}

func (m *marketplace) FetchProduct(ctx context.Context, rawURL string) (*RawProduct, error) {
	page, err := m.fetch.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch: %w", m.name, err)
	}
	raw, err := m.extractPage(page)
	if errors.Is(err, ErrInsufficientData) && m.render != nil {
		applog.Debug(nil, "provider.render.fallback", map[string]any{"provider": m.name, "url": rawURL})
		rendered, rerr := m.render.Fetch(ctx, rawURL)
		if rerr != nil {
			return nil, fmt.Errorf("%s: render: %w", m.name, rerr)
		}
		raw, err = m.extractPage(rendered)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}
	return raw, nil
}

func (m *marketplace) extractPage(page *fetcher.Page) (*RawProduct, error) {
	raw, err := extract(page.Body, m.hydration, m.selectors)
	if err != nil {
		return raw, err
	}
	if m.post != nil {
		m.post(raw, page.Body)
	}
	return raw, nil
}

func (m *marketplace) MapToProduct(raw *RawProduct, rawURL string) (*MappedProduct, error) {
	return mapRaw(m.name, raw, rawURL)
}

func hostContains(rawURL, domain string) bool {
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), domain)
}
