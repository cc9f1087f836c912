package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	applog "bookbright/internal/log"
)

// RenderOptions configures the headless browser used for script-only pages.
type RenderOptions struct {
	Timeout      time.Duration
	UserAgent    string
	CaptureDelay time.Duration
	MaxBodyBytes int64
}

// ChromedpRenderer loads a page in headless Chrome and returns the final DOM.
// Sessions are serialized; imports are sequential anyway.
type ChromedpRenderer struct {
	opts RenderOptions
	sem  chan struct{}
}

func NewChromedpRenderer(opts RenderOptions) *ChromedpRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.CaptureDelay <= 0 {
		opts.CaptureDelay = 1500 * time.Millisecond
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 * 1024 * 1024
	}
	return &ChromedpRenderer{opts: opts, sem: make(chan struct{}, 1)}
}

// Fetch implements Fetcher so a renderer can stand in for HTTPFetcher.
func (r *ChromedpRenderer) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	return r.Render(ctx, rawURL)
}

func (r *ChromedpRenderer) Render(parent context.Context, rawURL string) (*Page, error) {
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-parent.Done():
		return nil, parent.Err()
	}

	ctx, cancel := context.WithTimeout(parent, r.opts.Timeout)
	defer cancel()

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if ua := strings.TrimSpace(r.opts.UserAgent); ua != "" {
		execOpts = append(execOpts, chromedp.UserAgent(ua))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	start := time.Now()
	var html, finalURL string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.opts.CaptureDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", ErrNetwork, err)
	}
	if int64(len(html)) > r.opts.MaxBodyBytes {
		html = html[:r.opts.MaxBodyBytes]
	}
	if IsBlocked([]byte(html)) {
		return nil, fmt.Errorf("%w: %s (rendered)", ErrBlocked, rawURL)
	}
	if finalURL == "" {
		finalURL = rawURL
	}
	applog.Debug(nil, "fetch.render.done", map[string]any{
		"url": rawURL, "final_url": finalURL, "bytes": len(html), "latency_ms": time.Since(start).Milliseconds(),
	})
	return &Page{URL: rawURL, FinalURL: finalURL, StatusCode: 200, Body: []byte(html), Rendered: true, FetchedAt: time.Now()}, nil
}
