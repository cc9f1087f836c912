package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	applog "bookbright/internal/log"
)

// Page is a fetched or rendered HTML document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Rendered   bool
	FetchedAt  time.Time
}

// Fetcher retrieves a product page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Options controls HTTP fetching behaviour.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	Attempts     int
	Backoff      time.Duration
	MaxBodyBytes int64
	// PerHostInterval spaces consecutive requests to the same host.
	PerHostInterval time.Duration
	Client          *http.Client
}

// HTTPFetcher implements Fetcher with net/http, retrying transport failures.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	attempts     int
	backoff      time.Duration
	maxBodyBytes int64
	interval     time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 * 1024 * 1024
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				MaxIdleConns:          20,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: time.Second,
				// we decode gzip/br ourselves
				DisableCompression: true,
			},
		}
	}
	return &HTTPFetcher{
		client:       client,
		userAgent:    opts.UserAgent,
		attempts:     opts.Attempts,
		backoff:      opts.Backoff,
		maxBodyBytes: opts.MaxBodyBytes,
		interval:     opts.PerHostInterval,
		limiters:     make(map[string]*rate.Limiter),
	}
}

// Fetch downloads rawURL. Transport errors and 5xx responses are retried with
// exponential backoff; 4xx responses fail immediately with ErrClientStatus.
// A body that looks like an anti-bot challenge yields ErrBlocked.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrNetwork, rawURL)
	}

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			wait := f.backoff * time.Duration(1<<(attempt-2))
			if err := sleep(ctx, wait); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
			}
		}
		if err := f.limiter(u.Hostname()).Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		page, err := f.once(ctx, rawURL)
		if err == nil {
			if IsBlocked(page.Body) {
				return nil, fmt.Errorf("%w: %s", ErrBlocked, rawURL)
			}
			return page, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
		applog.Warn(nil, "fetch.retry", err, map[string]any{"url": rawURL, "attempt": attempt})
	}
	return nil, lastErr
}

func (f *HTTPFetcher) once(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,nb;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	body, err := f.readBody(resp)
	if errors.Is(err, ErrBodyTooLarge) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if IsBlocked(body) {
			return nil, fmt.Errorf("%w: status %d", ErrBlocked, resp.StatusCode)
		}
		return nil, &StatusError{Code: resp.StatusCode}
	case resp.StatusCode >= 400:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Page{
		URL:        rawURL,
		FinalURL:   final,
		StatusCode: resp.StatusCode,
		Body:       body,
		FetchedAt:  time.Now(),
	}, nil
}

func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, errors.New("empty response body")
	}

	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.maxBodyBytes)
	}
	return body, nil
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	host = strings.ToLower(host)
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		limit := rate.Inf
		if f.interval > 0 {
			limit = rate.Every(f.interval)
		}
		l = rate.NewLimiter(limit, 1)
		f.limiters[host] = l
	}
	return l
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	if errors.Is(err, ErrBlocked) {
		return false
	}
	return errors.Is(err, ErrNetwork)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
