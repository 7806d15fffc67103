package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; GamesBot/1.0)"
	maxBodySize = 5 << 20
)

// ErrStatus is returned for non-OK responses that are not worth retrying.
var ErrStatus = errors.New("unexpected status code")

// Config tunes the fetcher. Zero values take defaults.
type Config struct {
	Timeout     time.Duration
	Retries     int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	RPS         float64
	Burst       int
}

// Fetcher loads listing pages with per-host rate limiting and retries on
// transient failures.
type Fetcher struct {
	client      *http.Client
	retries     int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	limiter     *hostLimiter
}

func NewFetcher(cfg Config) *Fetcher {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 250 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 3 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1.5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	return &Fetcher{
		client:      httpClient(cfg.Timeout),
		retries:     cfg.Retries,
		baseBackoff: cfg.BaseBackoff,
		maxBackoff:  cfg.MaxBackoff,
		limiter:     newHostLimiter(cfg.RPS, cfg.Burst),
	}
}

// Fetch loads rawURL into a Page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	host := u.Hostname()

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx, host); err != nil {
			return nil, err
		}
		page, status, err := f.load(ctx, rawURL)
		if err == nil {
			slog.Debug("page loaded", "url", rawURL, "size", len(page.Html), "attempt", attempt+1)
			return page, nil
		}
		lastErr = err
		if !retryable(status, err) || attempt >= f.retries {
			break
		}
		slog.Warn("fetch failed, retrying", "url", rawURL, "status", status, "attempt", attempt+1, "err", err)
		if err := f.sleep(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, lastErr)
}

func (f *Fetcher) load(ctx context.Context, rawURL string) (*Page, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Error("failed to close response body", "url", rawURL, "err", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return &Page{URL: rawURL, Html: string(data), Cookies: resp.Cookies()}, resp.StatusCode, nil
}

func (f *Fetcher) sleep(ctx context.Context, attempt int) error {
	d := min(f.baseBackoff<<attempt, f.maxBackoff)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryable(status int, err error) bool {
	if status == http.StatusTooManyRequests || (status >= 500 && status <= 599) {
		return true
	}
	if status != 0 {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// hostLimiter keeps one token bucket per host.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newHostLimiter(rps float64, burst int) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (l *hostLimiter) Wait(ctx context.Context, host string) error {
	if host == "" {
		return nil
	}
	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()
	return limiter.Wait(ctx)
}
