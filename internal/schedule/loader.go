package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kettari/games-bot/internal/entity"
	"github.com/kettari/games-bot/internal/parser"
	"github.com/kettari/games-bot/internal/scraper"
)

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*scraper.Page, error)
}

type PageParser interface {
	Parse(page *scraper.Page) ([]entity.Session, parser.Diagnostics, error)
}

// Assistant extracts sessions from raw HTML when the heuristics find nothing.
type Assistant interface {
	Extract(ctx context.Context, html string) ([]entity.Session, error)
}

// ResultCache keeps the last successful result set for a limited time.
type ResultCache interface {
	Put(ctx context.Context, sessions []entity.Session, at time.Time) error
	Get(ctx context.Context) ([]entity.Session, time.Time, error)
}

// SnapshotStore keeps the last successful result set without expiry.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, sessions []entity.Session, at time.Time) error
	LoadSnapshot(ctx context.Context) ([]entity.Session, time.Time, error)
}

type Observer interface {
	Observe(d parser.Diagnostics)
	ObserveServed(source string, fetchedAt time.Time)
}

type LoaderOption func(*Loader)

func WithAssistant(a Assistant) LoaderOption {
	return func(l *Loader) { l.assistant = a }
}

func WithCache(c ResultCache, ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.cache = c
		l.ttl = ttl
	}
}

func WithSnapshots(s SnapshotStore) LoaderOption {
	return func(l *Loader) { l.snapshots = s }
}

func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

func WithLoaderClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// Loader produces a Schedule from the listing page and falls back to the last
// stored result set when the page cannot be fetched or yields nothing.
type Loader struct {
	url       string
	fetcher   PageFetcher
	parser    PageParser
	assistant Assistant
	cache     ResultCache
	ttl       time.Duration
	snapshots SnapshotStore
	observer  Observer
	now       func() time.Time
}

func NewLoader(url string, fetcher PageFetcher, parser PageParser, opts ...LoaderOption) *Loader {
	l := &Loader{
		url:     url,
		fetcher: fetcher,
		parser:  parser,
		ttl:     30 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Current returns the cached result set while it is fresh and loads a new one otherwise.
func (l *Loader) Current(ctx context.Context) (*Schedule, error) {
	if s, err := l.fromCache(ctx); err == nil {
		l.served(s)
		return s, nil
	}
	return l.Load(ctx)
}

// Load fetches and extracts the page. On failure it serves the cached result set if
// it is younger than the TTL, then the stored snapshot, and returns the original
// error when neither exists.
func (l *Loader) Load(ctx context.Context) (*Schedule, error) {
	s, err := l.fresh(ctx)
	if err == nil {
		l.remember(ctx, s)
		l.served(s)
		return s, nil
	}
	slog.Warn("live extraction failed, trying stored results", "url", l.url, "err", err)

	cached, cerr := l.fromCache(ctx)
	if cerr == nil {
		cached.Degraded = true
		l.served(cached)
		return cached, nil
	}
	slog.Debug("cache fallback unavailable", "err", cerr)

	snap, serr := l.fromSnapshot(ctx)
	if serr == nil {
		snap.Degraded = true
		l.served(snap)
		return snap, nil
	}
	slog.Debug("snapshot fallback unavailable", "err", serr)

	return nil, err
}

func (l *Loader) fresh(ctx context.Context) (*Schedule, error) {
	page, err := l.fetcher.Fetch(ctx, l.url)
	if err != nil {
		return nil, err
	}
	sessions, diag, err := l.parser.Parse(page)
	if l.observer != nil {
		l.observer.Observe(diag)
	}
	if err == nil {
		slog.Info("schedule extracted", "sessions_count", len(sessions), "pass", diag.Pass)
		return &Schedule{Sessions: sessions, FetchedAt: l.now(), Source: SourceLive}, nil
	}
	if !errors.Is(err, parser.ErrNoSessions) || l.assistant == nil {
		return nil, err
	}

	slog.Info("heuristics found no sessions, asking assistant", "url", l.url)
	assisted, aerr := l.assistant.Extract(ctx, page.Html)
	if aerr != nil {
		return nil, fmt.Errorf("%w; assistant: %v", err, aerr)
	}
	assisted = parser.DedupSort(assisted)
	if len(assisted) == 0 {
		return nil, err
	}
	return &Schedule{Sessions: assisted, FetchedAt: l.now(), Source: SourceAssist}, nil
}

func (l *Loader) remember(ctx context.Context, s *Schedule) {
	if l.cache != nil {
		if err := l.cache.Put(ctx, s.Sessions, s.FetchedAt); err != nil {
			slog.Error("failed to cache sessions", "err", err)
		}
	}
	if l.snapshots != nil {
		if err := l.snapshots.SaveSnapshot(ctx, s.Sessions, s.FetchedAt); err != nil {
			slog.Error("failed to save snapshot", "err", err)
		}
	}
}

var errStale = errors.New("cached sessions are older than ttl")

func (l *Loader) fromCache(ctx context.Context) (*Schedule, error) {
	if l.cache == nil {
		return nil, errors.New("cache disabled")
	}
	sessions, at, err := l.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if l.now().Sub(at) > l.ttl {
		return nil, errStale
	}
	return &Schedule{Sessions: sessions, FetchedAt: at, Source: SourceCache}, nil
}

func (l *Loader) fromSnapshot(ctx context.Context) (*Schedule, error) {
	if l.snapshots == nil {
		return nil, errors.New("snapshots disabled")
	}
	sessions, at, err := l.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Schedule{Sessions: sessions, FetchedAt: at, Source: SourceSnapshot}, nil
}

func (l *Loader) served(s *Schedule) {
	if l.observer != nil {
		l.observer.ObserveServed(string(s.Source), s.FetchedAt)
	}
}
