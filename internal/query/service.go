// Package query orchestrates the read-only operations the CLI exposes:
// trending, featured, search, event and market lookup, and category browsing.
// It validates input before touching the network, fetches through the Gamma
// client, and shapes results into display views.
package query

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/gamma"
	"github.com/polyscout/polyscout/internal/logger"
	"github.com/polyscout/polyscout/internal/models"
	"github.com/polyscout/polyscout/internal/search"
)

// Fetcher is the slice of the Gamma client the service needs.
type Fetcher interface {
	Events(ctx context.Context, p gamma.EventsParams) ([]models.Event, error)
	EventBySlug(ctx context.Context, slug string) (*models.Event, error)
}

// Service runs queries against a Fetcher. The clock is injectable so time
// remaining computations are testable.
type Service struct {
	fetch Fetcher
	cfg   config.QueryConfig
	now   func() time.Time
}

// NewService creates a query service backed by f.
func NewService(f Fetcher, cfg config.QueryConfig) *Service {
	return &Service{fetch: f, cfg: cfg, now: time.Now}
}

// openOnly requests events that have not resolved yet. Past-dated events the
// source still reports open are kept and labeled Ended in the view.
func openOnly() *bool {
	open := false
	return &open
}

// sortEventsDesc orders events by key descending, slug ascending on ties.
// The source is asked for sorted results but its ordering is not trusted;
// output order is decided here.
func sortEventsDesc(events []models.Event, key func(*models.Event) float64) {
	sort.SliceStable(events, func(i, j int) bool {
		ki, kj := key(&events[i]), key(&events[j])
		if ki != kj {
			return ki > kj
		}
		return events[i].Slug < events[j].Slug
	})
}

func byVolume24hr(e *models.Event) float64 { return e.Volume24hr }
func byVolume(e *models.Event) float64     { return e.Volume }

// Trending returns the limit highest-24h-volume open events.
func (s *Service) Trending(ctx context.Context, limit int, showAll bool) ([]EventView, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", models.ErrInvalidInput, limit)
	}

	events, err := s.fetch.Events(ctx, gamma.EventsParams{
		Order:  gamma.OrderVolume24hr,
		Closed: openOnly(),
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	sortEventsDesc(events, byVolume24hr)
	return buildEventViews(events, s.now(), s.cfg.MaxOutcomes, showAll), nil
}

// Featured returns the limit events the source flags as featured. When the
// source flags none it falls back to the highest-volume open events; the
// second return reports whether the fallback was taken.
func (s *Service) Featured(ctx context.Context, limit int, showAll bool) ([]EventView, bool, error) {
	if limit <= 0 {
		return nil, false, fmt.Errorf("%w: limit must be positive, got %d", models.ErrInvalidInput, limit)
	}

	events, err := s.fetch.Events(ctx, gamma.EventsParams{
		Order:    gamma.OrderVolume24hr,
		Featured: true,
		Closed:   openOnly(),
		Limit:    limit,
	})
	if err != nil {
		return nil, false, fmt.Errorf("featured: %w", err)
	}

	fallback := false
	if len(events) == 0 {
		logger.L().Debug("no featured events, falling back to volume ranking")
		fallback = true
		events, err = s.fetch.Events(ctx, gamma.EventsParams{
			Order:  gamma.OrderVolume,
			Closed: openOnly(),
			Limit:  limit,
		})
		if err != nil {
			return nil, false, fmt.Errorf("featured fallback: %w", err)
		}
		sortEventsDesc(events, byVolume)
	} else {
		sortEventsDesc(events, byVolume24hr)
	}
	return buildEventViews(events, s.now(), s.cfg.MaxOutcomes, showAll), fallback, nil
}

// Search resolves free text to ranked events. A query that reads as a slug is
// tried as a direct lookup first; otherwise a pool of open events is fetched
// and fuzzy-ranked. No match yields an empty result, not an error.
func (s *Service) Search(ctx context.Context, q models.SearchQuery) ([]SearchResult, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is empty", models.ErrInvalidInput)
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", models.ErrInvalidInput, q.Limit)
	}

	if guess := slugGuess(text); guess != "" {
		ev, err := s.fetch.EventBySlug(ctx, guess)
		switch {
		case err == nil:
			logger.WithField("slug", guess).Debug("search resolved by slug guess")
			return []SearchResult{{
				EventView:    buildEventView(ev, s.now(), s.cfg.MaxOutcomes, q.ShowAll),
				Score:        search.ScoreExactSlug,
				MatchedField: models.MatchedSlug,
			}}, nil
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("search: %w", err)
		}
	}

	pool, err := s.fetch.Events(ctx, gamma.EventsParams{
		Order:  gamma.OrderVolume24hr,
		Closed: openOnly(),
		Limit:  s.cfg.SearchFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	matches := search.Rank(text, pool)
	if !q.ShowAll && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	logger.WithFields(map[string]any{
		"query":   text,
		"pool":    len(pool),
		"matches": len(matches),
	}).Debug("search ranked")

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			EventView:    buildEventView(m.Event, s.now(), s.cfg.MaxOutcomes, q.ShowAll),
			Score:        m.Score,
			MatchedField: m.MatchedField,
		}
	}
	return results, nil
}

// Event resolves a slug or polymarket.com URL to a single event. An exact
// slug miss falls back to the best fuzzy match before giving up.
func (s *Service) Event(ctx context.Context, ref string, showAll bool) (*EventView, error) {
	ev, err := s.resolveEvent(ctx, ref)
	if err != nil {
		return nil, err
	}
	v := buildEventView(ev, s.now(), s.cfg.MaxOutcomes, showAll)
	return &v, nil
}

// Market resolves an event and narrows it to one outcome. An empty outcome
// query returns every outcome with metrics attached.
func (s *Service) Market(ctx context.Context, ref, outcome string, showAll bool) (*EventView, error) {
	ev, err := s.resolveEvent(ctx, ref)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(outcome)
	if name == "" {
		v := buildEventView(ev, s.now(), s.cfg.MaxOutcomes, showAll)
		return &v, nil
	}

	o, ok := search.BestOutcome(name, ev)
	if !ok {
		return nil, fmt.Errorf("%w: outcome %q in event %q", models.ErrNotFound, name, ev.Slug)
	}
	narrowed := *ev
	narrowed.Outcomes = []models.Outcome{*o}
	v := buildEventView(&narrowed, s.now(), s.cfg.MaxOutcomes, showAll)
	v.TotalOutcomes = len(ev.Outcomes)
	v.Narrowed = true
	return &v, nil
}

// Category returns the limit highest-24h-volume open events in one category.
// Unknown category names are rejected before any fetch.
func (s *Service) Category(ctx context.Context, name string, limit int, showAll bool) ([]EventView, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", models.ErrInvalidInput, limit)
	}
	cat, err := models.ParseCategory(name)
	if err != nil {
		return nil, err
	}

	pool, err := s.fetch.Events(ctx, gamma.EventsParams{
		Order:  gamma.OrderVolume24hr,
		Closed: openOnly(),
		Limit:  s.cfg.SearchFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", cat, err)
	}

	var filtered []models.Event
	for _, ev := range pool {
		if ev.Category == cat {
			filtered = append(filtered, ev)
		}
	}
	sortEventsDesc(filtered, byVolume24hr)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return buildEventViews(filtered, s.now(), s.cfg.MaxOutcomes, showAll), nil
}

// resolveEvent turns a slug or URL into an event, trying exact lookup first
// and fuzzy matching second.
func (s *Service) resolveEvent(ctx context.Context, ref string) (*models.Event, error) {
	slug := ExtractSlug(ref)
	if slug == "" {
		return nil, fmt.Errorf("%w: cannot extract a slug from %q", models.ErrInvalidInput, ref)
	}

	ev, err := s.fetch.EventBySlug(ctx, slug)
	if err == nil {
		return ev, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("event %s: %w", slug, err)
	}

	pool, err := s.fetch.Events(ctx, gamma.EventsParams{
		Order:  gamma.OrderVolume24hr,
		Closed: openOnly(),
		Limit:  s.cfg.SearchFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", slug, err)
	}
	matches := search.Rank(strings.ReplaceAll(slug, "-", " "), pool)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: event %q", models.ErrNotFound, slug)
	}
	logger.WithFields(map[string]any{
		"ref":   ref,
		"slug":  matches[0].Event.Slug,
		"score": matches[0].Score,
	}).Debug("event resolved by fuzzy fallback")
	return matches[0].Event, nil
}

// ExtractSlug accepts a bare slug or a polymarket.com event URL and returns
// the slug in lowercase. Returns "" when no slug can be extracted.
func ExtractSlug(ref string) string {
	s := strings.TrimSpace(ref)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "polymarket.com") {
		return strings.ToLower(s)
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || !strings.HasSuffix(u.Hostname(), "polymarket.com") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "event" && i+1 < len(parts) && parts[i+1] != "" {
			return strings.ToLower(parts[i+1])
		}
	}
	return ""
}

// slugGuess converts free text to a candidate slug for the direct-lookup
// shortcut, or "" when the text does not reduce to one.
func slugGuess(text string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case !prevDash:
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
