package search

import (
	"testing"

	"github.com/polyscout/polyscout/internal/models"
)

func ev(slug, title string, vol24h float64, outcomes ...string) models.Event {
	e := models.Event{Slug: slug, Title: title, Volume24hr: vol24h, Active: true}
	for _, name := range outcomes {
		e.Outcomes = append(e.Outcomes, models.Outcome{Name: name, Active: true})
	}
	return e
}

func slugs(matches []models.RankedMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Event.Slug
	}
	return out
}

func TestRankPrefersFullTokenCoverage(t *testing.T) {
	events := []models.Event{
		ev("warriors-trade", "Will Giannis be traded to Warriors?", 50000),
		ev("lakers-trade", "Will Giannis be traded to Lakers?", 10000),
	}

	got := slugs(Rank("giannis warriors", events))
	want := []string{"warriors-trade", "lakers-trade"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRankExactSlugDominates(t *testing.T) {
	events := []models.Event{
		ev("fed-rate-decision", "Fed rate decision in every word", 9e9),
		ev("fed-rates", "Unrelated title", 1),
	}

	matches := Rank("fed-rates", events)
	if len(matches) == 0 || matches[0].Event.Slug != "fed-rates" {
		t.Fatalf("exact slug must rank first regardless of volume: %v", slugs(matches))
	}
	if matches[0].Score != ScoreExactSlug {
		t.Errorf("exact slug score = %v, want %v", matches[0].Score, ScoreExactSlug)
	}
	if matches[0].MatchedField != models.MatchedSlug {
		t.Errorf("matched field = %q, want slug", matches[0].MatchedField)
	}
}

func TestScoreFullTokenBeatsSubstring(t *testing.T) {
	full := Score("warriors", "Warriors win the finals")
	sub := Score("warrior", "Warriors win the finals")
	if full <= sub {
		t.Errorf("whole-word match %v should beat substring match %v", full, sub)
	}
}

func TestScoreMonotonicInEditDistance(t *testing.T) {
	// Same length, growing distance from the candidate token.
	scores := []float64{
		Score("election", "election results"),
		Score("eldction", "election results"),
		Score("eldctiin", "election results"),
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Errorf("score rose with edit distance: %v", scores)
		}
	}
	if scores[0] <= scores[1] && scores[0] != scores[1] {
		t.Errorf("exact token should score highest: %v", scores)
	}
}

func TestScoreCaseAndOrderInsensitive(t *testing.T) {
	a := Score("BITCOIN etf", "Will a Bitcoin ETF be approved?")
	b := Score("etf bitcoin", "will a bitcoin etf be approved?")
	if a != b {
		t.Errorf("scores differ across case/order: %v vs %v", a, b)
	}
	if a < 1.0 {
		t.Errorf("all-token match scored %v, want >= 1.0", a)
	}
}

func TestRankDropsIrrelevant(t *testing.T) {
	events := []models.Event{
		ev("super-bowl-winner", "Super Bowl winner", 1000),
		ev("inflation-cpi", "CPI above 3 percent?", 1000),
	}
	matches := Rank("super bowl", events)
	if len(matches) != 1 || matches[0].Event.Slug != "super-bowl-winner" {
		t.Fatalf("irrelevant events must not appear: %v", slugs(matches))
	}
}

func TestRankMatchesOutcomeNames(t *testing.T) {
	events := []models.Event{
		ev("nba-champion", "NBA Champion 2026", 5000, "Warriors", "Lakers", "Celtics"),
	}
	matches := Rank("celtics", events)
	if len(matches) != 1 {
		t.Fatalf("expected outcome-name match, got %v", slugs(matches))
	}
	if matches[0].MatchedField != models.MatchedOutcome {
		t.Errorf("matched field = %q, want outcome", matches[0].MatchedField)
	}
}

func TestRankDeduplicatesBySlug(t *testing.T) {
	events := []models.Event{
		ev("btc-100k", "Bitcoin above 100k", 1000),
		ev("btc-100k", "Bitcoin above 100k", 1000),
	}
	if matches := Rank("bitcoin", events); len(matches) != 1 {
		t.Fatalf("duplicate slug must appear once, got %d", len(matches))
	}
}

func TestRankTieBreaks(t *testing.T) {
	events := []models.Event{
		ev("bbb-market", "identical title", 100),
		ev("aaa-market", "identical title", 100),
		ev("ccc-market", "identical title", 900),
	}
	got := slugs(Rank("identical title", events))
	want := []string{"ccc-market", "aaa-market", "bbb-market"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order = %v, want %v", got, want)
		}
	}
}

func TestBestOutcome(t *testing.T) {
	e := models.Event{
		Slug: "nba-champion",
		Outcomes: []models.Outcome{
			{Name: "Golden State Warriors", Volume: 200},
			{Name: "Los Angeles Lakers", Volume: 900},
			{Name: "Boston Celtics", Volume: 500},
		},
	}

	o, ok := BestOutcome("lakers", &e)
	if !ok || o.Name != "Los Angeles Lakers" {
		t.Fatalf("BestOutcome(lakers) = %v, %v", o, ok)
	}

	if _, ok := BestOutcome("zzzzzz", &e); ok {
		t.Error("nonsense query must not resolve an outcome")
	}
}
