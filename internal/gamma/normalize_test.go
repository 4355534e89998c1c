package gamma

import (
	"testing"
	"time"

	"github.com/polyscout/polyscout/internal/models"
)

func yesNoMarket() RawMarket {
	return RawMarket{
		ID:            "m-1",
		Question:      "Will the Fed cut rates?",
		Outcomes:      `["Yes", "No"]`,
		OutcomePrices: `["0.73", "0.27"]`,
		VolumeNum:     "125000.5",
		Volume24hr:    50000,
		BestBid:       "0.72",
		BestAsk:       0.74,
	}
}

func TestNormalizeEvent_Binary(t *testing.T) {
	raw := RawEvent{
		ID:         "901",
		Slug:       "fed-decision",
		Title:      "Fed decision in March?",
		Category:   "Business",
		EndDate:    "2026-03-18T20:00:00Z",
		Active:     true,
		Volume:     "300000",
		Volume24hr: 50000,
		Markets:    []RawMarket{yesNoMarket()},
	}

	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}

	if ev.Slug != "fed-decision" {
		t.Errorf("slug = %q", ev.Slug)
	}
	if ev.Category != models.CategoryBusiness {
		t.Errorf("category = %q, want business", ev.Category)
	}
	if ev.Volume != 300000 {
		t.Errorf("string volume not parsed: %v", ev.Volume)
	}
	if ev.EndDate == nil || !ev.EndDate.Equal(time.Date(2026, 3, 18, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("end date = %v", ev.EndDate)
	}
	if !ev.IsBinary() {
		t.Fatalf("expected binary event, got outcomes %v", ev.Outcomes)
	}

	yes, no := ev.Outcomes[0], ev.Outcomes[1]
	if yes.Price != 0.73 || no.Price != 0.27 {
		t.Errorf("prices = %v / %v", yes.Price, no.Price)
	}
	if yes.Volume != 125000.5 {
		t.Errorf("string volumeNum not parsed: %v", yes.Volume)
	}
	if yes.BestBid == nil || *yes.BestBid != 0.72 {
		t.Errorf("best bid = %v", yes.BestBid)
	}
	if yes.BestAsk == nil || *yes.BestAsk != 0.74 {
		t.Errorf("best ask = %v", yes.BestAsk)
	}
}

func TestNormalizeEvent_IdentifierFallbacks(t *testing.T) {
	raw := RawEvent{ID: "456"}
	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent with id only: %v", err)
	}
	if ev.Slug != "456" {
		t.Errorf("slug should fall back to id, got %q", ev.Slug)
	}
	if ev.Title != "456" {
		t.Errorf("title should fall back to slug, got %q", ev.Title)
	}

	if _, err := NormalizeEvent(&RawEvent{Title: "no identifiers"}); err == nil {
		t.Error("record without slug and id should be rejected")
	}
}

func TestNormalizeEvent_OptionalDefaults(t *testing.T) {
	raw := RawEvent{
		Slug:       "open-ended",
		Title:      "Open question",
		Volume:     "not-a-number",
		Volume24hr: nil,
	}
	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	if ev.Category != models.CategoryUnclassified {
		t.Errorf("missing category = %q, want unclassified", ev.Category)
	}
	if ev.EndDate != nil {
		t.Errorf("missing end date should stay nil, got %v", ev.EndDate)
	}
	if ev.Volume != 0 || ev.Volume24hr != 0 {
		t.Errorf("bad volumes should parse to 0, got %v / %v", ev.Volume, ev.Volume24hr)
	}
}

func TestNormalizeEvent_InvalidEndDate(t *testing.T) {
	raw := RawEvent{Slug: "s", Title: "t", EndDate: "tomorrow-ish"}
	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	if ev.EndDate != nil {
		t.Errorf("unparseable end date should be nil, got %v", ev.EndDate)
	}
}

func TestNormalizeEvent_MultiOutcome(t *testing.T) {
	inactive := false
	raw := RawEvent{
		Slug:   "nba-champion",
		Title:  "NBA Champion 2026",
		Active: true,
		Markets: []RawMarket{
			{
				GroupItemTitle: "Warriors",
				Outcomes:       `["Yes", "No"]`,
				OutcomePrices:  `["0.40", "0.60"]`,
				VolumeNum:      80000,
			},
			{
				Question:      "Will the Lakers win the 2026 title?",
				Outcomes:      `["Yes", "No"]`,
				OutcomePrices: `["0.25", "0.75"]`,
				VolumeNum:     30000,
			},
			{
				// inactive with zero volume: dropped
				GroupItemTitle: "Pistons",
				Outcomes:       `["Yes", "No"]`,
				OutcomePrices:  `["0.01", "0.99"]`,
				Active:         &inactive,
			},
			{
				// unparseable prices: dropped
				GroupItemTitle: "Heat",
				Outcomes:       `["Yes", "No"]`,
				OutcomePrices:  `not json`,
			},
		},
	}

	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	if len(ev.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d: %v", len(ev.Outcomes), ev.Outcomes)
	}
	if ev.Outcomes[0].Name != "Warriors" || ev.Outcomes[0].Price != 0.40 {
		t.Errorf("first outcome = %+v", ev.Outcomes[0])
	}
	if ev.Outcomes[1].Name != "Will the Lakers win the 2026 title?" {
		t.Errorf("question fallback name = %q", ev.Outcomes[1].Name)
	}
}

func TestNormalizeEvent_DropsDeadLoneMarket(t *testing.T) {
	inactive := false
	m := yesNoMarket()
	m.Active = &inactive
	m.VolumeNum = 0
	raw := RawEvent{Slug: "dead-question", Title: "Dead question", Markets: []RawMarket{m}}

	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	if len(ev.Outcomes) != 0 {
		t.Errorf("inactive zero-volume lone market must be dropped, got %+v", ev.Outcomes)
	}

	// Inactive but traded: kept.
	traded := yesNoMarket()
	traded.Active = &inactive
	raw = RawEvent{Slug: "paused-question", Title: "Paused", Markets: []RawMarket{traded}}
	ev, err = NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	if len(ev.Outcomes) != 2 {
		t.Errorf("inactive market with volume must be kept, got %+v", ev.Outcomes)
	}
}

func TestNormalizeEvent_PriceHistory(t *testing.T) {
	m := yesNoMarket()
	m.OneDayPriceChange = 0.05
	m.OneWeekPriceChange = "-0.10"
	// month change absent
	raw := RawEvent{Slug: "s", Title: "t", Markets: []RawMarket{m}}

	ev, err := NormalizeEvent(&raw)
	if err != nil {
		t.Fatalf("NormalizeEvent: %v", err)
	}
	yes := ev.Outcomes[0]

	day, ok := yes.PriorPrice(models.Window24h)
	if !ok || !approx(day, 0.68) {
		t.Errorf("24h prior = %v (%v), want 0.68", day, ok)
	}
	week, ok := yes.PriorPrice(models.Window1w)
	if !ok || !approx(week, 0.83) {
		t.Errorf("1w prior = %v (%v), want 0.83", week, ok)
	}
	if _, ok := yes.PriorPrice(models.Window1mo); ok {
		t.Error("absent month change must not synthesize a prior price")
	}

	no := ev.Outcomes[1]
	if no.PriceHistory != nil {
		t.Errorf("No side should carry no history, got %v", no.PriceHistory)
	}
}

func TestNormalizeEvents_SkipsMalformed(t *testing.T) {
	raws := []RawEvent{
		{Slug: "good-one", Title: "Good"},
		{}, // no identifiers
		{Slug: "good-two", Title: "Also good"},
	}
	events := NormalizeEvents(raws)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Slug != "good-one" || events[1].Slug != "good-two" {
		t.Errorf("unexpected slugs: %v, %v", events[0].Slug, events[1].Slug)
	}
}

func approx(got, want float64) bool {
	const tol = 1e-9
	return got > want-tol && got < want+tol
}
