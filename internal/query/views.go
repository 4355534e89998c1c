package query

import (
	"sort"
	"time"

	"github.com/polyscout/polyscout/internal/metrics"
	"github.com/polyscout/polyscout/internal/models"
)

// OutcomeView is one outcome prepared for display, with derived metrics
// already attached.
type OutcomeView struct {
	Name       string           `json:"name"`
	Price      float64          `json:"price"`
	Volume     float64          `json:"volume"`
	Volume24hr float64          `json:"volume_24hr"`
	BestBid    *float64         `json:"best_bid,omitempty"`
	BestAsk    *float64         `json:"best_ask,omitempty"`
	Metrics    metrics.Snapshot `json:"metrics"`
}

// EventView is one event prepared for display. Outcomes are sorted by price
// descending and may be truncated; TotalOutcomes always reports the full
// count so the renderer can say how many were elided.
type EventView struct {
	Slug          string                `json:"slug"`
	Title         string                `json:"title"`
	Category      models.Category       `json:"category"`
	URL           string                `json:"url"`
	EndDate       *time.Time            `json:"end_date,omitempty"`
	Remaining     metrics.TimeRemaining `json:"time_remaining"`
	Volume        float64               `json:"volume"`
	Volume24hr    float64               `json:"volume_24hr"`
	Featured      bool                  `json:"featured"`
	Binary        bool                  `json:"binary"`
	Outcomes      []OutcomeView         `json:"outcomes"`
	TotalOutcomes int                   `json:"total_outcomes"`

	// Narrowed marks a view deliberately reduced to one outcome by an
	// outcome query, as opposed to truncated for display.
	Narrowed bool `json:"narrowed,omitempty"`
}

// SearchResult is an EventView annotated with its match relevance.
type SearchResult struct {
	EventView
	Score        float64             `json:"score"`
	MatchedField models.MatchedField `json:"matched_field"`
}

// buildEventView assembles the display form of one event. Outcomes are
// ordered by price descending, then volume descending, then name, and
// truncated to maxOutcomes unless showAll is set.
func buildEventView(ev *models.Event, now time.Time, maxOutcomes int, showAll bool) EventView {
	v := EventView{
		Slug:          ev.Slug,
		Title:         ev.Title,
		Category:      ev.Category,
		URL:           ev.URL(),
		EndDate:       ev.EndDate,
		Remaining:     metrics.Until(ev.EndDate, now),
		Volume:        ev.Volume,
		Volume24hr:    ev.Volume24hr,
		Featured:      ev.Featured,
		Binary:        ev.IsBinary(),
		TotalOutcomes: len(ev.Outcomes),
	}

	ordered := make([]models.Outcome, len(ev.Outcomes))
	copy(ordered, ev.Outcomes)
	// Binary Yes/No pairs keep their natural order; everything else ranks by
	// likelihood.
	if !v.Binary {
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].Price != ordered[j].Price {
				return ordered[i].Price > ordered[j].Price
			}
			if ordered[i].Volume != ordered[j].Volume {
				return ordered[i].Volume > ordered[j].Volume
			}
			return ordered[i].Name < ordered[j].Name
		})
	}
	if !showAll && maxOutcomes > 0 && len(ordered) > maxOutcomes {
		ordered = ordered[:maxOutcomes]
	}

	v.Outcomes = make([]OutcomeView, len(ordered))
	for i := range ordered {
		o := &ordered[i]
		v.Outcomes[i] = OutcomeView{
			Name:       o.Name,
			Price:      o.Price,
			Volume:     o.Volume,
			Volume24hr: o.Volume24hr,
			BestBid:    o.BestBid,
			BestAsk:    o.BestAsk,
			Metrics:    metrics.Compute(o),
		}
	}
	return v
}

func buildEventViews(events []models.Event, now time.Time, maxOutcomes int, showAll bool) []EventView {
	views := make([]EventView, len(events))
	for i := range events {
		views[i] = buildEventView(&events[i], now, maxOutcomes, showAll)
	}
	return views
}
