package gamma

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/polyscout/polyscout/internal/logger"
	"github.com/polyscout/polyscout/internal/models"
)

// NormalizeEvents converts a raw batch into domain events. Malformed records
// are skipped with a warning; one bad record never aborts the batch.
func NormalizeEvents(raws []RawEvent) []models.Event {
	events := make([]models.Event, 0, len(raws))
	for i := range raws {
		ev, err := NormalizeEvent(&raws[i])
		if err != nil {
			logger.WithFields(map[string]any{
				"id":   raws[i].ID,
				"slug": raws[i].Slug,
			}).WithError(err).Warn("skipping malformed event record")
			continue
		}
		events = append(events, *ev)
	}
	return events
}

// NormalizeEvent converts one raw record into a domain event. It is a pure
// transform: missing optional fields get defaults, only a record with no
// usable identifier is rejected.
func NormalizeEvent(raw *RawEvent) (*models.Event, error) {
	slug := raw.Slug
	if slug == "" {
		slug = raw.ID
	}
	if slug == "" {
		return nil, errors.New("record has neither slug nor id")
	}

	title := raw.Title
	if title == "" {
		title = slug
	}

	ev := &models.Event{
		Slug:       slug,
		Title:      title,
		Category:   models.NormalizeCategory(raw.Category),
		EndDate:    parseEndDate(raw.EndDate),
		Volume:     toVolume(raw.Volume),
		Volume24hr: toVolume(raw.Volume24hr),
		Featured:   raw.Featured,
		Active:     raw.Active && !raw.Closed,
	}

	if len(raw.Markets) == 1 {
		if m := &raw.Markets[0]; !deadMarket(m) {
			ev.Outcomes = binaryOutcomes(m)
		}
	} else {
		for i := range raw.Markets {
			m := &raw.Markets[i]
			if deadMarket(m) {
				continue
			}
			o, ok := branchOutcome(m)
			if !ok {
				continue
			}
			ev.Outcomes = append(ev.Outcomes, o)
		}
	}

	return ev, nil
}

// binaryOutcomes expands a single Yes/No market into one outcome per side.
// Book depth and price history describe the Yes token, so they are attached
// to the first side only.
func binaryOutcomes(m *RawMarket) []models.Outcome {
	names, prices := parsePairedArrays(m.Outcomes, m.OutcomePrices)
	outcomes := make([]models.Outcome, 0, len(names))
	for i, name := range names {
		if i >= len(prices) {
			break
		}
		o := models.Outcome{
			Name:       name,
			Price:      prices[i],
			Volume:     toVolume(m.VolumeNum),
			Volume24hr: toVolume(m.Volume24hr),
			Active:     marketActive(m),
		}
		if i == 0 {
			o.BestBid = toPrice(m.BestBid)
			o.BestAsk = toPrice(m.BestAsk)
			o.PriceHistory = priceHistory(m, prices[i])
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// branchOutcome maps one market of a multi-market event to a single outcome,
// priced by its Yes side.
func branchOutcome(m *RawMarket) (models.Outcome, bool) {
	name := m.GroupItemTitle
	if name == "" {
		name = m.Question
	}
	if name == "" {
		return models.Outcome{}, false
	}

	_, prices := parsePairedArrays(m.Outcomes, m.OutcomePrices)
	if len(prices) == 0 {
		return models.Outcome{}, false
	}

	return models.Outcome{
		Name:         name,
		Price:        prices[0],
		PriceHistory: priceHistory(m, prices[0]),
		Volume:       toVolume(m.VolumeNum),
		Volume24hr:   toVolume(m.Volume24hr),
		BestBid:      toPrice(m.BestBid),
		BestAsk:      toPrice(m.BestAsk),
		Active:       marketActive(m),
	}, true
}

// priceHistory reconstructs prior prices from the change fields the source
// supplies. A window without a change stays absent: missing data must not
// masquerade as zero movement.
func priceHistory(m *RawMarket, price float64) map[models.Window]float64 {
	changes := map[models.Window]any{
		models.Window24h: m.OneDayPriceChange,
		models.Window1w:  m.OneWeekPriceChange,
		models.Window1mo: m.OneMonthPriceChange,
	}
	var hist map[models.Window]float64
	for w, raw := range changes {
		change, err := cast.ToFloat64E(raw)
		if err != nil {
			continue
		}
		if hist == nil {
			hist = make(map[models.Window]float64, len(changes))
		}
		hist[w] = clamp01(price - change)
	}
	return hist
}

// parsePairedArrays decodes the JSON-encoded outcome name and price arrays.
// Unparseable prices drop the pair; decode failure of either array yields
// nothing rather than an error.
func parsePairedArrays(namesJSON, pricesJSON string) ([]string, []float64) {
	var names []string
	if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
		return nil, nil
	}
	var rawPrices []string
	if err := json.Unmarshal([]byte(pricesJSON), &rawPrices); err != nil {
		return nil, nil
	}

	n := len(names)
	if len(rawPrices) < n {
		n = len(rawPrices)
	}
	outNames := make([]string, 0, n)
	outPrices := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		p, err := cast.ToFloat64E(strings.TrimSpace(rawPrices[i]))
		if err != nil {
			continue
		}
		outNames = append(outNames, names[i])
		outPrices = append(outPrices, clamp01(p))
	}
	return outNames, outPrices
}

// deadMarket reports an inactive market that never traded. Such markets are
// dropped regardless of how many the event carries.
func deadMarket(m *RawMarket) bool {
	return !marketActive(m) && toVolume(m.VolumeNum) == 0
}

func marketActive(m *RawMarket) bool {
	if m.Closed {
		return false
	}
	if m.Active == nil {
		return true
	}
	return *m.Active
}

// toVolume parses a loosely typed volume field; parse failure yields 0.
func toVolume(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// toPrice parses a loosely typed price field; parse failure yields absent.
func toPrice(v any) *float64 {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	f = clamp01(f)
	return &f
}

func parseEndDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
