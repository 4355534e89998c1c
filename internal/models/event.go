// Package models defines the core domain entities: events, outcomes, and
// search values shared by the normalizer, ranker, and query service.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Window identifies a price-history lookback window.
type Window string

const (
	Window24h Window = "24h"
	Window1w  Window = "1w"
	Window1mo Window = "1mo"
)

// Windows lists all lookback windows in display order.
var Windows = []Window{Window24h, Window1w, Window1mo}

// Outcome is one side of a binary market or one branch of a multi-outcome
// event. PriceHistory holds the prior price per window only when the source
// supplied it; an absent window means "unknown", never zero. BestBid/BestAsk
// are nil when the book is empty.
type Outcome struct {
	Name         string             `json:"name"`
	Price        float64            `json:"price"`
	PriceHistory map[Window]float64 `json:"price_history,omitempty"`
	Volume       float64            `json:"volume"`
	Volume24hr   float64            `json:"volume_24hr"`
	BestBid      *float64           `json:"best_bid,omitempty"`
	BestAsk      *float64           `json:"best_ask,omitempty"`
	Active       bool               `json:"active"`
}

// PriorPrice returns the price at the start of window w, if known.
func (o *Outcome) PriorPrice(w Window) (float64, bool) {
	p, ok := o.PriceHistory[w]
	return p, ok
}

// Event is a named prediction question owning one or more outcomes.
// EndDate is nil for open-ended questions. Outcomes preserve source order.
type Event struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Category   Category   `json:"category"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Volume     float64    `json:"volume"`
	Volume24hr float64    `json:"volume_24hr"`
	Featured   bool       `json:"featured"`
	Active     bool       `json:"active"`
	Outcomes   []Outcome  `json:"outcomes"`
}

// Validate checks event field constraints.
func (e *Event) Validate() error {
	if e.Slug == "" {
		return errors.New("event slug must not be empty")
	}
	if e.Title == "" {
		return errors.New("event title must not be empty")
	}
	if e.Volume < 0 {
		return errors.New("volume must not be negative")
	}
	if e.Volume24hr < 0 {
		return errors.New("volume 24hr must not be negative")
	}
	for i := range e.Outcomes {
		o := &e.Outcomes[i]
		if o.Price < 0.0 || o.Price > 1.0 {
			return fmt.Errorf("outcome %q price must be between 0.0 and 1.0", o.Name)
		}
		if o.Volume < 0 || o.Volume24hr < 0 {
			return fmt.Errorf("outcome %q volume must not be negative", o.Name)
		}
	}
	return nil
}

// IsBinary reports whether the event is the canonical two-outcome Yes/No
// market, which is rendered as a single odds pair.
func (e *Event) IsBinary() bool {
	if len(e.Outcomes) != 2 {
		return false
	}
	a := strings.EqualFold(e.Outcomes[0].Name, "Yes") && strings.EqualFold(e.Outcomes[1].Name, "No")
	b := strings.EqualFold(e.Outcomes[0].Name, "No") && strings.EqualFold(e.Outcomes[1].Name, "Yes")
	return a || b
}

// URL returns the public page for the event.
func (e *Event) URL() string {
	return "https://polymarket.com/event/" + e.Slug
}
