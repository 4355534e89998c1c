// Package metrics computes display-ready derived values from normalized
// market data. Every function is pure: current time is an explicit parameter
// and nothing here performs I/O.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/polyscout/polyscout/internal/models"
)

// DeadZone suppresses price noise: moves within ±DeadZone are reported flat.
const DeadZone = 0.005

// Direction classifies a price move over a window.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Momentum is the price change of an outcome over one lookback window.
type Momentum struct {
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
}

// MomentumFor computes the momentum of o over window w. The second return is
// false when the source supplied no prior price for that window: missing data
// is unavailable, never zero movement.
func MomentumFor(o *models.Outcome, w models.Window) (Momentum, bool) {
	prior, ok := o.PriorPrice(w)
	if !ok {
		return Momentum{}, false
	}
	delta := o.Price - prior
	dir := DirectionFlat
	switch {
	case delta > DeadZone:
		dir = DirectionUp
	case delta < -DeadZone:
		dir = DirectionDown
	}
	return Momentum{Delta: delta, Direction: dir}, true
}

// Spread returns bestAsk − bestBid. The second return is false when either
// side of the book is missing; an empty book is not a zero spread.
func Spread(o *models.Outcome) (float64, bool) {
	if o.BestBid == nil || o.BestAsk == nil {
		return 0, false
	}
	return *o.BestAsk - *o.BestBid, true
}

// RemainingKind classifies how much time is left before resolution.
type RemainingKind string

const (
	NoExpiry  RemainingKind = "no_expiry"
	Ended     RemainingKind = "ended"
	InDays    RemainingKind = "days"
	InHours   RemainingKind = "hours"
	InMinutes RemainingKind = "minutes"
)

// TimeRemaining is the distance from now to an event's end date.
type TimeRemaining struct {
	Kind  RemainingKind `json:"kind"`
	Count int           `json:"count,omitempty"`
}

// Until computes the time remaining before end, relative to now. A nil end
// date means the question is open-ended.
func Until(end *time.Time, now time.Time) TimeRemaining {
	if end == nil {
		return TimeRemaining{Kind: NoExpiry}
	}
	d := end.Sub(now)
	if d <= 0 {
		return TimeRemaining{Kind: Ended}
	}
	if d >= 24*time.Hour {
		return TimeRemaining{Kind: InDays, Count: int(math.Ceil(d.Hours() / 24))}
	}
	if d >= time.Hour {
		return TimeRemaining{Kind: InHours, Count: int(math.Ceil(d.Hours()))}
	}
	n := int(math.Ceil(d.Minutes()))
	if n < 1 {
		n = 1
	}
	return TimeRemaining{Kind: InMinutes, Count: n}
}

// String renders the canonical human label. The formatter uses this verbatim
// so nothing downstream recomputes durations.
func (t TimeRemaining) String() string {
	switch t.Kind {
	case NoExpiry:
		return "no expiry"
	case Ended:
		return "Ended"
	case InDays:
		return fmt.Sprintf("Ends in %dd", t.Count)
	case InHours:
		return fmt.Sprintf("Ends in %dh", t.Count)
	case InMinutes:
		return fmt.Sprintf("Ends in %dm", t.Count)
	}
	return ""
}

// Snapshot bundles every derived value for one outcome.
type Snapshot struct {
	Momentum map[models.Window]Momentum `json:"momentum,omitempty"`
	Spread   *float64                   `json:"spread,omitempty"`
}

// Compute derives the full snapshot for one outcome. Windows without history
// are absent from the momentum map.
func Compute(o *models.Outcome) Snapshot {
	var snap Snapshot
	for _, w := range models.Windows {
		m, ok := MomentumFor(o, w)
		if !ok {
			continue
		}
		if snap.Momentum == nil {
			snap.Momentum = make(map[models.Window]Momentum, len(models.Windows))
		}
		snap.Momentum[w] = m
	}
	if s, ok := Spread(o); ok {
		snap.Spread = &s
	}
	return snap
}
