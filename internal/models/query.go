package models

import "errors"

// Sentinel errors checked with errors.Is at the CLI boundary.
var (
	// ErrNotFound means a slug or outcome lookup produced no exact or fuzzy
	// match above threshold. Distinct from an empty-but-valid result set.
	ErrNotFound = errors.New("no match found")

	// ErrInvalidInput marks arguments rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")
)

// DefaultLimit is the result count used when the caller does not set one.
const DefaultLimit = 5

// SearchQuery carries the parameters of a single search invocation.
type SearchQuery struct {
	Text    string
	Limit   int
	ShowAll bool
	AsJSON  bool
}

// NewSearchQuery builds a query with defaults applied.
func NewSearchQuery(text string) SearchQuery {
	return SearchQuery{Text: text, Limit: DefaultLimit}
}

// MatchedField names the event field a fuzzy match hit.
type MatchedField string

const (
	MatchedSlug    MatchedField = "slug"
	MatchedTitle   MatchedField = "title"
	MatchedOutcome MatchedField = "outcome"
)

// RankedMatch is the transient result of fuzzy matching one event.
// Higher scores are better; ties are broken by Volume24hr descending, then
// slug ascending, so ranked output is a total order.
type RankedMatch struct {
	Event        *Event
	Score        float64
	MatchedField MatchedField
}
