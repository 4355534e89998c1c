// Package search scores free-text queries against events and produces a
// deterministically ordered, deduplicated ranking.
//
// Scoring: an exact slug match scores ScoreExactSlug, above any fuzzy
// ceiling. Otherwise each query token takes the best of its matches against
// the candidate's tokens (1.0 exact word, 0.7 substring, up to 0.5 scaled by
// Levenshtein similarity) and the candidate scores the mean over query
// tokens, plus a bonus when every query token matched a whole word. Token
// order in the query is irrelevant.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/polyscout/polyscout/internal/models"
)

const (
	// ScoreExactSlug is assigned to exact slug equality; fuzzy scores cap at
	// 1.0 + fullTokenBonus, so exact lookups always rank first.
	ScoreExactSlug = 3.0

	// Threshold is the minimum relevance for a candidate to appear at all.
	Threshold = 0.35

	tokenExact     = 1.0
	tokenSubstring = 0.7
	editSimWeight  = 0.5
	editSimFloor   = 0.72
	fullTokenBonus = 0.5
)

// Score rates candidate text against a free-text query. Case-insensitive,
// token-order-insensitive, in [0, 1.5].
func Score(query, candidate string) float64 {
	qTokens := tokenize(query)
	cTokens := tokenize(candidate)
	if len(qTokens) == 0 || len(cTokens) == 0 {
		return 0
	}

	var total float64
	allWhole := true
	for _, qt := range qTokens {
		best := 0.0
		for _, ct := range cTokens {
			if s := tokenScore(qt, ct); s > best {
				best = s
			}
			if best == tokenExact {
				break
			}
		}
		if best < tokenExact {
			allWhole = false
		}
		total += best
	}

	score := total / float64(len(qTokens))
	if allWhole {
		score += fullTokenBonus
	}
	return score
}

// tokenScore rates one query token against one candidate token. The edit
// branch is monotonically non-increasing in Levenshtein distance and never
// reaches the substring tier.
func tokenScore(qt, ct string) float64 {
	if qt == ct {
		return tokenExact
	}
	if strings.Contains(ct, qt) || strings.Contains(qt, ct) {
		return tokenSubstring
	}
	maxLen := len(qt)
	if len(ct) > maxLen {
		maxLen = len(ct)
	}
	sim := 1.0 - float64(levenshtein.ComputeDistance(qt, ct))/float64(maxLen)
	if sim < editSimFloor {
		return 0
	}
	return editSimWeight * sim
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Rank scores the query against each event's slug, title, and outcome names,
// keeps the best field per event, deduplicates by slug, and orders the result
// by score descending, Volume24hr descending, slug ascending. Candidates
// below Threshold are omitted; no match yields an empty slice, not an error.
func Rank(query string, events []models.Event) []models.RankedMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	bySlug := make(map[string]models.RankedMatch, len(events))

	for i := range events {
		ev := &events[i]
		m := matchEvent(q, ev)
		if m.Score < Threshold {
			continue
		}
		if prev, ok := bySlug[ev.Slug]; ok && prev.Score >= m.Score {
			continue
		}
		bySlug[ev.Slug] = m
	}

	matches := make([]models.RankedMatch, 0, len(bySlug))
	for _, m := range bySlug {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Event.Volume24hr != matches[j].Event.Volume24hr {
			return matches[i].Event.Volume24hr > matches[j].Event.Volume24hr
		}
		return matches[i].Event.Slug < matches[j].Event.Slug
	})
	return matches
}

func matchEvent(query string, ev *models.Event) models.RankedMatch {
	best := models.RankedMatch{Event: ev, MatchedField: models.MatchedSlug}

	if query == strings.ToLower(ev.Slug) {
		best.Score = ScoreExactSlug
		return best
	}
	best.Score = Score(query, ev.Slug)

	if s := Score(query, ev.Title); s > best.Score {
		best.Score = s
		best.MatchedField = models.MatchedTitle
	}
	for i := range ev.Outcomes {
		if s := Score(query, ev.Outcomes[i].Name); s > best.Score {
			best.Score = s
			best.MatchedField = models.MatchedOutcome
		}
	}
	return best
}

// BestOutcome resolves a name query against one event's outcomes. Ties go to
// the higher-volume outcome, then lexicographically by name. Returns false
// when nothing clears Threshold.
func BestOutcome(query string, ev *models.Event) (*models.Outcome, bool) {
	bestIdx := -1
	bestScore := 0.0
	for i := range ev.Outcomes {
		o := &ev.Outcomes[i]
		s := Score(query, o.Name)
		if s < Threshold {
			continue
		}
		switch {
		case bestIdx < 0 || s > bestScore:
		case s == bestScore && o.Volume > ev.Outcomes[bestIdx].Volume:
		case s == bestScore && o.Volume == ev.Outcomes[bestIdx].Volume && o.Name < ev.Outcomes[bestIdx].Name:
		default:
			continue
		}
		bestIdx, bestScore = i, s
	}
	if bestIdx < 0 {
		return nil, false
	}
	return &ev.Outcomes[bestIdx], true
}
