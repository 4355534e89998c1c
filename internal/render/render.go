// Package render writes query results to a terminal, as readable text or as
// indented JSON. Text output colorizes momentum only when the destination is
// a TTY, so piped output stays clean.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"

	"github.com/polyscout/polyscout/internal/metrics"
	"github.com/polyscout/polyscout/internal/models"
	"github.com/polyscout/polyscout/internal/query"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// End dates further out than this render as a calendar date instead of a
// day count.
const farDateDays = 30

// Renderer formats query output onto one writer.
type Renderer struct {
	out   io.Writer
	color bool
}

// New creates a renderer. Color is enabled only when out is a terminal.
func New(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, color: color}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Noticef writes a dimmed informational line, such as the featured fallback
// note.
func (r *Renderer) Noticef(format string, args ...any) {
	fmt.Fprintln(r.out, r.paint(ansiDim, fmt.Sprintf(format, args...)))
}

// EventList writes a numbered summary of events under a heading.
func (r *Renderer) EventList(heading string, views []query.EventView) {
	if len(views) == 0 {
		fmt.Fprintln(r.out, "No events found.")
		return
	}
	fmt.Fprintln(r.out, r.paint(ansiBold, heading))
	for i := range views {
		fmt.Fprintln(r.out)
		r.summary(i+1, &views[i])
	}
}

// SearchResults writes ranked matches with the field each one matched on.
func (r *Renderer) SearchResults(results []query.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(r.out, "No matches found.")
		return
	}
	fmt.Fprintln(r.out, r.paint(ansiBold, fmt.Sprintf("Found %d match(es)", len(results))))
	for i := range results {
		fmt.Fprintln(r.out)
		r.summary(i+1, &results[i].EventView)
		fmt.Fprintf(r.out, "   %s\n",
			r.paint(ansiDim, fmt.Sprintf("matched on %s", results[i].MatchedField)))
	}
}

// EventDetail writes one event in full, with per-outcome momentum and book
// metrics.
func (r *Renderer) EventDetail(v *query.EventView) {
	fmt.Fprintf(r.out, "%s  [%s]\n", r.paint(ansiBold, v.Title), v.Category)
	fmt.Fprintf(r.out, "Volume: %s (24h: %s) · %s\n",
		money(v.Volume), money(v.Volume24hr), r.endLabel(v))
	fmt.Fprintln(r.out)

	for i := range v.Outcomes {
		r.outcomeDetail(&v.Outcomes[i])
	}
	if hidden := v.TotalOutcomes - len(v.Outcomes); hidden > 0 {
		if v.Narrowed {
			// The caller asked for this one outcome; --all would not change it.
			fmt.Fprintln(r.out, r.paint(ansiDim,
				fmt.Sprintf("showing 1 of %d outcomes", v.TotalOutcomes)))
		} else {
			fmt.Fprintf(r.out, "… and %d more (use --all to show every outcome)\n", hidden)
		}
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, v.URL)
}

// summary writes the two-to-three line list form of one event.
func (r *Renderer) summary(n int, v *query.EventView) {
	fmt.Fprintf(r.out, "%d. %s  [%s]\n", n, r.paint(ansiBold, v.Title), v.Category)

	if v.Binary && len(v.Outcomes) == 2 {
		fmt.Fprintf(r.out, "   %s: %s | %s: %s%s\n",
			v.Outcomes[0].Name, pct(v.Outcomes[0].Price),
			v.Outcomes[1].Name, pct(v.Outcomes[1].Price),
			r.momentumSuffix(&v.Outcomes[0]))
	} else {
		for i := range v.Outcomes {
			o := &v.Outcomes[i]
			fmt.Fprintf(r.out, "   %-24s %6s%s\n", o.Name, pct(o.Price), r.momentumSuffix(o))
		}
		if hidden := v.TotalOutcomes - len(v.Outcomes); hidden > 0 {
			fmt.Fprintf(r.out, "   … and %d more\n", hidden)
		}
	}

	fmt.Fprintf(r.out, "   Volume: %s (24h: %s) · %s · %s\n",
		money(v.Volume), money(v.Volume24hr), r.endLabel(v), v.URL)
}

// outcomeDetail writes one outcome with every available metric.
func (r *Renderer) outcomeDetail(o *query.OutcomeView) {
	fmt.Fprintf(r.out, "%-24s %6s   volume %s\n", o.Name, pct(o.Price), money(o.Volume))

	for _, w := range models.Windows {
		m, ok := o.Metrics.Momentum[w]
		if !ok {
			continue
		}
		fmt.Fprintf(r.out, "  %-4s %s\n", w, r.momentum(m))
	}
	if o.Metrics.Spread != nil && o.BestBid != nil && o.BestAsk != nil {
		fmt.Fprintf(r.out, "  spread %.3f (bid %.2f / ask %.2f)\n",
			*o.Metrics.Spread, *o.BestBid, *o.BestAsk)
	}
}

// momentumSuffix renders the 24h arrow shown next to list prices, or "" when
// no history is available.
func (r *Renderer) momentumSuffix(o *query.OutcomeView) string {
	m, ok := o.Metrics.Momentum[models.Window24h]
	if !ok {
		return ""
	}
	return "  " + r.momentum(m)
}

// momentum renders one window's move as a colored arrow and signed delta in
// percentage points.
func (r *Renderer) momentum(m metrics.Momentum) string {
	switch m.Direction {
	case metrics.DirectionUp:
		return r.paint(ansiGreen, fmt.Sprintf("↑ +%.1fpp", m.Delta*100))
	case metrics.DirectionDown:
		return r.paint(ansiRed, fmt.Sprintf("↓ %.1fpp", m.Delta*100))
	default:
		return r.paint(ansiDim, "→ flat")
	}
}

// endLabel prefers a calendar date for far-out end dates and the relative
// label otherwise.
func (r *Renderer) endLabel(v *query.EventView) string {
	if v.Remaining.Kind == metrics.InDays && v.Remaining.Count > farDateDays && v.EndDate != nil {
		return "Ends " + strftime.Format("%b %d, %Y", *v.EndDate)
	}
	return v.Remaining.String()
}

func (r *Renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// pct renders a probability as a percentage with one decimal.
func pct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// money renders a dollar amount compactly: $987, $45.3K, $1.2M, $3.4B.
func money(v float64) string {
	if v < 1000 {
		return "$" + humanize.CommafWithDigits(v, 0)
	}
	s := humanize.SIWithDigits(v, 1, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "k", "K")
	s = strings.ReplaceAll(s, "G", "B")
	return "$" + s
}
