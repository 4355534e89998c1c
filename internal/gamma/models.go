package gamma

// RawEvent is an event as returned by the Gamma /events endpoint. Numeric
// fields arrive as JSON numbers or strings depending on the endpoint, so they
// are held loosely and parsed by the normalizer.
type RawEvent struct {
	ID         string      `json:"id"`
	Slug       string      `json:"slug"`
	Title      string      `json:"title"`
	Category   string      `json:"category"`
	EndDate    string      `json:"endDate"`
	Featured   bool        `json:"featured"`
	Active     bool        `json:"active"`
	Closed     bool        `json:"closed"`
	Volume     any         `json:"volume"`
	Volume24hr any         `json:"volume24hr"`
	Markets    []RawMarket `json:"markets"`
}

// RawMarket is one market within an event. Outcomes and OutcomePrices are
// JSON-encoded string arrays, e.g. "[\"Yes\", \"No\"]" / "[\"0.73\", \"0.27\"]".
// Bid/ask and price changes are absent for illiquid or young markets.
type RawMarket struct {
	ID                  string `json:"id"`
	Question            string `json:"question"`
	GroupItemTitle      string `json:"groupItemTitle"`
	Outcomes            string `json:"outcomes"`
	OutcomePrices       string `json:"outcomePrices"`
	VolumeNum           any    `json:"volumeNum"`
	Volume24hr          any    `json:"volume24hr"`
	BestBid             any    `json:"bestBid"`
	BestAsk             any    `json:"bestAsk"`
	OneDayPriceChange   any    `json:"oneDayPriceChange"`
	OneWeekPriceChange  any    `json:"oneWeekPriceChange"`
	OneMonthPriceChange any    `json:"oneMonthPriceChange"`
	Active              *bool  `json:"active"`
	Closed              bool   `json:"closed"`
}
