package domain

// Pair identifies a traded market by its base and quote asset symbols.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// Name returns the canonical pair name, e.g. "BTC_USD".
func (p Pair) Name() string {
	return p.Base + "_" + p.Quote
}
