package domain

import "time"

// TimeWindow is a half-open interval [StartHour, EndHour) of UTC hours during
// which orders of one side may trigger. Configured once at startup, immutable
// thereafter. Buy and sell windows are non-overlapping by convention; overlap
// is not enforced and resolves in favor of buy (see ClassifyWindow).
type TimeWindow struct {
	StartHour int
	EndHour   int
}

// Contains reports whether the given UTC hour falls inside the window.
func (w TimeWindow) Contains(hour int) bool {
	return w.StartHour <= hour && hour < w.EndHour
}

// ClassifyWindow maps a timestamp to the side whose window contains it.
// The buy window is checked first, so buy wins if the windows overlap.
// Total over all inputs; no side effects.
func ClassifyWindow(now time.Time, buy, sell TimeWindow) OrderSide {
	hour := now.UTC().Hour()
	switch {
	case buy.Contains(hour):
		return SideBuy
	case sell.Contains(hour):
		return SideSell
	default:
		return SideNone
	}
}
