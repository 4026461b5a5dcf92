package digest

import "fxpulse/app/store"

// Metrics aggregates a window's items for the digest header.
type Metrics struct {
	Total     int
	Alerted   int
	Hawkish   int
	Dovish    int
	ByLabel   map[string]int
	TopImpact float64
}

// Summarize tallies the window's items.
func Summarize(items []store.Item) Metrics {
	m := Metrics{ByLabel: map[string]int{}}
	for _, item := range items {
		m.Total++
		if item.AlertedAt != nil {
			m.Alerted++
		}
		switch {
		case item.Sentiment > 0:
			m.Hawkish++
		case item.Sentiment < 0:
			m.Dovish++
		}
		for _, label := range item.Labels {
			m.ByLabel[label]++
		}
		if item.Impact > m.TopImpact {
			m.TopImpact = item.Impact
		}
	}
	return m
}

// DeltaPct returns the percentage change from prev to cur. When prev
// is zero there is no meaningful baseline, so it reports (0, false)
// instead of inventing an infinite or hundred-percent jump.
func DeltaPct(cur, prev float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	return (cur - prev) / prev * 100, true
}
