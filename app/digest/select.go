package digest

import (
	"sort"

	"fxpulse/app/store"
)

// Select orders items by impact, highest first, and truncates to max.
// The sort is stable so items with equal impact keep their stored
// order. It returns the selection and how many items were cut.
func Select(items []store.Item, max int) (selected []store.Item, truncated int) {
	selected = make([]store.Item, len(items))
	copy(selected, items)

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Impact > selected[j].Impact
	})

	if max > 0 && len(selected) > max {
		truncated = len(selected) - max
		selected = selected[:max]
	}

	return selected, truncated
}
