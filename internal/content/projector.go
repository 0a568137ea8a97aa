package content

import (
	"cmp"
	"slices"
)

// Project returns the visible records sorted ascending by order.
// Records with equal order keep their relative input order. The input is never modified.
func Project[E Orderable](records []E) []E {
	return SortByOrder(FilterVisible(records))
}

// SortByOrder returns a stably sorted copy of all records, hidden ones included.
func SortByOrder[E Orderable](records []E) []E {
	sorted := make([]E, len(records))
	copy(sorted, records)
	slices.SortStableFunc(sorted, func(a, b E) int {
		return cmp.Compare(a.GetOrder(), b.GetOrder())
	})
	return sorted
}

func FilterVisible[E Visible](records []E) []E {
	visible := make([]E, 0, len(records))
	for _, r := range records {
		if r.IsVisible() {
			visible = append(visible, r)
		}
	}
	return visible
}
