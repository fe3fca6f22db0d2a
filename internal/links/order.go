package links

import (
	"cmp"
	"slices"
)

// Order selects how the admin listing is sorted.
type Order string

const (
	OrderSlug Order = "slug" // slug ascending
	OrderHits Order = "hits" // hits descending, then slug
	OrderLast Order = "last" // last access descending, then slug
)

// ParseOrder maps a query or form value to an Order. Unknown values sort by slug.
func ParseOrder(s string) Order {
	switch o := Order(s); o {
	case OrderSlug, OrderHits, OrderLast:
		return o
	default:
		return OrderSlug
	}
}

// Sorted returns the links of records ordered by o. Slugs compare byte-wise.
func Sorted(records Records, o Order) []Link {
	out := make([]Link, 0, len(records))
	for slug := range records {
		link, _ := records.Get(slug)
		out = append(out, link)
	}

	bySlug := func(a, b Link) int { return cmp.Compare(a.Slug, b.Slug) }

	switch o {
	case OrderHits:
		slices.SortFunc(out, func(a, b Link) int {
			if c := cmp.Compare(b.Hits, a.Hits); c != 0 {
				return c
			}
			return bySlug(a, b)
		})
	case OrderLast:
		slices.SortFunc(out, func(a, b Link) int {
			if c := cmp.Compare(b.lastAccessOrZero(), a.lastAccessOrZero()); c != 0 {
				return c
			}
			return bySlug(a, b)
		})
	default:
		slices.SortFunc(out, bySlug)
	}
	return out
}
