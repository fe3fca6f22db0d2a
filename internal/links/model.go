package links

import (
	"maps"
	"time"
)

// Millis is a point in time as milliseconds since the Unix epoch, the unit
// used throughout the data file.
type Millis int64

// MillisOf converts t to Millis.
func MillisOf(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time converts m back to a time.Time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

// Link is one slug mapping. Slug is the key of the record in the data file
// and is not stored inside the record itself.
type Link struct {
	Slug       string  `json:"-"`
	URL        string  `json:"url"`
	CreatedAt  Millis  `json:"createdAt"`
	UpdatedAt  Millis  `json:"updatedAt"`
	Hits       int64   `json:"hits"`
	LastAccess *Millis `json:"lastAccess"`
}

// lastAccessOrZero treats a link that was never visited as accessed at the epoch.
func (l Link) lastAccessOrZero() Millis {
	if l.LastAccess == nil {
		return 0
	}
	return *l.LastAccess
}

// Records maps slugs to links. Upsert and Remove return a new map and leave
// the receiver untouched, so a published Records value is never mutated.
type Records map[string]Link

// Get returns the link stored under slug.
func (r Records) Get(slug string) (Link, bool) {
	link, ok := r[slug]
	if !ok {
		return Link{}, false
	}
	link.Slug = slug
	return link, true
}

// Upsert returns a copy of r with link stored under link.Slug.
func (r Records) Upsert(link Link) Records {
	next := maps.Clone(r)
	if next == nil {
		next = make(Records, 1)
	}
	next[link.Slug] = link
	return next
}

// Remove returns a copy of r without slug.
func (r Records) Remove(slug string) Records {
	next := maps.Clone(r)
	if next == nil {
		return Records{}
	}
	delete(next, slug)
	return next
}

// TotalHits sums the hit counters of every link.
func (r Records) TotalHits() int64 {
	var total int64
	for _, link := range r {
		total += link.Hits
	}
	return total
}
