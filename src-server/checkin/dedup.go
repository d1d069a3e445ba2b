package checkin

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Dedup recognizes repeat deliveries of the same tag within a short
// window. The hardware bridge is at-least-once, so an identical tag a
// few seconds apart is one physical scan, not a second toggle.
type Dedup struct {
	cache *expirable.LRU[string, time.Time]
}

func NewDedup(cache *expirable.LRU[string, time.Time]) *Dedup {
	return &Dedup{cache: cache}
}

// Seen reports whether the tag was already delivered inside the
// window. Only a fresh delivery is recorded; the window stays anchored
// at the first delivery so a burst of repeats can't keep it open
// forever.
func (d *Dedup) Seen(tag string, at time.Time) bool {
	if _, ok := d.cache.Get(tag); ok {
		return true
	}
	d.cache.Add(tag, at)
	return false
}
