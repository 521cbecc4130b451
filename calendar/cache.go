package calendar

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/warp/worktime-engine/generic"
)

// Cached memoizes GetHolidays per (region, year) in an in-memory store.
// Invalidate must be called when the underlying calendar changes.
type Cached struct {
	inner generic.HolidayCalendar
	store *cache.Cache
}

// NewCached wraps inner. Entries expire after ttl; a non-positive ttl keeps them forever.
func NewCached(inner generic.HolidayCalendar, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Cached{inner: inner, store: cache.New(ttl, 10*time.Minute)}
}

func cacheKey(region generic.Region, year int) string {
	return fmt.Sprintf("%s:%d", region, year)
}

func (c *Cached) GetHolidays(region generic.Region, year int) []generic.Holiday {
	key := cacheKey(region, year)
	if v, found := c.store.Get(key); found {
		return v.([]generic.Holiday)
	}
	hs := c.inner.GetHolidays(region, year)
	c.store.Set(key, hs, cache.DefaultExpiration)
	return hs
}

func (c *Cached) IsHoliday(region generic.Region, date generic.TimePoint) bool {
	for _, h := range c.GetHolidays(region, date.Year()) {
		if h.Date.Equal(date) {
			return true
		}
	}
	return false
}

// Invalidate drops every memoized year.
func (c *Cached) Invalidate() {
	c.store.Flush()
}

// Len returns the number of memoized (region, year) entries.
func (c *Cached) Len() int {
	return c.store.ItemCount()
}
