package tzrule

import (
	"log/slog"
	"sync"
)

// yearCache is the bounded concurrent memoization spec.md §4.6 describes:
// insert-if-absent publish semantics, with years beyond a horizon computed
// on every call instead of retained, so unbounded future lookups cannot
// grow memory without bound.
type yearCache struct {
	entries        sync.Map // map[int][]ZonalTransition
	lastCachedYear int
	compute        func(year int) []ZonalTransition
	logger         *slog.Logger
}

func newYearCache(lastCachedYear int, compute func(year int) []ZonalTransition, logger *slog.Logger) *yearCache {
	return &yearCache{lastCachedYear: lastCachedYear, compute: compute, logger: logger}
}

// get returns the transitions for year, computing and, when within the
// cached horizon, publishing them if this is the first request for that
// year. A losing writer in a race discards its own computation and returns
// the value the winner published — both are pointwise equal since the year
// expander is deterministic (spec.md §5).
func (c *yearCache) get(year int) []ZonalTransition {
	if v, ok := c.entries.Load(year); ok {
		return v.([]ZonalTransition)
	}
	computed := c.compute(year)
	if year > c.lastCachedYear {
		return computed
	}
	actual, loaded := c.entries.LoadOrStore(year, computed)
	if loaded && c.logger != nil {
		c.logger.Debug("year cache publish race lost, discarding local copy", "year", year)
	}
	return actual.([]ZonalTransition)
}
