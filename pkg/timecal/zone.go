package timecal

import (
	"sync"
	"time"

	"github.com/fetchd-io/fetchd/internal/logger"
)

// zoneCache caches loaded timezone data. Timezone lookups happen on
// every forward-scheduling call for records that carry a zone name, so
// the zone database is consulted once per name.
var zoneCache = struct {
	mu     sync.Mutex
	byName map[string]*time.Location
	warned map[string]bool
}{
	byName: make(map[string]*time.Location),
	warned: make(map[string]bool),
}

// Location resolves a timezone name to a *time.Location. An empty name
// or an unknown zone yields the process-local zone; unknown zones are
// warned about once per name. Callers evaluating a schedule against a
// wall clock must view the clock in this location first.
func Location(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}

	zoneCache.mu.Lock()
	defer zoneCache.mu.Unlock()

	if loc, ok := zoneCache.byName[tz]; ok {
		return loc
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		if !zoneCache.warned[tz] {
			logger.Warn("Unknown timezone %q, using local time: %v", tz, err)
			zoneCache.warned[tz] = true
		}
		loc = time.Local
	}
	zoneCache.byName[tz] = loc
	return loc
}
