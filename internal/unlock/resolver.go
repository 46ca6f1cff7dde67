package unlock

import (
	"sync"
	"time"

	appLog "valcal/internal/log"
)

// DateResolver maps an instant to a local calendar date in a timezone.
// Injecting it keeps Engine free of any timezone database.
type DateResolver interface {
	LocalDate(now time.Time, tz string) (time.Month, int)
}

// DateResolverFunc adapts a function to DateResolver.
type DateResolverFunc func(now time.Time, tz string) (time.Month, int)

func (f DateResolverFunc) LocalDate(now time.Time, tz string) (time.Month, int) {
	return f(now, tz)
}

// Locator is implemented by resolvers that can hand out the location they
// resolve against.
type Locator interface {
	Location(tz string) *time.Location
}

// ZoneResolver resolves dates against the IANA database. An empty or
// unknown zone id uses the fallback location, the viewer's own zone.
type ZoneResolver struct {
	fallback *time.Location

	mu    sync.Mutex
	zones map[string]*time.Location
}

// NewZoneResolver returns a resolver using fallback for calendars without
// a usable timezone. A nil fallback means time.Local.
func NewZoneResolver(fallback *time.Location) *ZoneResolver {
	if fallback == nil {
		fallback = time.Local
	}
	return &ZoneResolver{
		fallback: fallback,
		zones:    make(map[string]*time.Location),
	}
}

func (r *ZoneResolver) LocalDate(now time.Time, tz string) (time.Month, int) {
	_, month, day := now.In(r.Location(tz)).Date()
	return month, day
}

// Location returns the location for tz, loading it once. Unknown ids are
// logged and cached as the fallback.
func (r *ZoneResolver) Location(tz string) *time.Location {
	if tz == "" {
		return r.fallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.zones[tz]; ok {
		return loc
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to viewer zone", err, "name", tz, "fallback", r.fallback.String())
		loc = r.fallback
	}
	r.zones[tz] = loc
	return loc
}
