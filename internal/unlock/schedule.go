package unlock

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"valcal/internal/model"
)

// ScheduleRule returns the recurrence that produces the unlock instants:
// daily at local midnight from February 1 of year, DayCount times.
func ScheduleRule(year int, loc *time.Location) (*rrule.RRule, error) {
	if loc == nil {
		loc = time.Local
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Count:   model.DayCount,
		Dtstart: time.Date(year, time.February, 1, 0, 0, 0, 0, loc),
	})
	if err != nil {
		return nil, fmt.Errorf("unlock: build schedule rule: %w", err)
	}
	return r, nil
}

// Schedule returns the DayCount unlock instants of year in loc; element
// i is when day i+1 unlocks.
func Schedule(year int, loc *time.Location) ([]time.Time, error) {
	r, err := ScheduleRule(year, loc)
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

// NextUnlock returns the first unlock instant after now in loc, within the
// season of now's local year. It reports false once day 14 has unlocked.
func NextUnlock(now time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	sched, err := Schedule(now.In(loc).Year(), loc)
	if err != nil {
		return time.Time{}, false
	}
	for _, t := range sched {
		if t.After(now) {
			return t, true
		}
	}
	return time.Time{}, false
}
