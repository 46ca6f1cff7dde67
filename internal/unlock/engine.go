// Package unlock decides which day-cards a viewer may open at a given
// instant. Day N unlocks at local midnight on February N; everything after
// Valentine's Day is open and everything before February is locked.
//
// The computation is pure: it depends only on the instant, the calendar's
// timezone and the view mode, and is recomputed on every call.
package unlock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"valcal/internal/model"
)

// Mode selects how the unlock rule is applied.
type Mode int

const (
	// ModeReceiver is the recipient's view: days unlock by date.
	ModeReceiver Mode = iota
	// ModeCreatorPreview shows every day to the author.
	ModeCreatorPreview
	// ModeStaticPreview shows every day locked, as a demo of the locked look.
	ModeStaticPreview
)

func (m Mode) String() string {
	switch m {
	case ModeCreatorPreview:
		return "creator"
	case ModeStaticPreview:
		return "static"
	default:
		return "receiver"
	}
}

// ParseMode accepts "receiver", "creator" or "static" (case-insensitive).
// An empty string is ModeReceiver.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "receiver", "normal":
		return ModeReceiver, nil
	case "creator", "creator-preview":
		return ModeCreatorPreview, nil
	case "static", "static-preview", "locked":
		return ModeStaticPreview, nil
	}
	return ModeReceiver, fmt.Errorf("unknown view mode %q", s)
}

var (
	// ErrNotYet is returned when a recipient tries to open a locked day.
	ErrNotYet = errors.New("unlock: this day is not unlocked yet")
	// ErrNoSuchDay is returned for day numbers outside 1..14.
	ErrNoSuchDay = errors.New("unlock: no such day")
)

// Engine computes unlock sets. The zero value is not usable; use NewEngine.
type Engine struct {
	resolver DateResolver
}

// NewEngine returns an Engine that resolves local dates with r. A nil r
// uses a ZoneResolver falling back to time.Local.
func NewEngine(r DateResolver) *Engine {
	if r == nil {
		r = NewZoneResolver(nil)
	}
	return &Engine{resolver: r}
}

// Compute returns the days openable at now for a calendar in timezone tz
// (empty means the viewer's local time) under mode.
func (e *Engine) Compute(now time.Time, tz string, mode Mode) Set {
	switch mode {
	case ModeCreatorPreview:
		return All()
	case ModeStaticPreview:
		return Set{}
	}
	month, day := e.resolver.LocalDate(now, tz)
	return Through(unlockedThrough(month, day))
}

// ComputeFor is Compute with the timezone taken from data.
func (e *Engine) ComputeFor(now time.Time, data *model.CalendarData, mode Mode) Set {
	return e.Compute(now, data.Timezone, mode)
}

// NextUnlock returns the instant the next day unlocks for a calendar in
// tz. It reports false when nothing is left to unlock this season.
func (e *Engine) NextUnlock(now time.Time, tz string) (time.Time, bool) {
	return NextUnlock(now, e.Location(tz))
}

// Location returns the zone tz resolves to, or time.Local when the
// resolver cannot say.
func (e *Engine) Location(tz string) *time.Location {
	if l, ok := e.resolver.(Locator); ok {
		return l.Location(tz)
	}
	return time.Local
}

// unlockedThrough returns the highest unlocked day for a local date.
func unlockedThrough(month time.Month, day int) int {
	switch {
	case month < time.February:
		return 0
	case month == time.February && day <= model.DayCount:
		return day
	default:
		return model.DayCount
	}
}

// CanOpen reports whether day may be opened given the unlock set for the
// current view. Opening has no effect on the set.
func CanOpen(day int, set Set, mode Mode) error {
	if day < 1 || day > model.DayCount {
		return fmt.Errorf("%w: %d", ErrNoSuchDay, day)
	}
	if mode == ModeCreatorPreview || set.Contains(day) {
		return nil
	}
	return ErrNotYet
}
