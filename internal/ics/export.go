// Package ics publishes a calendar's unlock schedule as iCalendar so the
// recipient can be reminded when each day opens. Card contents are never
// written; only the dates and the link.
package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"valcal/internal/model"
	"valcal/internal/unlock"
)

const productID = "-//valcal//Valentine Advent Calendar//EN"

// ExportOptions controls Export.
type ExportOptions struct {
	// Year of the February the schedule covers.
	Year int
	// Location is the zone unlock midnights are computed in. It should be
	// the calendar's own timezone, or the viewer's zone when it has none.
	Location *time.Location
	// Link is the shareable link, attached to every event.
	Link string
}

// Export renders the 14 unlock events of data as an iCalendar document.
// The output is deterministic for a given calendar and options.
func Export(data *model.CalendarData, opts ExportOptions) (string, error) {
	if data == nil {
		return "", errors.New("ics: nil calendar")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	sched, err := unlock.Schedule(opts.Year, opts.Location)
	if err != nil {
		return "", err
	}

	stamp, err := data.CreatedTime()
	if err != nil {
		stamp = sched[0]
	}

	lang := data.EffectiveLanguage()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName(data, lang))
	cal.SetXWRTimezone(opts.Location.String())

	for i, at := range sched {
		day := i + 1
		ev := cal.AddEvent(eventUID(data.ID, day))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(at)
		ev.SetEndAt(at.AddDate(0, 0, 1))
		ev.SetSummary(summary(day, lang))
		if opts.Link != "" {
			ev.SetURL(opts.Link)
			ev.SetDescription(opts.Link)
		}
	}

	return cal.Serialize(), nil
}

func eventUID(calendarID string, day int) string {
	return fmt.Sprintf("%s-day-%d@valcal", calendarID, day)
}

func calendarName(data *model.CalendarData, lang model.Language) string {
	if lang == model.LanguageEnglish {
		if data.RecipientName != "" {
			return "Valentine's calendar for " + data.RecipientName
		}
		return "Valentine's calendar"
	}
	if data.RecipientName != "" {
		return "Calendario de San Valentín para " + data.RecipientName
	}
	return "Calendario de San Valentín"
}

func summary(day int, lang model.Language) string {
	if lang == model.LanguageEnglish {
		if day == model.DayCount {
			return "Day 14 unlocks: Happy Valentine's Day!"
		}
		return fmt.Sprintf("Day %d unlocks", day)
	}
	if day == model.DayCount {
		return "Se desbloquea el día 14: ¡Feliz San Valentín!"
	}
	return fmt.Sprintf("Se desbloquea el día %d", day)
}
