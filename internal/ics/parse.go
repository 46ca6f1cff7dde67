package ics

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "valcal/internal/log"
)

// UnlockEvent is one parsed unlock entry of an exported schedule.
type UnlockEvent struct {
	CalendarID string
	Day        int
	At         time.Time
	Summary    string
	URL        string
}

// ParseSchedule reads a document produced by Export back into its unlock
// events, ordered by day. Events whose UID does not follow the export
// scheme are skipped.
func ParseSchedule(body []byte) ([]UnlockEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse: %w", err)
	}

	out := make([]UnlockEvent, 0, 14)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Debug("ics: skipping event", "reason", perr.Error())
			continue
		}
		out = append(out, ev)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func parseVEvent(ve *ical.VEvent) (UnlockEvent, error) {
	var out UnlockEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	id, day, err := splitUID(uidProp.Value)
	if err != nil {
		return out, err
	}
	out.CalendarID = id
	out.Day = day

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("uid %s: %w", uidProp.Value, err)
	}
	out.At = start

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		out.URL = p.Value
	}
	return out, nil
}

// splitUID reverses eventUID: "<id>-day-<n>@valcal".
func splitUID(uid string) (string, int, error) {
	rest, ok := strings.CutSuffix(uid, "@valcal")
	if !ok {
		return "", 0, fmt.Errorf("foreign uid %q", uid)
	}
	i := strings.LastIndex(rest, "-day-")
	if i < 0 {
		return "", 0, fmt.Errorf("foreign uid %q", uid)
	}
	day, err := strconv.Atoi(rest[i+len("-day-"):])
	if err != nil {
		return "", 0, fmt.Errorf("uid %q: %w", uid, err)
	}
	return rest[:i], day, nil
}
